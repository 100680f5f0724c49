/*
Copyright © 2024 the bedload authors.
This file is part of bedload.

bedload is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

bedload is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with bedload.  If not, see <http://www.gnu.org/licenses/>.
*/

package bedloadutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/bedload"
	"github.com/spf13/cast"
)

// timeLayout is the alternative to RFC3339 accepted for Start and End.
const timeLayout = "2006-01-02 15:04:05"

// RunConfig creates a run configuration from the configuration
// information in cfg.
func RunConfig(cfg *viper.Viper) (*bedload.Config, error) {
	c := &bedload.Config{
		Params:         bedload.DefaultParams(),
		RoughnessField: cfg.GetString("Z0Field"),
	}
	floatVals := []struct {
		name string
		dst  *float64
	}{
		{"Physics.VonKarman", &c.Params.VonKarman},
		{"Physics.Gravity", &c.Params.Gravity},
		{"Physics.CriticalShields", &c.Params.CriticalShields},
		{"Physics.ReferenceHeight", &c.Params.ReferenceHeight},
		{"GrainDiameter", &c.Sediment.GrainDiameter},
		{"FluidDensity", &c.Sediment.FluidDensity},
		{"SedimentDensity", &c.Sediment.SedimentDensity},
	}
	for _, v := range floatVals {
		f, err := cast.ToFloat64E(cfg.Get(v.name))
		if err != nil {
			return nil, fmt.Errorf("bedload: reading configuration variable %s: %v", v.name, err)
		}
		*v.dst = f
	}
	if err := c.Params.Check(); err != nil {
		return nil, err
	}
	if err := c.Sediment.Check(); err != nil {
		return nil, err
	}

	var err error
	if c.Roughness, err = roughness(cfg); err != nil {
		return nil, err
	}
	if c.ProgressInterval, err = cast.ToIntE(cfg.Get("ProgressInterval")); err != nil {
		return nil, fmt.Errorf("bedload: reading configuration variable ProgressInterval: %v", err)
	}
	if c.Start, err = parseTime("Start", cfg.GetString("Start")); err != nil {
		return nil, err
	}
	if c.End, err = parseTime("End", cfg.GetString("End")); err != nil {
		return nil, err
	}
	if !c.Start.IsZero() && !c.End.IsZero() && c.End.Before(c.Start) {
		return nil, fmt.Errorf("bedload: End (%v) is before Start (%v)", c.End, c.Start)
	}
	return c, nil
}

// roughness returns the roughness height z0 from either the Z0 or the
// PhysicalRoughness configuration variable.
func roughness(cfg *viper.Viper) (float64, error) {
	z0, err := cast.ToFloat64E(cfg.Get("Z0"))
	if err != nil {
		return 0, fmt.Errorf("bedload: reading configuration variable Z0: %v", err)
	}
	if z0 > 0 {
		return z0, nil
	}
	if z0 < 0 {
		return 0, fmt.Errorf("bedload: Z0=%g but should be >= 0", z0)
	}
	ks, err := cast.ToFloat64E(cfg.Get("PhysicalRoughness"))
	if err != nil {
		return 0, fmt.Errorf("bedload: reading configuration variable PhysicalRoughness: %v", err)
	}
	if !(ks > 0) && cfg.GetString("Z0Field") == "" {
		return 0, fmt.Errorf("bedload: PhysicalRoughness=%g but should be >0", ks)
	}
	return bedload.CanonicalRoughness(ks), nil
}

// parseTime parses a Start or End time. An empty value returns the zero
// time.
func parseTime(name, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, timeLayout, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bedload: can't parse %s time '%s'; use RFC3339 or '%s' format", name, v, timeLayout)
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`bedload: you need to specify an output file configuration variable (for example: OutputFile="bedload.nc")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("bedload: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}
