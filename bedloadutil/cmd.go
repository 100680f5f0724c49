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
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/geom"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/bedload"
	"github.com/spatialmodel/bedload/ncout"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to bedload.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Input",
			usage: `
              Input is the path to the FVCOM output file to read. It can be
              a local path or an http:// or https:// URL, and can include
              environment variables. The file must be in the NetCDF classic format.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output NetCDF file. It can
              include environment variables.`,
			shorthand:  "o",
			defaultVal: "bedload.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), averageCmd.Flags(), nearestCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, the logfile will be saved in
              the same location as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Verbose",
			usage: `
              Verbose specifies whether to log a message for every time step.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Start",
			usage: `
              Start is the first time to process, in RFC3339 or "2006-01-02 15:04:05"
              format (UTC). The nearest time in the input is used. If blank, processing
              starts at the first time in the input.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "End",
			usage: `
              End is the last time to process, in the same format as Start. The nearest
              time in the input is used. If blank, processing continues to the last time in
              the input.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "GrainDiameter",
			usage: `
              GrainDiameter is the median sediment grain diameter (d50) in meters.`,
			defaultVal: 200e-6,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "FluidDensity",
			usage: `
              FluidDensity is the density of sea water in kg/m³.`,
			defaultVal: 1025.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SedimentDensity",
			usage: `
              SedimentDensity is the density of the sediment grains in kg/m³.`,
			defaultVal: 2650.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "PhysicalRoughness",
			usage: `
              PhysicalRoughness is the Nikuradse roughness length ks of the bed in
              meters. The roughness height used in the calculation is ks/30.`,
			defaultVal: 0.005,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Z0",
			usage: `
              Z0 is the bed roughness height in meters. If it is greater than
              zero, it is used instead of PhysicalRoughness/30.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Z0Field",
			usage: `
              Z0Field is the name of a face-centered variable in the input file
              holding the bed roughness height in meters for each face. If it is
              set, it is used instead of Z0 and PhysicalRoughness.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Physics.VonKarman",
			usage: `
              Physics.VonKarman is the von Kármán constant.`,
			defaultVal: 0.4,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Physics.Gravity",
			usage: `
              Physics.Gravity is the gravitational acceleration in m/s².`,
			defaultVal: 9.81,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Physics.CriticalShields",
			usage: `
              Physics.CriticalShields is the critical Shields parameter for the
              initiation of sediment motion.`,
			defaultVal: 0.047,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Physics.ReferenceHeight",
			usage: `
              Physics.ReferenceHeight is the height above the bed in meters at which
              the output velocity is calculated.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ProgressInterval",
			usage: `
              ProgressInterval is the number of time steps between progress
              messages.`,
			defaultVal: 24,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Average.Output",
			usage: `
              Average.Output is the path where the time-averaged output should be
              written. It can include environment variables.`,
			defaultVal: "bedload_average.nc",
			flagsets:   []*pflag.FlagSet{averageCmd.Flags()},
		},
		{
			name: "Average.First",
			usage: `
              Average.First is the index of the first record to include in the
              average.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{averageCmd.Flags()},
		},
		{
			name: "Average.Last",
			usage: `
              Average.Last is the index of the last record to include in the
              average. The default is -1 which represents the last record.`,
			defaultVal: -1,
			flagsets:   []*pflag.FlagSet{averageCmd.Flags()},
		},
		{
			name: "Average.StrictTidal",
			usage: `
              If Average.StrictTidal is true, averaging fails unless the averaged
              records span a whole number of M2 tidal cycles.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{averageCmd.Flags()},
		},
		{
			name: "Nearest.Lon",
			usage: `
              Nearest.Lon is the longitude of the location to find.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{nearestCmd.Flags()},
		},
		{
			name: "Nearest.Lat",
			usage: `
              Nearest.Lat is the latitude of the location to find.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{nearestCmd.Flags()},
		},
		{
			name: "Nearest.Kind",
			usage: `
              Nearest.Kind specifies whether to search mesh "node"s or "face"s.`,
			defaultVal: "face",
			flagsets:   []*pflag.FlagSet{nearestCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("BEDLOAD")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(averageCmd)
	Root.AddCommand(nearestCmd)
	Root.AddCommand(configCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("bedload: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "bedload",
	Short: "Bedload sediment transport from FVCOM output.",
	Long: `bedload calculates the near-bed velocity and the Meyer-Peter-Müller bedload
sediment transport on the unstructured mesh of an FVCOM ocean model simulation.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'BEDLOAD_var' where 'var' is the
name of the variable to be set, with dots replaced by underscores. Path configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of bedload.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bedload v%s\n", bedload.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd calculates bedload transport for a time window.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Calculate bedload transport.",
	Long: `run calculates the velocity at the reference height and the bedload transport
in each mesh face for each time step between Start and End, and writes them
to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := RunConfig(Cfg)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		input, cleanup, err := maybeDownload(os.ExpandEnv(Cfg.GetString("Input")))
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		defer signal.Stop(sig)
		go func() {
			select {
			case <-sig:
				cancel()
			case <-ctx.Done():
			}
		}()

		_, err = Run(ctx, cmd, checkLogFile(os.ExpandEnv(Cfg.GetString("LogFile")), outputFile),
			input, outputFile, Cfg.GetBool("Verbose"), c)
		return err
	},
	DisableAutoGenTag: true,
}

// averageCmd averages an output file over time.
var averageCmd = &cobra.Command{
	Use:   "average",
	Short: "Average bedload output over time.",
	Long: `average averages each field in OutputFile over the records between
Average.First and Average.Last and writes the result to Average.Output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := ncout.Average(
			os.ExpandEnv(Cfg.GetString("OutputFile")),
			os.ExpandEnv(Cfg.GetString("Average.Output")),
			Cfg.GetInt("Average.First"),
			Cfg.GetInt("Average.Last"),
			Cfg.GetBool("Average.StrictTidal"),
		)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "averaged %d records from %s to %s; mean transport magnitude %g\n",
			s.Records, s.First.Format(timeLayout), s.Last.Format(timeLayout), s.MeanTransport)
		return nil
	},
	DisableAutoGenTag: true,
}

// nearestCmd finds the mesh element closest to a location.
var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Find the mesh node or face nearest to a location.",
	Long: `nearest prints the zero-based index of the node or face in the mesh of
OutputFile that is closest to (Nearest.Lon, Nearest.Lat).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := NearestIndex(os.ExpandEnv(Cfg.GetString("OutputFile")),
			Cfg.GetString("Nearest.Kind"),
			geom.Point{X: Cfg.GetFloat64("Nearest.Lon"), Y: Cfg.GetFloat64("Nearest.Lat")})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", i)
		return nil
	},
	DisableAutoGenTag: true,
}

// configCmd prints the effective configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration.",
	Long: `config prints the configuration that results from combining defaults,
the configuration file, environment variables, and command-line arguments, in
TOML format suitable for use as a configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(effectiveConfig(Cfg))
	},
	DisableAutoGenTag: true,
}

// effectiveConfig returns the value of every option except config,
// nested at dots in the option names.
func effectiveConfig(cfg *viper.Viper) map[string]interface{} {
	o := make(map[string]interface{})
	for _, option := range options {
		if option.name == "config" {
			continue
		}
		parts := strings.Split(option.name, ".")
		m := o
		for _, p := range parts[:len(parts)-1] {
			sub, ok := m[p].(map[string]interface{})
			if !ok {
				sub = make(map[string]interface{})
				m[p] = sub
			}
			m = sub
		}
		var v interface{}
		switch option.defaultVal.(type) {
		case float64:
			v = cfg.GetFloat64(option.name)
		case int:
			v = cfg.GetInt(option.name)
		case bool:
			v = cfg.GetBool(option.name)
		default:
			v = cfg.GetString(option.name)
		}
		m[parts[len(parts)-1]] = v
	}
	return o
}

// NearestIndex returns the index of the node or face (kind) in the mesh
// stored in output file path that is closest to p.
func NearestIndex(path, kind string, p geom.Point) (int, error) {
	f, err := ncout.Open(path)
	if err != nil {
		return -1, err
	}
	defer f.Close()
	m, err := f.Mesh()
	if err != nil {
		return -1, err
	}
	switch kind {
	case "node":
		return bedload.Nearest(m.Nodes, p), nil
	case "face":
		return bedload.Nearest(m.Faces, p), nil
	default:
		return -1, fmt.Errorf("bedload: Nearest.Kind must be 'node' or 'face' but is '%s'", kind)
	}
}
