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

// Package bedloadutil contains the command-line interface for the bedload
// transport calculation.
package bedloadutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/bedload"
	"github.com/spatialmodel/bedload/fvcom"
	"github.com/spatialmodel/bedload/ncout"
	"github.com/spf13/cobra"
)

// newLogger returns a logger that writes to w. If verbose is true, a
// message is logged for every time step.
func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.Out = w
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}
	l.Level = logrus.InfoLevel
	if verbose {
		l.Level = logrus.DebugLevel
	}
	return l
}

// Run calculates bedload transport for the FVCOM output file input and
// writes the results to outputFile, logging to the output of
// CobraCommand and to logFile.
func Run(ctx context.Context, CobraCommand *cobra.Command, logFile, input, outputFile string, verbose bool, c *bedload.Config) (*bedload.Summary, error) {
	startTime := time.Now()

	logfile, err := os.Create(logFile)
	if err != nil {
		return nil, fmt.Errorf("bedload: problem creating log file: %v", err)
	}
	defer logfile.Close()
	log := newLogger(io.MultiWriter(CobraCommand.OutOrStdout(), logfile), verbose)

	log.WithFields(logrus.Fields{
		"input":           input,
		"output":          outputFile,
		"grainDiameter":   unit.New(c.Sediment.GrainDiameter, unit.Meter),
		"fluidDensity":    unit.New(c.Sediment.FluidDensity, unit.KilogramPerMeter3),
		"sedimentDensity": unit.New(c.Sediment.SedimentDensity, unit.KilogramPerMeter3),
		"gravity":         unit.New(c.Params.Gravity, unit.MeterPerSecond2),
		"referenceHeight": unit.New(c.Params.ReferenceHeight, unit.Meter),
		"roughness":       roughnessField(c),
	}).Infof("bedload v%s", bedload.Version)

	if input == "" {
		return nil, fmt.Errorf("bedload: the Input configuration variable is not set")
	}
	src, err := fvcom.Open(input)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := ncout.New(outputFile)
	s, err := bedload.Run(ctx, src, dst, c, log)
	if cerr := dst.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		if s != nil && s.Records > 0 {
			log.WithField("records", s.Records).Warnf("bedload: %s holds the time steps completed before the error", outputFile)
		}
		return s, err
	}

	log.WithFields(logrus.Fields{
		"records":       s.Records,
		"first":         s.First,
		"last":          s.Last,
		"meanTransport": s.MeanTransport,
		"nonFinite":     s.NonFinite,
		"elapsed":       time.Since(startTime),
	}).Info("bedload: calculation complete")
	return s, nil
}

func roughnessField(c *bedload.Config) interface{} {
	if c.RoughnessField != "" {
		return c.RoughnessField
	}
	return unit.New(c.Roughness, unit.Meter)
}
