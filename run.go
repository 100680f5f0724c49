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

package bedload

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Config holds the run-time settings for Run.
type Config struct {
	// Start and End give the requested time window. Each is matched to
	// the nearest time in the input; zero values select the first and
	// last input times.
	Start, End time.Time

	Params   Params
	Sediment Sediment

	// Roughness is the roughness height z0 [m] used for every face
	// and time step.
	Roughness float64

	// RoughnessField, if not empty, names a face-centered input variable
	// holding a roughness height for each face, which is used instead of
	// Roughness.
	RoughnessField string

	// ProgressInterval is the number of time steps between progress
	// messages. Values < 1 disable them.
	ProgressInterval int
}

// Summary gives information about a completed run.
type Summary struct {
	Records     int
	First, Last time.Time

	// MeanTransport is the mean bedload transport magnitude
	// [kg m-1 s-1] over all faces in the last time step.
	MeanTransport float64

	// NonFinite is the total number of non-finite output values.
	NonFinite int
}

// Run calculates the velocity at the reference height and the bedload
// transport vector in each face of the mesh for each time step in the
// window specified by cfg, reading from src and appending to dst.
// Time steps are processed in order. ctx is checked between time steps;
// if it is cancelled, dst holds every time step completed up to that
// point and the context error is returned.
func Run(ctx context.Context, src Source, dst Sink, cfg *Config, log logrus.FieldLogger) (*Summary, error) {
	if err := cfg.Params.Check(); err != nil {
		return nil, err
	}
	if err := cfg.Sediment.Check(); err != nil {
		return nil, err
	}

	axis, err := src.Times()
	if err != nil {
		return nil, fmt.Errorf("bedload: reading time coordinate: %v", err)
	}
	first, last, err := axis.Window(cfg.Start, cfg.End)
	if err != nil {
		return nil, err
	}

	mesh, err := src.Mesh()
	if err != nil {
		return nil, fmt.Errorf("bedload: reading mesh: %v", err)
	}
	if err = mesh.Check(); err != nil {
		return nil, err
	}

	sigma, err := src.Sigma()
	if err != nil {
		return nil, fmt.Errorf("bedload: reading vertical coordinate: %v", err)
	}
	layers, err := sigma.NumLayers()
	if err != nil {
		return nil, err
	}
	bed, err := BedLayer(layers)
	if err != nil {
		return nil, err
	}
	upper, lower, err := sigma.BedFractions(bed)
	if err != nil {
		return nil, err
	}

	z0, err := roughness(src, mesh, cfg)
	if err != nil {
		return nil, err
	}

	md := &Metadata{
		TimeUnits:      axis.Units,
		VelocityUnits:  src.VelocityUnits(),
		TransportUnits: TransportUnits(),
		Params:         cfg.Params,
		Sediment:       cfg.Sediment,
		Roughness:      math.NaN(),
	}
	if len(z0) == 1 {
		md.Roughness = z0[0]
	}
	if err = dst.Create(mesh, md); err != nil {
		return nil, fmt.Errorf("bedload: creating output: %v", err)
	}

	log.WithFields(logrus.Fields{
		"start":  axis.Time(first),
		"end":    axis.Time(last),
		"steps":  last - first + 1,
		"faces":  mesh.NumFaces(),
		"nodes":  mesh.NumNodes(),
		"layers": layers,
		"bed":    bed,
	}).Info("bedload: starting calculation")

	s := &Summary{}
	for t := first; t <= last; t++ {
		if err := ctx.Err(); err != nil {
			return s, fmt.Errorf("bedload: stopped before time step %d: %w", t, err)
		}
		step, q, err := calcStep(src, mesh, cfg, t, bed, upper, lower, z0)
		if err != nil {
			return s, err
		}
		nonFinite := countNonFinite(step)
		if nonFinite > 0 {
			log.WithFields(logrus.Fields{
				"step":  t,
				"count": nonFinite,
			}).Warn("bedload: non-finite output values; check roughness and layer thickness")
		}
		if err = dst.Append(axis.Values[t], step); err != nil {
			return s, fmt.Errorf("bedload: writing time step %d: %v", t, err)
		}

		if s.Records == 0 {
			s.First = axis.Time(t)
		}
		s.Records++
		s.Last = axis.Time(t)
		s.MeanTransport = stat.Mean(q, nil)
		s.NonFinite += nonFinite

		fields := logrus.Fields{
			"step":          t,
			"time":          axis.Time(t),
			"meanTransport": s.MeanTransport,
		}
		if cfg.ProgressInterval > 0 && s.Records%cfg.ProgressInterval == 0 {
			log.WithFields(fields).Infof("bedload: completed %d of %d time steps", s.Records, last-first+1)
		} else {
			log.WithFields(fields).Debug("bedload: completed time step")
		}
	}
	return s, nil
}

// roughness returns the roughness heights to use, either the single
// configured value or one value per face.
func roughness(src Source, mesh *Mesh, cfg *Config) ([]float64, error) {
	if cfg.RoughnessField == "" {
		if !(cfg.Roughness > 0) {
			return nil, fmt.Errorf("bedload: roughness height must be > 0 but is %g", cfg.Roughness)
		}
		return []float64{cfg.Roughness}, nil
	}
	f, err := src.FaceField(cfg.RoughnessField)
	if err != nil {
		return nil, fmt.Errorf("bedload: reading roughness field: %v", err)
	}
	if len(f.Elements) != mesh.NumFaces() {
		return nil, fmt.Errorf("bedload: roughness field %s has %d values for %d faces",
			cfg.RoughnessField, len(f.Elements), mesh.NumFaces())
	}
	return f.Elements, nil
}

// calcStep calculates the output fields for time step t. It also
// returns the scalar transport magnitude.
func calcStep(src Source, mesh *Mesh, cfg *Config, t, bed int, upper, lower, z0 []float64) (*Step, []float64, error) {
	zeta, err := src.Elevation(t)
	if err != nil {
		return nil, nil, fmt.Errorf("bedload: time step %d: %v", t, err)
	}
	zrNode, err := BedThickness(upper, lower, mesh.Depth, zeta)
	if err != nil {
		return nil, nil, fmt.Errorf("bedload: time step %d: %v", t, err)
	}
	zrFace, err := mesh.FaceAverage(zrNode)
	if err != nil {
		return nil, nil, fmt.Errorf("bedload: time step %d: %v", t, err)
	}

	u, v, err := src.Velocity(t, bed)
	if err != nil {
		return nil, nil, fmt.Errorf("bedload: time step %d: %v", t, err)
	}
	w, err := complexVelocity(u, v, mesh.NumFaces())
	if err != nil {
		return nil, nil, fmt.Errorf("bedload: time step %d: %v", t, err)
	}

	q, wRef, err := cfg.Params.BedloadFluxes(w, z0, zrFace.Elements, cfg.Sediment)
	if err != nil {
		return nil, nil, fmt.Errorf("bedload: time step %d: %v", t, err)
	}

	n := len(w)
	s := &Step{
		UBot:     make([]float64, n),
		VBot:     make([]float64, n),
		UBedload: make([]float64, n),
		VBedload: make([]float64, n),
	}
	for i := range w {
		s.UBot[i], s.VBot[i] = real(wRef[i]), imag(wRef[i])
		s.UBedload[i], s.VBedload[i] = cfg.Params.Decompose(q[i], w[i])
	}
	return s, q, nil
}

// complexVelocity combines eastward and northward velocity components into
// complex velocities.
func complexVelocity(u, v *sparse.DenseArray, faces int) ([]complex128, error) {
	if len(u.Elements) != faces || len(v.Elements) != faces {
		return nil, fmt.Errorf("velocity has %d and %d values for %d faces", len(u.Elements), len(v.Elements), faces)
	}
	w := make([]complex128, faces)
	for i := range w {
		w[i] = complex(u.Elements[i], v.Elements[i])
	}
	return w, nil
}

func countNonFinite(s *Step) int {
	var n int
	for _, f := range [][]float64{s.UBot, s.VBot, s.UBedload, s.VBedload} {
		for _, v := range f {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				n++
			}
		}
	}
	return n
}
