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

// Package fvcom reads output of the Finite Volume Community Ocean Model
// (FVCOM) from NetCDF files in the classic format, for use as input to
// the bedload calculation.
package fvcom

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/bedload"
	"github.com/spatialmodel/bedload/internal/ncf"
)

// FVCOM variable names.
const (
	timeVar      = "time"
	lonVar       = "lon"
	latVar       = "lat"
	lonCVar      = "lonc"
	latCVar      = "latc"
	depthVar     = "h"
	connVar      = "nv"
	uVar         = "u"
	vVar         = "v"
	zetaVar      = "zeta"
	sigLevVar    = "siglev"
	sigLayVar    = "siglay"
	defaultStart = 1 // FVCOM connectivity is one-based.
)

// Dataset is an FVCOM output file. It implements bedload.Source.
type Dataset struct {
	ff *os.File
	f  *cdf.File

	nodes, faces, records int
}

// Open opens the FVCOM output file at path.
func Open(path string) (*Dataset, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fvcom: %v", err)
	}
	f, err := cdf.Open(ff)
	if err != nil {
		ff.Close()
		return nil, fmt.Errorf("fvcom: opening %s: %v", path, err)
	}
	d := &Dataset{ff: ff, f: f}
	for _, v := range []string{timeVar, lonVar, latVar, lonCVar, latCVar, depthVar, connVar, uVar, vVar, zetaVar} {
		if f.Header.Lengths(v) == nil {
			ff.Close()
			return nil, fmt.Errorf("fvcom: %s: variable %s not in file", path, v)
		}
	}
	d.nodes = f.Header.Lengths(depthVar)[0]
	d.faces = f.Header.Lengths(lonCVar)[0]
	if d.records, err = ncf.NumRecs(f, ff); err != nil {
		ff.Close()
		return nil, fmt.Errorf("fvcom: %s: %v", path, err)
	}
	return d, nil
}

// Close closes the underlying file.
func (d *Dataset) Close() error {
	return d.ff.Close()
}

// Times returns the model time coordinate.
func (d *Dataset) Times() (*bedload.TimeAxis, error) {
	var vals []float64
	var err error
	if d.f.Header.IsRecordVariable(timeVar) {
		if d.records == 0 {
			return nil, fmt.Errorf("fvcom: file has no time records")
		}
		vals, err = ncf.Read(d.f, timeVar, []int{0}, []int{d.records - 1})
	} else {
		vals, err = ncf.Read(d.f, timeVar, nil, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("fvcom: %v", err)
	}
	units := ncf.StringAttribute(d.f, timeVar, "units")
	if units == "" {
		return nil, fmt.Errorf("fvcom: variable %s has no units attribute", timeVar)
	}
	axis, err := bedload.NewTimeAxis(vals, units)
	if err != nil {
		return nil, fmt.Errorf("fvcom: %v", err)
	}
	return axis, nil
}

// Mesh returns the model mesh with zero-based connectivity.
func (d *Dataset) Mesh() (*bedload.Mesh, error) {
	conn, err := d.connectivity()
	if err != nil {
		return nil, err
	}
	start := defaultStart
	if s, ok := ncf.IntAttribute(d.f, connVar, "start_index"); ok {
		start = s
	}
	m := &bedload.Mesh{}
	if m.Connectivity, err = bedload.ZeroBased(conn, start, d.nodes); err != nil {
		return nil, fmt.Errorf("fvcom: %v", err)
	}
	if m.Nodes, err = d.points(lonVar, latVar, d.nodes); err != nil {
		return nil, err
	}
	if m.Faces, err = d.points(lonCVar, latCVar, d.faces); err != nil {
		return nil, err
	}
	if m.Depth, err = ncf.Read(d.f, depthVar, nil, nil); err != nil {
		return nil, fmt.Errorf("fvcom: %v", err)
	}
	return m, nil
}

// connectivity reads the raw connectivity array, which may be stored
// as (three, nele), as FVCOM does, or as (nele, three).
func (d *Dataset) connectivity() ([][3]int, error) {
	dims := d.f.Header.Lengths(connVar)
	if len(dims) != 2 {
		return nil, fmt.Errorf("fvcom: variable %s has %d dimensions; it should have 2", connVar, len(dims))
	}
	raw, err := ncf.Read(d.f, connVar, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fvcom: %v", err)
	}
	conn := make([][3]int, d.faces)
	switch {
	case dims[0] == 3 && dims[1] == d.faces:
		for j := 0; j < 3; j++ {
			for i := 0; i < d.faces; i++ {
				conn[i][j] = int(raw[j*d.faces+i])
			}
		}
	case dims[0] == d.faces && dims[1] == 3:
		for i := 0; i < d.faces; i++ {
			for j := 0; j < 3; j++ {
				conn[i][j] = int(raw[i*3+j])
			}
		}
	default:
		return nil, fmt.Errorf("fvcom: variable %s has shape %v; expected (3, %d) or (%d, 3)", connVar, dims, d.faces, d.faces)
	}
	return conn, nil
}

func (d *Dataset) points(xVar, yVar string, n int) ([]geom.Point, error) {
	x, err := ncf.Read(d.f, xVar, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fvcom: %v", err)
	}
	y, err := ncf.Read(d.f, yVar, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fvcom: %v", err)
	}
	if len(x) != n || len(y) != n {
		return nil, fmt.Errorf("fvcom: %s and %s have %d and %d values; expected %d", xVar, yVar, len(x), len(y), n)
	}
	o := make([]geom.Point, n)
	for i := range o {
		o[i] = geom.Point{X: x[i], Y: y[i]}
	}
	return o, nil
}

// Sigma returns the vertical coordinate, with sigma layers and sigma
// levels read from whichever of them are in the file. One-dimensional
// coordinates are repeated for each node.
func (d *Dataset) Sigma() (*bedload.Sigma, error) {
	s := new(bedload.Sigma)
	var err error
	if d.f.Header.Lengths(sigLayVar) != nil {
		if s.Layers, err = d.sigma(sigLayVar); err != nil {
			return nil, err
		}
	}
	if d.f.Header.Lengths(sigLevVar) != nil {
		if s.Levels, err = d.sigma(sigLevVar); err != nil {
			return nil, err
		}
	}
	if s.Layers == nil && s.Levels == nil {
		return nil, fmt.Errorf("fvcom: file has neither %s nor %s", sigLayVar, sigLevVar)
	}
	return s, nil
}

func (d *Dataset) sigma(name string) (*sparse.DenseArray, error) {
	a, err := ncf.ReadDense(d.f, name)
	if err != nil {
		return nil, fmt.Errorf("fvcom: %v", err)
	}
	switch len(a.Shape) {
	case 1:
		o := sparse.ZerosDense(a.Shape[0], d.nodes)
		for k, v := range a.Elements {
			for i := 0; i < d.nodes; i++ {
				o.Set(v, k, i)
			}
		}
		return o, nil
	case 2:
		if a.Shape[1] != d.nodes {
			return nil, fmt.Errorf("fvcom: variable %s has shape %v but there are %d nodes", name, a.Shape, d.nodes)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("fvcom: variable %s has %d dimensions", name, len(a.Shape))
	}
}

// Elevation returns the sea surface elevation [m] at time step t.
func (d *Dataset) Elevation(t int) (*sparse.DenseArray, error) {
	if err := d.checkRecord(t); err != nil {
		return nil, err
	}
	z, err := ncf.Record(d.f, zetaVar, t)
	if err != nil {
		return nil, fmt.Errorf("fvcom: reading %s at time step %d: %v", zetaVar, t, err)
	}
	return dense(z), nil
}

// Velocity returns the eastward and northward velocities in layer k at
// time step t.
func (d *Dataset) Velocity(t, k int) (u, v *sparse.DenseArray, err error) {
	if err := d.checkRecord(t); err != nil {
		return nil, nil, err
	}
	uu, err := ncf.Record(d.f, uVar, t, k)
	if err != nil {
		return nil, nil, fmt.Errorf("fvcom: reading %s at time step %d layer %d: %v", uVar, t, k, err)
	}
	vv, err := ncf.Record(d.f, vVar, t, k)
	if err != nil {
		return nil, nil, fmt.Errorf("fvcom: reading %s at time step %d layer %d: %v", vVar, t, k, err)
	}
	return dense(uu), dense(vv), nil
}

// VelocityUnits returns the units attribute of the eastward velocity.
func (d *Dataset) VelocityUnits() string {
	return ncf.StringAttribute(d.f, uVar, "units")
}

// FaceField returns the time-invariant face-centered variable name.
func (d *Dataset) FaceField(name string) (*sparse.DenseArray, error) {
	a, err := ncf.ReadDense(d.f, name)
	if err != nil {
		return nil, fmt.Errorf("fvcom: %v", err)
	}
	if len(a.Shape) != 1 || a.Shape[0] != d.faces {
		return nil, fmt.Errorf("fvcom: variable %s has shape %v; expected (%d)", name, a.Shape, d.faces)
	}
	return a, nil
}

func (d *Dataset) checkRecord(t int) error {
	if t < 0 || t >= d.records {
		return fmt.Errorf("fvcom: time step %d is outside of the %d records in the file", t, d.records)
	}
	return nil
}

func dense(v []float64) *sparse.DenseArray {
	o := sparse.ZerosDense(len(v))
	copy(o.Elements, v)
	return o
}
