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

// Package fvcomtest writes small FVCOM-style NetCDF files for use in tests.
package fvcomtest

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/bedload/internal/ncf"
)

// Config specifies the contents of a test file. The mesh is always a unit
// square split into two triangular faces with uniform depth.
type Config struct {
	Layers  int     // number of sigma layers
	Records int     // number of time records
	Depth   float64 // water depth [m]

	// TimeUnits is the units attribute of the time variable, and
	// Start and Step give the first time value and spacing.
	TimeUnits   string
	Start, Step float64

	// LayersOnly causes siglev to be omitted, and siglay to be written
	// as a one-dimensional coordinate.
	LayersOnly bool

	// LevelsOnly causes siglay to be omitted.
	LevelsOnly bool

	// FacesFirst stores nv with shape (nele, three) instead of
	// (three, nele).
	FacesFirst bool

	// Velocity returns the velocity in face i of layer k at record t.
	// If nil, the velocity is 0.5 m/s northward everywhere.
	Velocity func(t, k, i int) complex128

	// Elevation returns the surface elevation at record t. If nil, the
	// elevation is zero.
	Elevation func(t int) float64

	// Z0, if not nil, is written as the face variable "z0".
	Z0 []float64
}

// Default returns a configuration with two layers of 1 m thickness and
// 149 hourly records.
func Default() Config {
	return Config{
		Layers:    2,
		Records:   149,
		Depth:     2,
		TimeUnits: "days since 1858-11-17 00:00:00",
		Start:     58000,
		Step:      1.0 / 24,
	}
}

// Nodes and faces of the test mesh.
var (
	NodeLon = []float64{0, 1, 1, 0}
	NodeLat = []float64{0, 0, 1, 1}
	FaceLon = []float64{2.0 / 3, 1.0 / 3}
	FaceLat = []float64{1.0 / 3, 2.0 / 3}

	// Connectivity is the one-based node indices of each face.
	Connectivity = [][3]int32{{1, 2, 3}, {1, 3, 4}}
)

// Write creates a file at path with the contents specified by c.
func Write(path string, c Config) error {
	nodes, faces := len(NodeLon), len(FaceLon)
	dims := []string{"time", "node", "nele", "three", "siglay", "siglev"}
	lengths := []int{0, nodes, faces, 3, c.Layers, c.Layers + 1}
	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "title", "bedload test mesh")

	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", c.TimeUnits)
	for _, v := range []string{"lon", "lat", "h"} {
		h.AddVariable(v, []string{"node"}, []float32{0})
	}
	h.AddAttribute("h", "units", "meters")
	for _, v := range []string{"lonc", "latc"} {
		h.AddVariable(v, []string{"nele"}, []float32{0})
	}
	if c.FacesFirst {
		h.AddVariable("nv", []string{"nele", "three"}, []int32{0})
	} else {
		h.AddVariable("nv", []string{"three", "nele"}, []int32{0})
	}
	switch {
	case c.LayersOnly:
		h.AddVariable("siglay", []string{"siglay"}, []float32{0})
	case c.LevelsOnly:
		h.AddVariable("siglev", []string{"siglev", "node"}, []float32{0})
	default:
		h.AddVariable("siglay", []string{"siglay", "node"}, []float32{0})
		h.AddVariable("siglev", []string{"siglev", "node"}, []float32{0})
	}
	if c.Z0 != nil {
		h.AddVariable("z0", []string{"nele"}, []float32{0})
	}
	h.AddVariable("zeta", []string{"time", "node"}, []float32{0})
	for _, v := range []string{"u", "v"} {
		h.AddVariable(v, []string{"time", "siglay", "nele"}, []float32{0})
		h.AddAttribute(v, "units", "meters s-1")
	}
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return fmt.Errorf("fvcomtest: %v", errs[0])
	}

	ff, err := os.Create(path)
	if err != nil {
		return err
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		ff.Close()
		return err
	}
	if err = writeMesh(f, c); err != nil {
		ff.Close()
		return err
	}
	for t := 0; t < c.Records; t++ {
		if err = writeRecord(f, c, t); err != nil {
			ff.Close()
			return err
		}
	}
	if err = cdf.UpdateNumRecs(ff); err != nil {
		ff.Close()
		return err
	}
	return ff.Close()
}

func writeMesh(f *cdf.File, c Config) error {
	nodes, faces := len(NodeLon), len(FaceLon)
	depth := make([]float64, nodes)
	for i := range depth {
		depth[i] = c.Depth
	}
	for v, d := range map[string][]float64{
		"lon": NodeLon, "lat": NodeLat, "lonc": FaceLon, "latc": FaceLat, "h": depth,
	} {
		if err := ncf.WriteFloat32(f, v, 0, d); err != nil {
			return err
		}
	}

	nv := make([]int32, 0, 3*faces)
	if c.FacesFirst {
		for _, tri := range Connectivity {
			nv = append(nv, tri[:]...)
		}
	} else {
		for j := 0; j < 3; j++ {
			for _, tri := range Connectivity {
				nv = append(nv, tri[j])
			}
		}
	}
	if err := ncf.WriteInt32(f, "nv", 0, nv); err != nil {
		return err
	}

	if c.LayersOnly {
		siglay := make([]float64, c.Layers)
		for k := range siglay {
			siglay[k] = layerCenter(k, c.Layers)
		}
		if err := ncf.WriteFloat32(f, "siglay", 0, siglay); err != nil {
			return err
		}
		return writeZ0(f, c)
	}
	if !c.LevelsOnly {
		siglay := make([]float64, 0, c.Layers*nodes)
		for k := 0; k < c.Layers; k++ {
			for i := 0; i < nodes; i++ {
				siglay = append(siglay, layerCenter(k, c.Layers))
			}
		}
		if err := ncf.WriteFloat32(f, "siglay", 0, siglay); err != nil {
			return err
		}
	}
	siglev := make([]float64, 0, (c.Layers+1)*nodes)
	for k := 0; k <= c.Layers; k++ {
		for i := 0; i < nodes; i++ {
			siglev = append(siglev, -float64(k)/float64(c.Layers))
		}
	}
	if err := ncf.WriteFloat32(f, "siglev", 0, siglev); err != nil {
		return err
	}
	return writeZ0(f, c)
}

func layerCenter(k, layers int) float64 {
	return -(float64(k) + 0.5) / float64(layers)
}

func writeZ0(f *cdf.File, c Config) error {
	if c.Z0 != nil {
		if err := ncf.WriteFloat32(f, "z0", 0, c.Z0); err != nil {
			return err
		}
	}
	return nil
}

func writeRecord(f *cdf.File, c Config, t int) error {
	nodes, faces := len(NodeLon), len(FaceLon)
	zeta := make([]float64, nodes)
	if c.Elevation != nil {
		for i := range zeta {
			zeta[i] = c.Elevation(t)
		}
	}
	u := make([]float64, c.Layers*faces)
	v := make([]float64, c.Layers*faces)
	for k := 0; k < c.Layers; k++ {
		for i := 0; i < faces; i++ {
			w := complex(0, 0.5)
			if c.Velocity != nil {
				w = c.Velocity(t, k, i)
			}
			u[k*faces+i], v[k*faces+i] = real(w), imag(w)
		}
	}
	if err := ncf.WriteFloat64(f, "time", t, []float64{c.Start + float64(t)*c.Step}); err != nil {
		return err
	}
	if err := ncf.WriteFloat32(f, "zeta", t, zeta); err != nil {
		return err
	}
	if err := ncf.WriteFloat32(f, "u", t, u); err != nil {
		return err
	}
	return ncf.WriteFloat32(f, "v", t, v)
}
