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

// Package ncout writes and reads bedload output files in the NetCDF
// classic format.
package ncout

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/bedload"
	"github.com/spatialmodel/bedload/internal/ncf"
)

// Output variable names.
const (
	timeVar     = "time"
	connVar     = "nv"
	uBotVar     = "ubot"
	vBotVar     = "vbot"
	uBedloadVar = "ubedload"
	vBedloadVar = "vbedload"
)

// fieldVars are the time-varying output variables, in the order they are
// written within each record.
var fieldVars = []struct {
	name, longName string
	velocity       bool
}{
	{uBotVar, "Eastward velocity at reference height", true},
	{vBotVar, "Northward velocity at reference height", true},
	{uBedloadVar, "Eastward bedload transport", false},
	{vBedloadVar, "Northward bedload transport", false},
}

// Global attribute names.
const (
	attVonKarman       = "von_karman"
	attGravity         = "gravity"
	attCriticalShields = "critical_shields"
	attReferenceHeight = "reference_height"
	attEpsilon         = "epsilon"
	attMPMCoefficient  = "mpm_coefficient"
	attMPMExponent     = "mpm_exponent"
	attGrainDiameter   = "grain_diameter"
	attFluidDensity    = "fluid_density"
	attSedimentDensity = "sediment_density"
	attRoughness       = "roughness_height"
)

// File is an output file that is being written. It implements
// bedload.Sink.
type File struct {
	path string
	ff   *os.File
	f    *cdf.File

	faces   int
	records int
	last    float64
}

// New returns a File that will be created at path when Create is called.
func New(path string) *File {
	return &File{path: path}
}

// Create creates the file and writes the mesh and metadata.
func (o *File) Create(m *bedload.Mesh, md *bedload.Metadata) error {
	if o.f != nil {
		return fmt.Errorf("ncout: %s has already been created", o.path)
	}
	nodes, faces := m.NumNodes(), m.NumFaces()
	if nodes == 0 || faces == 0 {
		return fmt.Errorf("ncout: mesh has %d nodes and %d faces", nodes, faces)
	}
	h := cdf.NewHeader([]string{"time", "node", "face", "three"}, []int{0, nodes, faces, 3})
	h.AddAttribute("", "title", "Bedload transport")
	h.AddAttribute("", "source", "bedload v"+bedload.Version)
	addGlobal(h, md)

	h.AddVariable(connVar, []string{"three", "face"}, []int32{0})
	h.AddAttribute(connVar, "long_name", "nodes surrounding element")
	h.AddAttribute(connVar, "start_index", []int32{1})
	for _, v := range []struct{ name, dim, longName, units string }{
		{"lon", "node", "nodal longitude", "degrees_east"},
		{"lat", "node", "nodal latitude", "degrees_north"},
		{"h", "node", "bathymetry", "m"},
		{"lonc", "face", "zonal longitude", "degrees_east"},
		{"latc", "face", "zonal latitude", "degrees_north"},
	} {
		h.AddVariable(v.name, []string{v.dim}, []float32{0})
		h.AddAttribute(v.name, "long_name", v.longName)
		h.AddAttribute(v.name, "units", v.units)
	}
	for _, v := range fieldVars {
		h.AddVariable(v.name, []string{"time", "face"}, []float32{0})
		h.AddAttribute(v.name, "long_name", v.longName)
		if v.velocity {
			h.AddAttribute(v.name, "units", md.VelocityUnits)
		} else {
			h.AddAttribute(v.name, "units", md.TransportUnits)
		}
	}
	// time is the last record variable so that a record only counts as
	// complete once its time value has been written.
	h.AddVariable(timeVar, []string{"time"}, []float64{0})
	h.AddAttribute(timeVar, "long_name", "time")
	h.AddAttribute(timeVar, "units", md.TimeUnits)
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return fmt.Errorf("ncout: %v", errs[0])
	}

	ff, err := os.Create(o.path)
	if err != nil {
		return fmt.Errorf("ncout: %v", err)
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		ff.Close()
		return fmt.Errorf("ncout: creating %s: %v", o.path, err)
	}
	o.ff, o.f, o.faces = ff, f, faces
	if err = o.writeMesh(m); err != nil {
		o.ff.Close()
		o.ff, o.f = nil, nil
		return err
	}
	return nil
}

func addGlobal(h *cdf.Header, md *bedload.Metadata) {
	for _, a := range []struct {
		name string
		val  float64
	}{
		{attVonKarman, md.Params.VonKarman},
		{attGravity, md.Params.Gravity},
		{attCriticalShields, md.Params.CriticalShields},
		{attReferenceHeight, md.Params.ReferenceHeight},
		{attEpsilon, md.Params.Epsilon},
		{attMPMCoefficient, md.Params.MPMCoefficient},
		{attMPMExponent, md.Params.MPMExponent},
		{attGrainDiameter, md.Sediment.GrainDiameter},
		{attFluidDensity, md.Sediment.FluidDensity},
		{attSedimentDensity, md.Sediment.SedimentDensity},
	} {
		h.AddAttribute("", a.name, []float64{a.val})
	}
	if !math.IsNaN(md.Roughness) {
		h.AddAttribute("", attRoughness, []float64{md.Roughness})
	}
}

func (o *File) writeMesh(m *bedload.Mesh) error {
	nv := make([]int32, 3*m.NumFaces())
	for i, tri := range m.Connectivity {
		for j, n := range tri {
			nv[j*m.NumFaces()+i] = int32(n + 1)
		}
	}
	if err := ncf.WriteInt32(o.f, connVar, 0, nv); err != nil {
		return fmt.Errorf("ncout: %v", err)
	}
	lon, lat := coords(m.Nodes)
	lonc, latc := coords(m.Faces)
	for _, v := range []struct {
		name string
		data []float64
	}{
		{"lon", lon}, {"lat", lat}, {"h", m.Depth}, {"lonc", lonc}, {"latc", latc},
	} {
		if err := ncf.WriteFloat32(o.f, v.name, 0, v.data); err != nil {
			return fmt.Errorf("ncout: %v", err)
		}
	}
	return nil
}

// Append writes the fields for time t as the next record. t must be
// greater than the time of the previous record.
func (o *File) Append(t float64, s *bedload.Step) error {
	if o.f == nil {
		return fmt.Errorf("ncout: Append called before Create")
	}
	if o.records > 0 && !(t > o.last) {
		return fmt.Errorf("ncout: time %g is not after the previous time %g", t, o.last)
	}
	for i, d := range [][]float64{s.UBot, s.VBot, s.UBedload, s.VBedload} {
		if err := ncf.WriteFloat32(o.f, fieldVars[i].name, o.records, d); err != nil {
			return fmt.Errorf("ncout: record %d: %v", o.records, err)
		}
	}
	if err := ncf.WriteFloat64(o.f, timeVar, o.records, []float64{t}); err != nil {
		return fmt.Errorf("ncout: record %d: %v", o.records, err)
	}
	o.records++
	o.last = t
	return nil
}

// Records returns the number of records that have been appended.
func (o *File) Records() int { return o.records }

// Close updates the record count in the file header and closes it.
func (o *File) Close() error {
	if o.ff == nil {
		return nil
	}
	if err := cdf.UpdateNumRecs(o.ff); err != nil {
		o.ff.Close()
		return fmt.Errorf("ncout: %v", err)
	}
	err := o.ff.Close()
	o.ff, o.f = nil, nil
	return err
}
