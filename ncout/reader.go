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

package ncout

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/spatialmodel/bedload"
	"github.com/spatialmodel/bedload/internal/ncf"
)

// Output is an existing output file opened for reading.
type Output struct {
	ff      *os.File
	f       *cdf.File
	records int
}

// Open opens the output file at path.
func Open(path string) (*Output, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ncout: %v", err)
	}
	f, err := cdf.Open(ff)
	if err != nil {
		ff.Close()
		return nil, fmt.Errorf("ncout: opening %s: %v", path, err)
	}
	for _, v := range append([]string{timeVar, connVar, uBotVar, vBotVar, uBedloadVar, vBedloadVar}, "lon", "lat", "lonc", "latc", "h") {
		if f.Header.Lengths(v) == nil {
			ff.Close()
			return nil, fmt.Errorf("ncout: %s is not a bedload output file; variable %s is missing", path, v)
		}
	}
	o := &Output{ff: ff, f: f}
	if o.records, err = ncf.NumRecs(f, ff); err != nil {
		ff.Close()
		return nil, fmt.Errorf("ncout: %v", err)
	}
	return o, nil
}

// Close closes the file.
func (o *Output) Close() error { return o.ff.Close() }

// Len returns the number of complete records in the file.
func (o *Output) Len() int { return o.records }

// Times returns the time coordinate.
func (o *Output) Times() (*bedload.TimeAxis, error) {
	if o.records == 0 {
		return nil, fmt.Errorf("ncout: file has no records")
	}
	vals, err := ncf.Read(o.f, timeVar, []int{0}, []int{o.records - 1})
	if err != nil {
		return nil, fmt.Errorf("ncout: %v", err)
	}
	axis, err := bedload.NewTimeAxis(vals, ncf.StringAttribute(o.f, timeVar, "units"))
	if err != nil {
		return nil, fmt.Errorf("ncout: %v", err)
	}
	return axis, nil
}

// Mesh returns the mesh stored in the file, with zero-based
// connectivity.
func (o *Output) Mesh() (*bedload.Mesh, error) {
	faces := o.f.Header.Lengths("lonc")[0]
	raw, err := ncf.Read(o.f, connVar, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("ncout: %v", err)
	}
	if len(raw) != 3*faces {
		return nil, fmt.Errorf("ncout: %s has %d values for %d faces", connVar, len(raw), faces)
	}
	conn := make([][3]int, faces)
	for j := 0; j < 3; j++ {
		for i := range conn {
			conn[i][j] = int(raw[j*faces+i])
		}
	}
	start := 1
	if s, ok := ncf.IntAttribute(o.f, connVar, "start_index"); ok {
		start = s
	}
	m := new(bedload.Mesh)
	if m.Depth, err = ncf.Read(o.f, "h", nil, nil); err != nil {
		return nil, fmt.Errorf("ncout: %v", err)
	}
	if m.Connectivity, err = bedload.ZeroBased(conn, start, len(m.Depth)); err != nil {
		return nil, fmt.Errorf("ncout: %v", err)
	}
	if m.Nodes, err = o.points("lon", "lat"); err != nil {
		return nil, err
	}
	if m.Faces, err = o.points("lonc", "latc"); err != nil {
		return nil, err
	}
	return m, nil
}

func (o *Output) points(xVar, yVar string) ([]geom.Point, error) {
	x, err := ncf.Read(o.f, xVar, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("ncout: %v", err)
	}
	y, err := ncf.Read(o.f, yVar, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("ncout: %v", err)
	}
	p := make([]geom.Point, len(x))
	for i := range p {
		p[i] = geom.Point{X: x[i], Y: y[i]}
	}
	return p, nil
}

func coords(p []geom.Point) (x, y []float64) {
	x, y = make([]float64, len(p)), make([]float64, len(p))
	for i, pp := range p {
		x[i], y[i] = pp.X, pp.Y
	}
	return x, y
}

// Metadata returns the run parameters and units stored in the file.
func (o *Output) Metadata() *bedload.Metadata {
	md := &bedload.Metadata{
		TimeUnits:      ncf.StringAttribute(o.f, timeVar, "units"),
		VelocityUnits:  ncf.StringAttribute(o.f, uBotVar, "units"),
		TransportUnits: ncf.StringAttribute(o.f, uBedloadVar, "units"),
		Roughness:      math.NaN(),
	}
	for _, a := range []struct {
		name string
		dst  *float64
	}{
		{attVonKarman, &md.Params.VonKarman},
		{attGravity, &md.Params.Gravity},
		{attCriticalShields, &md.Params.CriticalShields},
		{attReferenceHeight, &md.Params.ReferenceHeight},
		{attEpsilon, &md.Params.Epsilon},
		{attMPMCoefficient, &md.Params.MPMCoefficient},
		{attMPMExponent, &md.Params.MPMExponent},
		{attGrainDiameter, &md.Sediment.GrainDiameter},
		{attFluidDensity, &md.Sediment.FluidDensity},
		{attSedimentDensity, &md.Sediment.SedimentDensity},
		{attRoughness, &md.Roughness},
	} {
		if v, ok := o.f.Header.GetAttribute("", a.name).([]float64); ok && len(v) > 0 {
			*a.dst = v[0]
		}
	}
	return md
}

// Step returns the output fields at record t.
func (o *Output) Step(t int) (*bedload.Step, error) {
	if t < 0 || t >= o.records {
		return nil, fmt.Errorf("ncout: record %d is outside of the %d records in the file", t, o.records)
	}
	s := new(bedload.Step)
	for _, v := range []struct {
		name string
		dst  *[]float64
	}{
		{uBotVar, &s.UBot}, {vBotVar, &s.VBot}, {uBedloadVar, &s.UBedload}, {vBedloadVar, &s.VBedload},
	} {
		d, err := ncf.Record(o.f, v.name, t)
		if err != nil {
			return nil, fmt.Errorf("ncout: record %d: %v", t, err)
		}
		*v.dst = d
	}
	return s, nil
}
