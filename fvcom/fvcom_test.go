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

package fvcom

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spatialmodel/bedload"
	"github.com/spatialmodel/bedload/internal/fvcomtest"
)

func openTest(t *testing.T, c fvcomtest.Config) *Dataset {
	path := filepath.Join(t.TempDir(), "fvcom.nc")
	if err := fvcomtest.Write(path, c); err != nil {
		t.Fatal(err)
	}
	d, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestTimes(t *testing.T) {
	d := openTest(t, fvcomtest.Default())
	axis, err := d.Times()
	if err != nil {
		t.Fatal(err)
	}
	if axis.Len() != 149 {
		t.Fatalf("have %d times, want 149", axis.Len())
	}
	if axis.Values[0] != 58000 {
		t.Errorf("first time: have %g", axis.Values[0])
	}
	if span := axis.Time(148).Sub(axis.Time(0)).Hours(); span < 147.999 || span > 148.001 {
		t.Errorf("time span: have %g hours, want 148", span)
	}
}

func TestMesh(t *testing.T) {
	for _, facesFirst := range []bool{false, true} {
		c := fvcomtest.Default()
		c.FacesFirst = facesFirst
		d := openTest(t, c)
		m, err := d.Mesh()
		if err != nil {
			t.Fatal(err)
		}
		want := [][3]int{{0, 1, 2}, {0, 2, 3}}
		if !reflect.DeepEqual(m.Connectivity, want) {
			t.Errorf("facesFirst=%v: connectivity: have %v, want %v", facesFirst, m.Connectivity, want)
		}
		if m.NumNodes() != 4 || m.NumFaces() != 2 {
			t.Errorf("have %d nodes and %d faces", m.NumNodes(), m.NumFaces())
		}
		if m.Nodes[2].X != 1 || m.Nodes[2].Y != 1 {
			t.Errorf("node 2: have %v", m.Nodes[2])
		}
		if !reflect.DeepEqual(m.Depth, []float64{2, 2, 2, 2}) {
			t.Errorf("depth: have %v", m.Depth)
		}
		if err := m.Check(); err != nil {
			t.Error(err)
		}
	}
}

func TestSigma(t *testing.T) {
	t.Run("layers and levels", func(t *testing.T) {
		d := openTest(t, fvcomtest.Default())
		s, err := d.Sigma()
		if err != nil {
			t.Fatal(err)
		}
		if s.Levels == nil || s.Layers == nil {
			t.Fatal("expected layers and levels")
		}
		if !reflect.DeepEqual(s.Levels.Shape, []int{3, 4}) {
			t.Errorf("siglev shape: have %v", s.Levels.Shape)
		}
		if v := s.Levels.Get(1, 3); v != -0.5 {
			t.Errorf("siglev[1, 3]: have %g", v)
		}
		if !reflect.DeepEqual(s.Layers.Shape, []int{2, 4}) {
			t.Errorf("siglay shape: have %v", s.Layers.Shape)
		}
		upper, lower, err := s.BedFractions(1)
		if err != nil {
			t.Fatal(err)
		}
		// The bed layer thickness spans the two deepest layer centers.
		if upper[0] != -0.25 || lower[0] != -0.75 {
			t.Errorf("bed fractions: have %g, %g", upper[0], lower[0])
		}
	})
	t.Run("levels", func(t *testing.T) {
		c := fvcomtest.Default()
		c.LevelsOnly = true
		d := openTest(t, c)
		s, err := d.Sigma()
		if err != nil {
			t.Fatal(err)
		}
		if s.Levels == nil || s.Layers != nil {
			t.Fatal("expected levels only")
		}
		n, err := s.NumLayers()
		if err != nil {
			t.Fatal(err)
		}
		if n != 2 {
			t.Errorf("have %d layers", n)
		}
	})
	t.Run("layers", func(t *testing.T) {
		c := fvcomtest.Default()
		c.LayersOnly = true
		c.Layers = 4
		d := openTest(t, c)
		s, err := d.Sigma()
		if err != nil {
			t.Fatal(err)
		}
		if s.Layers == nil || s.Levels != nil {
			t.Fatal("expected layers only")
		}
		n, err := s.NumLayers()
		if err != nil {
			t.Fatal(err)
		}
		if n != 4 {
			t.Errorf("have %d layers", n)
		}
		// One-dimensional layers are repeated at each node.
		if v := s.Layers.Get(3, 2); v != -0.875 {
			t.Errorf("siglay[3, 2]: have %g", v)
		}
	})
}

func TestVelocity(t *testing.T) {
	c := fvcomtest.Default()
	c.Records = 5
	c.Velocity = func(t, k, i int) complex128 {
		return complex(float64(t), float64(10*k+i))
	}
	d := openTest(t, c)
	u, v, err := d.Velocity(3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(u.Elements, []float64{3, 3}) {
		t.Errorf("u: have %v", u.Elements)
	}
	if !reflect.DeepEqual(v.Elements, []float64{10, 11}) {
		t.Errorf("v: have %v", v.Elements)
	}
	if units := d.VelocityUnits(); units != "meters s-1" {
		t.Errorf("units: have %q", units)
	}
	if _, _, err := d.Velocity(5, 0); err == nil {
		t.Error("expected an error for time step past the end")
	}
	if _, _, err := d.Velocity(0, 2); err == nil {
		t.Error("expected an error for layer past the bed")
	}
}

func TestElevation(t *testing.T) {
	c := fvcomtest.Default()
	c.Records = 4
	c.Elevation = func(t int) float64 { return 0.25 * float64(t) }
	d := openTest(t, c)
	z, err := d.Elevation(2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(z.Elements, []float64{0.5, 0.5, 0.5, 0.5}) {
		t.Errorf("have %v", z.Elements)
	}
}

func TestFaceField(t *testing.T) {
	c := fvcomtest.Default()
	c.Records = 2
	c.Z0 = []float64{0.5, 0.25}
	d := openTest(t, c)
	z0, err := d.FaceField("z0")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(z0.Elements, c.Z0) {
		t.Errorf("have %v", z0.Elements)
	}
	if _, err := d.FaceField("h"); err == nil {
		t.Error("expected an error for a node-centered variable")
	}
	if _, err := d.FaceField("missing"); err == nil {
		t.Error("expected an error for a missing variable")
	}
}

func TestSource(t *testing.T) {
	var _ bedload.Source = &Dataset{}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.nc")); err == nil {
		t.Error("expected an error")
	}
}
