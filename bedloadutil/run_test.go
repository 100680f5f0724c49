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
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/geom"
	"github.com/spatialmodel/bedload/internal/fvcomtest"
	"github.com/spatialmodel/bedload/ncout"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "fvcom.nc")
	c := fvcomtest.Default()
	c.Records = 160
	if err := fvcomtest.Write(in, c); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "bedload.nc")

	Cfg.Set("config", "testdata/configExample.toml")
	Cfg.Set("Input", in)
	Cfg.Set("OutputFile", out)
	Cfg.Set("Start", "2017-09-04 05:00:00")
	Cfg.Set("End", "2017-09-10T09:00:00Z")
	defer func() {
		Cfg.Set("Start", "")
		Cfg.Set("End", "")
	}()
	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bedload.log")); err != nil {
		t.Errorf("log file: %v", err)
	}

	o, err := ncout.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()
	if o.Len() != 149 {
		t.Fatalf("have %d records, want 149", o.Len())
	}
	axis, err := o.Times()
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range axis.Values {
		want := c.Start + float64(i+5)*c.Step
		if v != want {
			t.Errorf("record %d: time %g, want %g", i, v, want)
		}
	}
	for _, rec := range []int{0, 70, 148} {
		s, err := o.Step(rec)
		if err != nil {
			t.Fatal(err)
		}
		for i := range s.UBedload {
			q := math.Hypot(s.UBedload[i], s.VBedload[i])
			if math.Abs(q-0.04304900118389737)/0.04304900118389737 > 1e-6 {
				t.Errorf("record %d face %d: q=%g", rec, i, q)
			}
			if s.UBot[i] != 0 || math.Abs(s.VBot[i]-0.5) > 1e-6 {
				t.Errorf("record %d face %d: wbot=(%g, %g)", rec, i, s.UBot[i], s.VBot[i])
			}
		}
	}

	t.Run("average", func(t *testing.T) {
		avg := filepath.Join(dir, "average.nc")
		Cfg.Set("Average.Output", avg)
		Cfg.Set("Average.StrictTidal", true)
		Cfg.Set("Average.First", 0)
		Cfg.Set("Average.Last", -1)
		var b bytes.Buffer
		Root.SetOutput(&b)
		defer Root.SetOutput(nil)
		Root.SetArgs([]string{"average"})
		if err := Root.Execute(); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(b.String(), "averaged 149 records") {
			t.Errorf("unexpected output: %s", b.String())
		}
		a, err := ncout.Open(avg)
		if err != nil {
			t.Fatal(err)
		}
		defer a.Close()
		if a.Len() != 1 {
			t.Errorf("have %d records, want 1", a.Len())
		}
	})

	t.Run("nearest", func(t *testing.T) {
		i, err := NearestIndex(out, "face", geom.Point{X: 0.2, Y: 0.9})
		if err != nil {
			t.Fatal(err)
		}
		if i != 1 {
			t.Errorf("have face %d, want 1", i)
		}
		i, err = NearestIndex(out, "node", geom.Point{X: 0.9, Y: 0.1})
		if err != nil {
			t.Fatal(err)
		}
		if i != 1 {
			t.Errorf("have node %d, want 1", i)
		}
		if _, err = NearestIndex(out, "edge", geom.Point{}); err == nil {
			t.Error("expected an error for invalid kind")
		}
	})
}

func TestConfigCmd(t *testing.T) {
	Cfg.Set("config", "testdata/configExample.toml")
	var b bytes.Buffer
	Root.SetOutput(&b)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"config"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	var c struct {
		GrainDiameter float64
		Physics       struct {
			VonKarman       float64
			ReferenceHeight float64
		}
	}
	if _, err := toml.Decode(b.String(), &c); err != nil {
		t.Fatalf("%v\n%s", err, b.String())
	}
	if c.GrainDiameter != 0.0002 || c.Physics.VonKarman != 0.4 || c.Physics.ReferenceHeight != 1 {
		t.Errorf("unexpected configuration: %+v", c)
	}
}

func TestVersionCmd(t *testing.T) {
	var b bytes.Buffer
	Root.SetOutput(&b)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(b.String(), "bedload v") {
		t.Errorf("have %q", b.String())
	}
}
