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
	"errors"
	"fmt"
	"io/ioutil"
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// memSource is an in-memory Source with two faces and two layers.
type memSource struct {
	times   []float64
	w       []complex128 // bed layer velocity for each face
	z0Field []float64
	failAt  int
}

func newMemSource(n int) *memSource {
	s := &memSource{
		times:  make([]float64, n),
		w:      []complex128{0.5i, complex(0.5, 0.5)},
		failAt: -1,
	}
	for i := range s.times {
		s.times[i] = 58000 + float64(i)/24
	}
	return s
}

func (s *memSource) Times() (*TimeAxis, error) {
	return NewTimeAxis(s.times, "days since 1858-11-17 00:00:00")
}

func (s *memSource) Mesh() (*Mesh, error) { return testMesh(), nil }

func (s *memSource) Sigma() (*Sigma, error) {
	return &Sigma{Levels: uniformSigma([]float64{0, -0.5, -1}, 4)}, nil
}

func (s *memSource) Elevation(t int) (*sparse.DenseArray, error) {
	return sparse.ZerosDense(4), nil
}

func (s *memSource) Velocity(t, k int) (u, v *sparse.DenseArray, err error) {
	if t == s.failAt {
		return nil, nil, fmt.Errorf("reading u: read failed")
	}
	u, v = sparse.ZerosDense(2), sparse.ZerosDense(2)
	for i, w := range s.w {
		if k == 0 { // surface layer
			w *= 10
		}
		u.Elements[i], v.Elements[i] = real(w), imag(w)
	}
	return u, v, nil
}

func (s *memSource) VelocityUnits() string { return "meters s-1" }

func (s *memSource) FaceField(name string) (*sparse.DenseArray, error) {
	if name != "z0" || s.z0Field == nil {
		return nil, fmt.Errorf("variable %s not in file", name)
	}
	return &sparse.DenseArray{Shape: []int{len(s.z0Field)}, Elements: s.z0Field}, nil
}

// memSink is an in-memory Sink.
type memSink struct {
	md     *Metadata
	times  []float64
	steps  []*Step
	onStep func(n int)
}

func (s *memSink) Create(m *Mesh, md *Metadata) error {
	s.md = md
	return nil
}

func (s *memSink) Append(t float64, step *Step) error {
	s.times = append(s.times, t)
	s.steps = append(s.steps, step)
	if s.onStep != nil {
		s.onStep(len(s.steps))
	}
	return nil
}

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}

func testConfig() *Config {
	return &Config{
		Params:           DefaultParams(),
		Sediment:         testSediment,
		Roughness:        testZ0,
		ProgressInterval: 3,
	}
}

func TestRun(t *testing.T) {
	src := newMemSource(24)
	dst := new(memSink)
	cfg := testConfig()
	axis, _ := src.Times()
	cfg.Start = axis.Time(2)
	cfg.End = axis.Time(12)

	s, err := Run(context.Background(), src, dst, cfg, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if s.Records != 11 || len(dst.steps) != 11 {
		t.Fatalf("have %d records (%d written), want 11", s.Records, len(dst.steps))
	}
	if !s.First.Equal(axis.Time(2)) || !s.Last.Equal(axis.Time(12)) {
		t.Errorf("time span: have %v to %v", s.First, s.Last)
	}
	for i, tt := range dst.times {
		if tt != src.times[i+2] {
			t.Errorf("record %d: time %g, want %g", i, tt, src.times[i+2])
		}
		if i > 0 && !(tt > dst.times[i-1]) {
			t.Errorf("record %d: times are not strictly increasing", i)
		}
	}

	wantQ := []float64{0.04304900118389737, 0.13536467734698443}
	for _, step := range dst.steps {
		for i, w := range src.w {
			q := math.Hypot(step.UBedload[i], step.VBedload[i])
			if different(q, wantQ[i], testTolerance) {
				t.Errorf("face %d: q=%g, want %g", i, q, wantQ[i])
			}
			if math.Abs(step.UBot[i]-real(w)) > 1e-12 || math.Abs(step.VBot[i]-imag(w)) > 1e-12 {
				t.Errorf("face %d: wbot=(%g, %g), want %v", i, step.UBot[i], step.VBot[i], w)
			}
		}
	}
	if different(s.MeanTransport, (wantQ[0]+wantQ[1])/2, testTolerance) {
		t.Errorf("mean transport: have %g", s.MeanTransport)
	}
	if dst.md.Roughness != testZ0 || dst.md.VelocityUnits != "meters s-1" || dst.md.TransportUnits != "kg m^-1 s^-1" {
		t.Errorf("metadata: %+v", dst.md)
	}
}

func TestRunRoughnessField(t *testing.T) {
	src := newMemSource(3)
	src.z0Field = []float64{testZ0, testZ0}
	dst := new(memSink)
	cfg := testConfig()
	cfg.Roughness = 0
	cfg.RoughnessField = "z0"
	if _, err := Run(context.Background(), src, dst, cfg, testLogger()); err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(dst.md.Roughness) {
		t.Errorf("roughness metadata should be NaN but is %g", dst.md.Roughness)
	}
	q := math.Hypot(dst.steps[0].UBedload[1], dst.steps[0].VBedload[1])
	if different(q, 0.13536467734698443, testTolerance) {
		t.Errorf("q=%g", q)
	}

	src.z0Field = []float64{testZ0}
	if _, err := Run(context.Background(), src, new(memSink), cfg, testLogger()); err == nil {
		t.Error("expected an error for wrong roughness field length")
	}
	cfg.RoughnessField = "missing"
	if _, err := Run(context.Background(), src, new(memSink), cfg, testLogger()); err == nil {
		t.Error("expected an error for missing roughness field")
	}
}

func TestRunCancel(t *testing.T) {
	src := newMemSource(20)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dst := &memSink{onStep: func(n int) {
		if n == 5 {
			cancel()
		}
	}}
	s, err := Run(ctx, src, dst, testConfig(), testLogger())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("have error %v, want context.Canceled", err)
	}
	if s.Records != 5 || len(dst.steps) != 5 {
		t.Errorf("have %d records (%d written), want 5", s.Records, len(dst.steps))
	}
}

func TestRunSourceError(t *testing.T) {
	src := newMemSource(10)
	src.failAt = 4
	dst := new(memSink)
	_, err := Run(context.Background(), src, dst, testConfig(), testLogger())
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(dst.steps) != 4 {
		t.Errorf("have %d records, want 4", len(dst.steps))
	}
}

func TestRunNonFinite(t *testing.T) {
	// A roughness height equal to the bed layer thickness makes the drag
	// coefficient infinite. The values are still written.
	src := newMemSource(2)
	dst := new(memSink)
	cfg := testConfig()
	cfg.Roughness = 1
	s, err := Run(context.Background(), src, dst, cfg, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if s.NonFinite == 0 {
		t.Error("expected non-finite values")
	}
	if len(dst.steps) != 2 {
		t.Errorf("have %d records, want 2", len(dst.steps))
	}
}

func TestRunBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Roughness = 0
	if _, err := Run(context.Background(), newMemSource(2), new(memSink), cfg, testLogger()); err == nil {
		t.Error("expected an error for zero roughness")
	}
	cfg = testConfig()
	cfg.Sediment.GrainDiameter = -1
	if _, err := Run(context.Background(), newMemSource(2), new(memSink), cfg, testLogger()); err == nil {
		t.Error("expected an error for negative grain diameter")
	}
}
