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
	"math"
	"math/cmplx"
	"testing"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

const testTolerance = 1e-10

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

var testSediment = Sediment{
	GrainDiameter:   200e-6,
	FluidDensity:    1025,
	SedimentDensity: 2650,
}

var testZ0 = CanonicalRoughness(0.005)

func TestRoughnessToDrag(t *testing.T) {
	p := DefaultParams()
	cd := p.RoughnessToDrag(testZ0, 1)
	const want = 0.0021141214141243317
	if different(cd, want, testTolerance) {
		t.Errorf("cd: have %g, want %g", cd, want)
	}
}

func TestDragInverse(t *testing.T) {
	p := DefaultParams()
	for _, z0 := range []float64{1e-5, testZ0, 0.001, 0.01} {
		for _, zr := range []float64{0.1, 0.5, 1, 5} {
			cd := p.RoughnessToDrag(z0, zr)
			z0b := p.DragToRoughness(cd, zr)
			if different(z0, z0b, 1e-12) {
				t.Errorf("z0=%g, zr=%g: round trip gave %g", z0, zr, z0b)
			}
		}
	}
	for _, cd := range []float64{1e-4, 2e-3, 0.05, 0.5} {
		for _, zr := range []float64{0.1, 1, 5} {
			z0 := p.DragToRoughness(cd, zr)
			cdb := p.RoughnessToDrag(z0, zr)
			if different(cd, cdb, 1e-12) {
				t.Errorf("cd=%g, zr=%g: round trip gave %g", cd, zr, cdb)
			}
		}
	}
}

func TestDragArray(t *testing.T) {
	p := DefaultParams()
	z0 := &sparse.DenseArray{Shape: []int{1}, Elements: []float64{testZ0}}
	zr := &sparse.DenseArray{Shape: []int{3}, Elements: []float64{0.5, 1, 2}}
	cd, err := p.RoughnessToDragArray(z0, zr)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range cd.Elements {
		if want := p.RoughnessToDrag(testZ0, zr.Elements[i]); v != want {
			t.Errorf("%d: have %g, want %g", i, v, want)
		}
	}
	z0b, err := p.DragToRoughnessArray(cd, zr)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range z0b.Elements {
		if different(v, testZ0, 1e-12) {
			t.Errorf("%d: have %g, want %g", i, v, testZ0)
		}
	}

	bad := &sparse.DenseArray{Shape: []int{2}, Elements: []float64{1, 2}}
	if _, err := p.RoughnessToDragArray(bad, zr); err == nil {
		t.Error("expected an error for mismatched shapes")
	}
}

func TestExtrapolateZeroVelocity(t *testing.T) {
	p := DefaultParams()
	ustar, wRef := p.Extrapolate(0, testZ0, 1)
	if ustar != 0 || wRef != 0 {
		t.Errorf("have u*=%v, wRef=%v; want zeros", ustar, wRef)
	}
	if cmplx.IsNaN(wRef) {
		t.Error("reference velocity is NaN")
	}
}

func TestExtrapolateAtReferenceHeight(t *testing.T) {
	// A velocity measured at the reference height is unchanged.
	p := DefaultParams()
	w := complex(0.3, -0.4)
	_, wRef := p.Extrapolate(w, testZ0, p.ReferenceHeight)
	if different(real(wRef), real(w), testTolerance) || different(imag(wRef), imag(w), testTolerance) {
		t.Errorf("have %v, want %v", wRef, w)
	}
}

func TestBedloadFluxGolden(t *testing.T) {
	p := DefaultParams()
	w := []complex128{complex(0, 0.5), complex(0.5, 0.5)}
	q, wRef, err := p.BedloadFluxes(w, []float64{testZ0}, []float64{1, 1}, testSediment)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.04304900118389737, 0.13536467734698443}
	for i := range want {
		if different(q[i], want[i], testTolerance) {
			t.Errorf("q[%d]: have %g, want %g", i, q[i], want[i])
		}
		if !floats.EqualWithinAbsOrRel(real(wRef[i]), real(w[i]), 1e-12, 1e-12) ||
			!floats.EqualWithinAbsOrRel(imag(wRef[i]), imag(w[i]), 1e-12, 1e-12) {
			t.Errorf("wRef[%d]: have %v, want %v", i, wRef[i], w[i])
		}
	}
}

func TestBedloadFluxThreshold(t *testing.T) {
	p := DefaultParams()
	for _, w := range []complex128{0, 0.01, complex(0, -0.05), complex(0.07, 0.07), 0.1} {
		q, _ := p.BedloadFlux(w, testZ0, 1, testSediment)
		if q != 0 {
			t.Errorf("w=%v: have q=%g, want exactly 0", w, q)
		}
	}
}

func TestBedloadFluxMonotonic(t *testing.T) {
	p := DefaultParams()
	prev := -1.0
	for s := 0.0; s <= 2; s += 0.05 {
		q, _ := p.BedloadFlux(complex(s, 0), testZ0, 1, testSediment)
		if q < prev {
			t.Errorf("speed %g: q=%g is less than q=%g at the previous speed", s, q, prev)
		}
		prev = q
	}
}

func TestBedloadFluxDirection(t *testing.T) {
	p := DefaultParams()
	for _, w := range []complex128{complex(0.6, 0), complex(-0.3, 0.9), complex(0, -1), complex(-0.5, -0.5)} {
		q, wRef := p.BedloadFlux(w, testZ0, 0.8, testSediment)
		if q <= 0 {
			t.Fatalf("w=%v: expected transport but q=%g", w, q)
		}
		if d := math.Abs(cmplx.Phase(wRef) - cmplx.Phase(w)); d > 1e-12 {
			t.Errorf("w=%v: reference velocity direction differs by %g", w, d)
		}
		e, n := p.Decompose(q, w)
		if d := math.Abs(math.Atan2(n, e) - cmplx.Phase(w)); d > 1e-12 {
			t.Errorf("w=%v: transport direction differs by %g", w, d)
		}
		if different(math.Hypot(e, n), q, 1e-12) {
			t.Errorf("w=%v: transport magnitude %g != %g", w, math.Hypot(e, n), q)
		}
	}
}

func TestDecomposeZero(t *testing.T) {
	p := DefaultParams()
	e, n := p.Decompose(0, 0)
	if e != 0 || n != 0 {
		t.Errorf("have (%g, %g), want (0, 0)", e, n)
	}
}

func TestBedloadFluxesPerFaceRoughness(t *testing.T) {
	p := DefaultParams()
	w := []complex128{0.5i, 0.5i}
	z0 := []float64{testZ0, 2 * testZ0}
	q, _, err := p.BedloadFluxes(w, z0, []float64{1, 1}, testSediment)
	if err != nil {
		t.Fatal(err)
	}
	if !(q[1] > q[0]) {
		t.Errorf("rougher bed should have more transport: %v", q)
	}
	if _, _, err := p.BedloadFluxes(w, []float64{1, 2, 3}, []float64{1, 1}, testSediment); err == nil {
		t.Error("expected an error for wrong number of roughness heights")
	}
	if _, _, err := p.BedloadFluxes(w, z0, []float64{1}, testSediment); err == nil {
		t.Error("expected an error for wrong number of heights")
	}
}

func TestCheck(t *testing.T) {
	if err := DefaultParams().Check(); err != nil {
		t.Error(err)
	}
	p := DefaultParams()
	p.ReferenceHeight = 0
	if err := p.Check(); err == nil {
		t.Error("expected an error for zero reference height")
	}
	if err := testSediment.Check(); err != nil {
		t.Error(err)
	}
	s := testSediment
	s.SedimentDensity = 1000
	if err := s.Check(); err == nil {
		t.Error("expected an error for sediment lighter than water")
	}
}

func TestTransportUnits(t *testing.T) {
	if u := TransportUnits(); u != "kg m^-1 s^-1" {
		t.Errorf("have %s", u)
	}
}
