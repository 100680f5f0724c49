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

// Package bedload computes near-bed velocity and bedload sediment transport
// from the bottom layer of an unstructured-grid coastal ocean model.
//
// Node-centered layer geometry and face-centered velocities are read one
// time step at a time from a Source, passed through the logarithmic wall law
// and the Meyer-Peter-Müller transport relation, and appended to a Sink as
// face-centered vector fields.
package bedload

import (
	"fmt"

	"github.com/ctessum/unit"
)

// Version gives the version number.
const Version = "1.0.0"

// Params holds the physical constants used by the boundary layer and
// sediment transport formulas. The zero value is not usable; start from
// DefaultParams.
type Params struct {
	// VonKarman is the von Kármán constant κ.
	VonKarman float64

	// Gravity is gravitational acceleration [m/s2].
	Gravity float64

	// CriticalShields is the critical Shields parameter θc below which
	// there is no transport.
	CriticalShields float64

	// ReferenceHeight is the height above the bed [m] that velocities are
	// extrapolated to.
	ReferenceHeight float64

	// Epsilon guards the direction of near-zero velocities.
	Epsilon float64

	// MPMCoefficient and MPMExponent are the coefficient and exponent of
	// the Meyer-Peter-Müller relation φ = a θ^b.
	MPMCoefficient, MPMExponent float64
}

// DefaultParams returns the standard parameter set: κ = 0.4, g = 9.81 m/s2,
// θc = 0.047, a 1 m reference height, ε = 1e-16, and φ = 8 θ^1.5.
func DefaultParams() Params {
	return Params{
		VonKarman:       0.4,
		Gravity:         9.81,
		CriticalShields: 0.047,
		ReferenceHeight: 1,
		Epsilon:         1e-16,
		MPMCoefficient:  8,
		MPMExponent:     1.5,
	}
}

// Check returns an error if any of the parameters is outside of its
// physically meaningful range.
func (p Params) Check() error {
	if !(p.VonKarman > 0) {
		return fmt.Errorf("bedload: von Kármán constant must be > 0 but is %g", p.VonKarman)
	}
	if !(p.Gravity > 0) {
		return fmt.Errorf("bedload: gravity must be > 0 m/s2 but is %g", p.Gravity)
	}
	if p.CriticalShields < 0 {
		return fmt.Errorf("bedload: critical Shields parameter must be >= 0 but is %g", p.CriticalShields)
	}
	if !(p.ReferenceHeight > 0) {
		return fmt.Errorf("bedload: reference height must be > 0 m but is %g", p.ReferenceHeight)
	}
	if p.Epsilon < 0 {
		return fmt.Errorf("bedload: epsilon must be >= 0 but is %g", p.Epsilon)
	}
	return nil
}

// Sediment holds the properties of the bed material and the fluid above it.
type Sediment struct {
	GrainDiameter   float64 // median grain diameter d50 [m]
	FluidDensity    float64 // ρ [kg/m3]
	SedimentDensity float64 // ρs [kg/m3]
}

// Check verifies that the sediment properties are physically meaningful.
func (s Sediment) Check() error {
	vals := []float64{s.GrainDiameter, s.FluidDensity, s.SedimentDensity}
	names := []string{"grain diameter", "fluid density", "sediment density"}
	for i, v := range vals {
		if !(v > 0) {
			return fmt.Errorf("bedload: %s must be > 0 but is %g", names[i], v)
		}
	}
	if s.SedimentDensity <= s.FluidDensity {
		return fmt.Errorf("bedload: sediment density (%g) must be greater than fluid density (%g)",
			s.SedimentDensity, s.FluidDensity)
	}
	return nil
}

// relativeDensity returns s = ρs/ρ.
func (s Sediment) relativeDensity() float64 {
	return s.SedimentDensity / s.FluidDensity
}

// TransportUnits returns the units of the bedload transport rate,
// mass per unit width per unit time.
func TransportUnits() string {
	// q = φ √((s-1) g d³) ρs: m2/s times kg/m3.
	q := unit.Div(
		unit.Mul(unit.New(1, unit.Meter2), unit.New(1, unit.KilogramPerMeter3)),
		unit.New(1, unit.Second),
	)
	return q.Dimensions().String()
}

// CanonicalRoughness returns the roughness height z0 [m] corresponding to
// the physical (Nikuradse) roughness ks [m], z0 = ks/30.
func CanonicalRoughness(ks float64) float64 {
	return ks / 30
}
