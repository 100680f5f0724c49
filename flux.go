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
	"fmt"
	"math"
	"math/cmplx"
)

// BedloadFlux calculates the instantaneous bedload transport rate
// [kg m-1 s-1] using the Meyer-Peter-Müller (1948) relation for a
// velocity w [m/s] measured zr [m] above a bed with roughness height
// z0 [m]. It also returns the velocity extrapolated to the reference
// height, as calculated by Extrapolate.
//
// The Shields parameter is calculated from the magnitude of the bottom
// stress, and the excess over the critical value is floored at zero so that
// there is no transport below the threshold of motion.
func (p Params) BedloadFlux(w complex128, z0, zr float64, sed Sediment) (q float64, wRef complex128) {
	ustar, wRef := p.Extrapolate(w, z0, zr)
	cd := p.RoughnessToDrag(z0, zr)

	bstress := complex(cd*sed.FluidDensity, 0) * ustar * complex(cmplx.Abs(ustar), 0)
	s := sed.relativeDensity()

	θsf := cmplx.Abs(bstress) / ((s - 1) * p.Gravity * sed.GrainDiameter)
	θ := θsf - p.CriticalShields
	if θ < 0 {
		θ = 0
	}
	φ := p.MPMCoefficient * math.Pow(θ, p.MPMExponent)

	d := sed.GrainDiameter
	q = φ * math.Sqrt((s-1)*p.Gravity*d*d*d) * sed.SedimentDensity
	return q, wRef
}

// BedloadFluxes applies BedloadFlux to every element of w. zr holds the
// measurement height for each element. z0 holds either a single roughness
// height used for every element or one roughness height per element.
func (p Params) BedloadFluxes(w []complex128, z0, zr []float64, sed Sediment) (q []float64, wRef []complex128, err error) {
	if len(zr) != len(w) {
		return nil, nil, fmt.Errorf("bedload: %d velocities but %d heights", len(w), len(zr))
	}
	if len(z0) != 1 && len(z0) != len(w) {
		return nil, nil, fmt.Errorf("bedload: %d velocities but %d roughness heights", len(w), len(z0))
	}
	q = make([]float64, len(w))
	wRef = make([]complex128, len(w))
	for i, wi := range w {
		z := z0[0]
		if len(z0) > 1 {
			z = z0[i]
		}
		q[i], wRef[i] = p.BedloadFlux(wi, z, zr[i], sed)
	}
	return q, wRef, nil
}

// Decompose splits the scalar transport rate q into east and north
// components along the direction of w. The direction is guarded by
// p.Epsilon in the same way as in Extrapolate.
func (p Params) Decompose(q float64, w complex128) (east, north float64) {
	mag := cmplx.Abs(w) + p.Epsilon
	return q * real(w) / mag, q * imag(w) / mag
}
