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
)

// Extrapolate takes a horizontal velocity w [m/s] measured zr [m] above
// the bed, where the bed has roughness height z0 [m], and returns the
// friction velocity u* and the velocity at p.ReferenceHeight above the bed.
// Both results point in the same direction as w.
//
// The magnitude of the reference velocity follows the logarithmic profile
//	|wRef| = |u*| / κ · ln(ReferenceHeight / z0)
// and its direction is taken from w / (|w| + ε), so that a zero velocity
// yields a zero reference velocity rather than a division fault.
func (p Params) Extrapolate(w complex128, z0, zr float64) (ustar, wRef complex128) {
	cd := p.RoughnessToDrag(z0, zr)
	ustar = complex(math.Sqrt(cd), 0) * w
	speedRef := cmplx.Abs(ustar) / p.VonKarman * math.Log(p.ReferenceHeight/z0)
	wRef = w * complex(speedRef/(cmplx.Abs(w)+p.Epsilon), 0)
	return ustar, wRef
}
