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

	"github.com/ctessum/sparse"
)

// RoughnessToDrag returns the drag coefficient cd corresponding to roughness
// height z0 [m] for a velocity measured zr [m] above the bed, under the
// logarithmic wall law:
//	cd = (κ / ln(zr/z0))²
// zr must be greater than z0 and z0 must be greater than zero; otherwise
// the result is NaN or Inf.
func (p Params) RoughnessToDrag(z0, zr float64) float64 {
	r := p.VonKarman / math.Log(zr/z0)
	return r * r
}

// DragToRoughness returns the roughness height z0 [m] corresponding to drag
// coefficient cd for a velocity measured zr [m] above the bed:
//	z0 = zr / exp(κ / √cd)
// cd must be greater than zero.
func (p Params) DragToRoughness(cd, zr float64) float64 {
	return zr / math.Exp(p.VonKarman/math.Sqrt(cd))
}

// RoughnessToDragArray applies RoughnessToDrag element-wise. z0 and zr must
// have the same number of elements, or one of them must have exactly one
// element, in which case it is used for every element of the other.
func (p Params) RoughnessToDragArray(z0, zr *sparse.DenseArray) (*sparse.DenseArray, error) {
	return broadcast(z0, zr, p.RoughnessToDrag)
}

// DragToRoughnessArray applies DragToRoughness element-wise, broadcasting
// as in RoughnessToDragArray.
func (p Params) DragToRoughnessArray(cd, zr *sparse.DenseArray) (*sparse.DenseArray, error) {
	return broadcast(cd, zr, p.DragToRoughness)
}

func broadcast(a, b *sparse.DenseArray, f func(a, b float64) float64) (*sparse.DenseArray, error) {
	na, nb := len(a.Elements), len(b.Elements)
	var out *sparse.DenseArray
	switch {
	case na == nb:
		out = sparse.ZerosDense(b.Shape...)
		for i := range out.Elements {
			out.Elements[i] = f(a.Elements[i], b.Elements[i])
		}
	case na == 1:
		out = sparse.ZerosDense(b.Shape...)
		for i, v := range b.Elements {
			out.Elements[i] = f(a.Elements[0], v)
		}
	case nb == 1:
		out = sparse.ZerosDense(a.Shape...)
		for i, v := range a.Elements {
			out.Elements[i] = f(v, b.Elements[0])
		}
	default:
		return nil, fmt.Errorf("bedload: array shapes %v and %v do not match", a.Shape, b.Shape)
	}
	return out, nil
}
