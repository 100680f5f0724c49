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

	"github.com/ctessum/sparse"
)

// Sigma holds the terrain-following vertical coordinate of a layered
// model as fractions of the water column, from 0 at the surface to -1 at
// the bed. Both arrays are indexed [k, node].
type Sigma struct {
	// Layers holds the fractions at the layer centers. It may be nil if
	// the model only provides layer interfaces.
	Layers *sparse.DenseArray

	// Levels holds the fractions at the layer interfaces. It has one
	// more entry in the first dimension than there are layers. It is
	// used when Layers is nil, and for single-layer models.
	Levels *sparse.DenseArray
}

// NumLayers returns the number of vertical layers described by s.
func (s *Sigma) NumLayers() (int, error) {
	switch {
	case s.Layers != nil:
		return s.Layers.Shape[0], nil
	case s.Levels != nil:
		return s.Levels.Shape[0] - 1, nil
	default:
		return 0, fmt.Errorf("bedload: sigma coordinate has neither levels nor layers")
	}
}

// BedFractions returns, for each node, the upper and lower sigma fractions
// whose difference times the water depth gives the thickness of the
// bed layer. These are the centers of the two deepest layers. A model
// with a single layer uses the interfaces bounding it, or the surface
// and the bed if there are no interfaces, so that the thickness is never
// zero. Without layer centers, the interfaces bounding layer bed are used.
func (s *Sigma) BedFractions(bed int) (upper, lower []float64, err error) {
	layers, err := s.NumLayers()
	if err != nil {
		return nil, nil, err
	}
	var a *sparse.DenseArray
	var ku, kl int
	switch {
	case s.Layers != nil && layers > 1:
		a, ku, kl = s.Layers, bed-1, bed
	case s.Levels != nil:
		a, ku, kl = s.Levels, bed, bed+1
	default:
		nodes := s.Layers.Shape[1]
		upper, lower = make([]float64, nodes), make([]float64, nodes)
		for i := range lower {
			lower[i] = -1
		}
		return upper, lower, nil
	}
	if ku < 0 || kl >= a.Shape[0] {
		return nil, nil, fmt.Errorf("bedload: bed layer %d is out of range for sigma coordinate with shape %v", bed, a.Shape)
	}
	nodes := a.Shape[1]
	upper, lower = make([]float64, nodes), make([]float64, nodes)
	for i := 0; i < nodes; i++ {
		upper[i] = a.Get(ku, i)
		lower[i] = a.Get(kl, i)
	}
	return upper, lower, nil
}

// BedThickness returns the node-centered thickness [m] of the bed layer
// given the sigma fractions from BedFractions, the bathymetric depth h [m]
// and the sea surface elevation zeta [m].
func BedThickness(upper, lower, h []float64, zeta *sparse.DenseArray) (*sparse.DenseArray, error) {
	n := len(h)
	if len(upper) != n || len(lower) != n || len(zeta.Elements) != n {
		return nil, fmt.Errorf("bedload: bed thickness: mismatched node counts: %d, %d, %d, %d",
			len(upper), len(lower), n, len(zeta.Elements))
	}
	o := sparse.ZerosDense(n)
	for i := range o.Elements {
		o.Elements[i] = (upper[i] - lower[i]) * (h[i] + zeta.Elements[i])
	}
	return o, nil
}
