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

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Mesh is an unstructured triangular surface mesh.
type Mesh struct {
	// Connectivity holds the zero-based indices of the three nodes
	// of each face.
	Connectivity [][3]int

	// Nodes and Faces hold the horizontal coordinates (longitude as X,
	// latitude as Y) of the mesh nodes and face centers.
	Nodes, Faces []geom.Point

	// Depth is the bathymetric depth at each node [m], positive down.
	Depth []float64
}

// NumNodes returns the number of nodes in the mesh.
func (m *Mesh) NumNodes() int { return len(m.Nodes) }

// NumFaces returns the number of faces in the mesh.
func (m *Mesh) NumFaces() int { return len(m.Connectivity) }

// Check makes sure that the coordinate and depth arrays are consistent
// with the connectivity and that every face refers to existing nodes.
func (m *Mesh) Check() error {
	if len(m.Faces) != len(m.Connectivity) {
		return fmt.Errorf("bedload: mesh has %d faces but %d face centers", len(m.Connectivity), len(m.Faces))
	}
	if len(m.Depth) != len(m.Nodes) {
		return fmt.Errorf("bedload: mesh has %d nodes but %d depths", len(m.Nodes), len(m.Depth))
	}
	for i, f := range m.Connectivity {
		for _, n := range f {
			if n < 0 || n >= len(m.Nodes) {
				return fmt.Errorf("bedload: face %d refers to node %d, which is outside of [0, %d)", i, n, len(m.Nodes))
			}
		}
	}
	return nil
}

// ZeroBased converts connectivity stored with the given start index
// (1 for the Fortran convention used by most ocean models) to zero-based
// node indices and checks that every index falls in [0, nodes).
func ZeroBased(conn [][3]int, start, nodes int) ([][3]int, error) {
	o := make([][3]int, len(conn))
	for i, f := range conn {
		for j, n := range f {
			n -= start
			if n < 0 || n >= nodes {
				return nil, fmt.Errorf("bedload: face %d node %d has index %d, which is outside of [%d, %d)",
					i, j, f[j], start, nodes+start)
			}
			o[i][j] = n
		}
	}
	return o, nil
}

// FaceAverage returns the arithmetic mean of the node-centered values in
// nodeVals over the three nodes of each face.
func (m *Mesh) FaceAverage(nodeVals *sparse.DenseArray) (*sparse.DenseArray, error) {
	if len(nodeVals.Elements) != m.NumNodes() {
		return nil, fmt.Errorf("bedload: face average: %d values for %d nodes", len(nodeVals.Elements), m.NumNodes())
	}
	o := sparse.ZerosDense(m.NumFaces())
	for i, f := range m.Connectivity {
		// Written relative to the first node so that three equal
		// values average to exactly that value.
		a, b, c := nodeVals.Elements[f[0]], nodeVals.Elements[f[1]], nodeVals.Elements[f[2]]
		o.Elements[i] = a + ((b-a)+(c-a))/3
	}
	return o, nil
}

// bedLayerRule maps a vertical layer count to the index of the layer
// adjacent to the bed.
var bedLayerRule = []struct {
	match func(layers int) bool
	index func(layers int) int
}{
	{match: func(n int) bool { return n == 1 }, index: func(int) int { return 0 }},
	{match: func(n int) bool { return n > 1 }, index: func(n int) int { return n - 1 }},
}

// BedLayer returns the index of the vertical layer adjacent to the bed for
// a model with the given number of layers, counting from the surface.
func BedLayer(layers int) (int, error) {
	for _, r := range bedLayerRule {
		if r.match(layers) {
			return r.index(layers), nil
		}
	}
	return -1, fmt.Errorf("bedload: invalid number of vertical layers: %d", layers)
}
