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

	"github.com/ctessum/geom"
)

// Nearest returns the index of the point in points that is closest to p,
// measured as Euclidean distance in the coordinate units of the points.
// Ties go to the lowest index. It returns -1 if points is empty.
func Nearest(points []geom.Point, p geom.Point) int {
	best, bestDist := -1, math.Inf(1)
	for i, x := range points {
		dx, dy := x.X-p.X, x.Y-p.Y
		if d := dx*dx + dy*dy; d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
