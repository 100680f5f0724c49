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

import "github.com/ctessum/sparse"

// Source specifies the methods that are necessary for a dataset to act
// as input to Run. Time-varying fields are read one time step at a time
// by index into the time coordinate.
type Source interface {
	// Times returns the time coordinate.
	Times() (*TimeAxis, error)

	// Mesh returns the model mesh, with zero-based connectivity.
	Mesh() (*Mesh, error)

	// Sigma returns the vertical coordinate.
	Sigma() (*Sigma, error)

	// Elevation returns the node-centered sea surface elevation [m]
	// at time step t.
	Elevation(t int) (*sparse.DenseArray, error)

	// Velocity returns the face-centered eastward and northward
	// velocities [m/s] in vertical layer k at time step t.
	Velocity(t, k int) (u, v *sparse.DenseArray, err error)

	// VelocityUnits returns the units of the velocity components.
	VelocityUnits() string

	// FaceField returns the time-invariant face-centered variable with
	// the given name.
	FaceField(name string) (*sparse.DenseArray, error)
}

// Metadata describes a run for the output dataset.
type Metadata struct {
	TimeUnits      string
	VelocityUnits  string
	TransportUnits string
	Params         Params
	Sediment       Sediment
	Roughness      float64 // canonical z0 [m]; NaN when a per-face field is used.
}

// Step holds the face-centered output fields for one time step.
type Step struct {
	// UBot and VBot are the eastward and northward velocity components
	// at the reference height [m/s].
	UBot, VBot []float64

	// UBedload and VBedload are the eastward and northward bedload
	// transport components [kg m-1 s-1].
	UBedload, VBedload []float64
}

// Sink specifies the methods that are necessary for a dataset to receive
// the output of Run.
type Sink interface {
	// Create initializes the sink and writes the time-invariant mesh
	// information. It is called once, before any call to Append.
	Create(m *Mesh, md *Metadata) error

	// Append adds the fields for the time with coordinate value t.
	// Calls are made in order of strictly increasing t.
	Append(t float64, s *Step) error
}
