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

package ncout

import (
	"fmt"
	"math"
	"time"

	"github.com/spatialmodel/bedload"
	"gonum.org/v1/gonum/floats"
)

// M2Period is the period of the principal lunar semidiurnal tide.
const M2Period = time.Duration(12.4206012 * float64(time.Hour))

// Average averages each field in the output file in over records first
// through last (inclusive) and writes the result to a new file out with
// a single record whose time is the mean of the averaged times. A negative
// last selects the final record. If strictTidal is true, an error is
// returned unless the averaging window spans a whole number of M2 tidal
// cycles, to within one record spacing.
func Average(in, out string, first, last int, strictTidal bool) (*bedload.Summary, error) {
	src, err := Open(in)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if last < 0 {
		last = src.Len() - 1
	}
	if first < 0 || last < first || last >= src.Len() {
		return nil, fmt.Errorf("ncout: invalid averaging window [%d, %d] for %d records", first, last, src.Len())
	}
	axis, err := src.Times()
	if err != nil {
		return nil, err
	}
	if strictTidal {
		if err = checkTidal(axis, first, last); err != nil {
			return nil, err
		}
	}
	m, err := src.Mesh()
	if err != nil {
		return nil, err
	}

	faces := m.NumFaces()
	avg := &bedload.Step{
		UBot:     make([]float64, faces),
		VBot:     make([]float64, faces),
		UBedload: make([]float64, faces),
		VBedload: make([]float64, faces),
	}
	for t := first; t <= last; t++ {
		s, err := src.Step(t)
		if err != nil {
			return nil, err
		}
		floats.Add(avg.UBot, s.UBot)
		floats.Add(avg.VBot, s.VBot)
		floats.Add(avg.UBedload, s.UBedload)
		floats.Add(avg.VBedload, s.VBedload)
	}
	n := float64(last - first + 1)
	for _, f := range [][]float64{avg.UBot, avg.VBot, avg.UBedload, avg.VBedload} {
		floats.Scale(1/n, f)
	}
	tMean := floats.Sum(axis.Values[first:last+1]) / n

	dst := New(out)
	if err = dst.Create(m, src.Metadata()); err != nil {
		dst.Close()
		return nil, err
	}
	if err = dst.Append(tMean, avg); err != nil {
		dst.Close()
		return nil, err
	}
	if err = dst.Close(); err != nil {
		return nil, err
	}

	q := make([]float64, faces)
	for i := range q {
		q[i] = math.Hypot(avg.UBedload[i], avg.VBedload[i])
	}
	return &bedload.Summary{
		Records:       last - first + 1,
		First:         axis.Time(first),
		Last:          axis.Time(last),
		MeanTransport: floats.Sum(q) / float64(faces),
	}, nil
}

// checkTidal returns an error if records first through last do not span
// a whole number of M2 cycles. Each record is taken to represent the mean
// record spacing within the window.
func checkTidal(axis *bedload.TimeAxis, first, last int) error {
	if last <= first {
		return fmt.Errorf("ncout: at least two records are needed to check the tidal window")
	}
	spacing := axis.Time(last).Sub(axis.Time(first)) / time.Duration(last-first)
	span := axis.Time(last).Sub(axis.Time(first)) + spacing
	cycles := math.Round(float64(span) / float64(M2Period))
	if cycles < 1 {
		return fmt.Errorf("ncout: averaging window of %v is shorter than one M2 tidal cycle", span)
	}
	if diff := time.Duration(math.Abs(float64(span) - cycles*float64(M2Period))); diff > spacing {
		return fmt.Errorf("ncout: averaging window of %v is not a whole number of M2 tidal cycles (off by %v)", span, diff)
	}
	return nil
}
