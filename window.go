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
	"strings"
	"time"
)

// TimeAxis is a numeric time coordinate with CF-style units, for example
// "days since 1858-11-17 00:00:00".
type TimeAxis struct {
	Values []float64
	Units  string

	origin time.Time
	step   time.Duration
}

// referenceFormats are the layouts accepted for the reference date
// in time units.
var referenceFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.0",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NewTimeAxis parses units and returns the corresponding time axis.
func NewTimeAxis(values []float64, units string) (*TimeAxis, error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("bedload: time units %q are not in the form '<unit> since <date>'", units)
	}
	a := &TimeAxis{Values: values, Units: units}
	switch strings.ToLower(parts[0]) {
	case "days", "day", "d":
		a.step = 24 * time.Hour
	case "hours", "hour", "h", "hr":
		a.step = time.Hour
	case "minutes", "minute", "min":
		a.step = time.Minute
	case "seconds", "second", "s", "sec":
		a.step = time.Second
	default:
		return nil, fmt.Errorf("bedload: unsupported time unit %q", parts[0])
	}
	ref := strings.TrimSpace(parts[1])
	ref = strings.TrimSuffix(ref, " UTC")
	ref = strings.TrimSuffix(ref, " 0:00")
	var err error
	for _, layout := range referenceFormats {
		a.origin, err = time.Parse(layout, ref)
		if err == nil {
			return a, nil
		}
	}
	return nil, fmt.Errorf("bedload: parsing reference date in time units %q: %v", units, err)
}

// Len returns the number of time values.
func (a *TimeAxis) Len() int { return len(a.Values) }

// Time returns the time at index i.
func (a *TimeAxis) Time(i int) time.Time {
	return a.origin.Add(time.Duration(math.Round(a.Values[i] * float64(a.step))))
}

// Value returns the numeric coordinate corresponding to t.
func (a *TimeAxis) Value(t time.Time) float64 {
	return float64(t.Sub(a.origin)) / float64(a.step)
}

// Nearest returns the index of the time value nearest to t.
// Times before the first or after the last value resolve to the
// first or last index, respectively.
func (a *TimeAxis) Nearest(t time.Time) int {
	v := a.Value(t)
	best, bestDist := 0, math.Inf(1)
	for i, x := range a.Values {
		if d := math.Abs(x - v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Window returns the first and last (inclusive) indices of the contiguous
// range of time values spanning start to end. Each end of the window is
// matched to the nearest time value. A zero start or end selects the
// beginning or end of the axis.
func (a *TimeAxis) Window(start, end time.Time) (first, last int, err error) {
	if a.Len() == 0 {
		return 0, -1, fmt.Errorf("bedload: time coordinate is empty")
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return 0, -1, fmt.Errorf("bedload: end time %v is before start time %v", end, start)
	}
	first, last = 0, a.Len()-1
	if !start.IsZero() {
		first = a.Nearest(start)
	}
	if !end.IsZero() {
		last = a.Nearest(end)
	}
	for i := first + 1; i <= last; i++ {
		if !(a.Values[i] > a.Values[i-1]) {
			return 0, -1, fmt.Errorf("bedload: time coordinate is not strictly increasing at index %d", i)
		}
	}
	return first, last, nil
}
