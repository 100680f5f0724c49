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

// Package ncf holds helpers for reading NetCDF variables of any numeric
// type into float64 arrays.
package ncf

import (
	"fmt"
	"io"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Read reads the hyperslab of variable name between the corners begin and
// end (both inclusive) and converts it to float64. If begin and end are nil,
// the whole of a non-record variable is read.
func Read(f *cdf.File, name string, begin, end []int) ([]float64, error) {
	dims := f.Header.Lengths(name)
	if dims == nil {
		return nil, fmt.Errorf("variable %s not in file", name)
	}
	n := 1
	if begin == nil {
		if f.Header.IsRecordVariable(name) {
			return nil, fmt.Errorf("record variable %s must be read with explicit bounds", name)
		}
		for _, d := range dims {
			n *= d
		}
	} else {
		if len(begin) != len(dims) || len(end) != len(dims) {
			return nil, fmt.Errorf("variable %s has %d dimensions but bounds have %d and %d",
				name, len(dims), len(begin), len(end))
		}
		for i := range begin {
			if end[i] < begin[i] {
				return nil, fmt.Errorf("variable %s: invalid bounds %v to %v", name, begin, end)
			}
			n *= end[i] - begin[i] + 1
		}
	}
	r := f.Reader(name, begin, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading variable %s: %v", name, err)
	}
	return toFloat64(buf)
}

// ReadDense reads the whole of non-record variable name into an array
// with the variable's shape.
func ReadDense(f *cdf.File, name string) (*sparse.DenseArray, error) {
	v, err := Read(f, name, nil, nil)
	if err != nil {
		return nil, err
	}
	o := sparse.ZerosDense(f.Header.Lengths(name)...)
	copy(o.Elements, v)
	return o, nil
}

// Record reads the slab of record variable name at record index rec.
// The variable's inner dimensions after the record dimension are given
// by prefix, followed by the whole extent of the last dimension.
// For example, Record(f, "u", 5, 2) reads u[5, 2, :].
func Record(f *cdf.File, name string, rec int, prefix ...int) ([]float64, error) {
	dims := f.Header.Lengths(name)
	if dims == nil {
		return nil, fmt.Errorf("variable %s not in file", name)
	}
	if !f.Header.IsRecordVariable(name) {
		return nil, fmt.Errorf("variable %s is not a record variable", name)
	}
	if len(dims) != len(prefix)+2 {
		return nil, fmt.Errorf("variable %s has %d dimensions but %d indices were given",
			name, len(dims), len(prefix)+2)
	}
	begin := append([]int{rec}, prefix...)
	end := append([]int{rec}, prefix...)
	for i, p := range prefix {
		if p < 0 || p >= dims[i+1] {
			return nil, fmt.Errorf("variable %s: index %d is out of range for dimension length %d", name, p, dims[i+1])
		}
	}
	begin = append(begin, 0)
	end = append(end, dims[len(dims)-1]-1)
	return Read(f, name, begin, end)
}

// NumRecs returns the number of complete records in the file.
func NumRecs(f *cdf.File, ff *os.File) (int, error) {
	fi, err := ff.Stat()
	if err != nil {
		return 0, err
	}
	return int(f.Header.NumRecs(fi.Size())), nil
}

// StringAttribute returns the text attribute a of variable v, or the
// empty string if it does not exist or is not text.
func StringAttribute(f *cdf.File, v, a string) string {
	s, _ := f.Header.GetAttribute(v, a).(string)
	return s
}

// IntAttribute returns the first value of the integer attribute a
// of variable v, and whether it exists.
func IntAttribute(f *cdf.File, v, a string) (int, bool) {
	switch x := f.Header.GetAttribute(v, a).(type) {
	case []int32:
		if len(x) > 0 {
			return int(x[0]), true
		}
	case []int16:
		if len(x) > 0 {
			return int(x[0]), true
		}
	}
	return 0, false
}

func toFloat64(buf interface{}) ([]float64, error) {
	switch b := buf.(type) {
	case []float64:
		return b, nil
	case []float32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int16:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []uint8:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unsupported data type %T", buf)
	}
}

// WriteFloat32 writes data to the whole of non-record variable name,
// or to record rec of a record variable if name is a record variable.
func WriteFloat32(f *cdf.File, name string, rec int, data []float64) error {
	d32 := make([]float32, len(data))
	for i, v := range data {
		d32[i] = float32(v)
	}
	return write(f, name, rec, len(data), d32)
}

// WriteFloat64 is like WriteFloat32 for double precision variables.
func WriteFloat64(f *cdf.File, name string, rec int, data []float64) error {
	return write(f, name, rec, len(data), data)
}

// WriteInt32 is like WriteFloat32 for integer variables.
func WriteInt32(f *cdf.File, name string, rec int, data []int32) error {
	return write(f, name, rec, len(data), data)
}

func write(f *cdf.File, name string, rec, n int, data interface{}) error {
	dims := f.Header.Lengths(name)
	if dims == nil {
		return fmt.Errorf("variable %s not in file", name)
	}
	begin := make([]int, len(dims))
	end := make([]int, len(dims))
	size := 1
	for i, d := range dims {
		if i == 0 && f.Header.IsRecordVariable(name) {
			begin[0], end[0] = rec, rec
			continue
		}
		end[i] = d - 1
		size *= d
	}
	if size != n {
		return fmt.Errorf("variable %s: dims are %d but array length is %d", name, size, n)
	}
	w := f.Writer(name, begin, end)
	if _, err := w.Write(data); err != nil && err != io.EOF {
		return fmt.Errorf("writing variable %s: %v", name, err)
	}
	return nil
}
