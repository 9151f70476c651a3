package models

import "math"

// Series is a single time-indexed column. Times are millisecond timestamps in
// ascending order; NaN marks a missing value.
type Series struct {
	Name   string
	Times  []int64
	Values []float64
}

// Len returns the number of rows.
func (s *Series) Len() int { return len(s.Times) }

// MinTime returns the first timestamp. Only valid for non-empty series.
func (s *Series) MinTime() int64 { return s.Times[0] }

// MaxTime returns the last timestamp. Only valid for non-empty series.
func (s *Series) MaxTime() int64 { return s.Times[len(s.Times)-1] }

// Frame is an ordered timestamp index with named float64 columns of equal
// length. NaN marks a missing cell.
type Frame struct {
	Times   []int64
	Columns []string
	Values  map[string][]float64
}

// NewFrame creates an empty frame with the given column names.
func NewFrame(cols ...string) *Frame {
	f := &Frame{Columns: append([]string(nil), cols...), Values: map[string][]float64{}}
	for _, c := range cols {
		f.Values[c] = nil
	}
	return f
}

// NumRows returns the row count.
func (f *Frame) NumRows() int { return len(f.Times) }

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool { return f == nil || len(f.Times) == 0 }

// Column returns the values of a column, or nil if absent.
func (f *Frame) Column(name string) []float64 { return f.Values[name] }

// SetColumn adds or replaces a column. vals must have NumRows entries.
func (f *Frame) SetColumn(name string, vals []float64) {
	if _, ok := f.Values[name]; !ok {
		f.Columns = append(f.Columns, name)
	}
	f.Values[name] = vals
}

// IsMissing reports whether v marks a missing cell.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// AllMissing reports whether every entry of vals is NaN. True for empty input.
func AllMissing(vals []float64) bool {
	for _, v := range vals {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// MissingCount returns the number of NaN entries in vals.
func MissingCount(vals []float64) int {
	n := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
