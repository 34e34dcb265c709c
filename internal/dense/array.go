// Package dense implements a row-major float64 array and the backend that differentiates over it.
//
// Arrays are immutable from the backend's point of view: every operation allocates its result.
// Elementwise operations broadcast with NumPy rules; ReduceTo undoes broadcasting in backward rules.
package dense

import (
	"fmt"
	"strings"
)

// Array is a dense row-major float64 array.
type Array struct {
	shape Shape
	data  []float64
}

// New creates an array of the given shape over data.
//
// The data slice is copied.
func New(shape Shape, data []float64) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("dense: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("dense: shape %v needs %d elements, got %d", shape, shape.NumElements(), len(data))
	}
	return &Array{shape: shape.Clone(), data: append([]float64(nil), data...)}, nil
}

// MustNew is like New but panics on error.
func MustNew(shape Shape, data []float64) *Array {
	a, err := New(shape, data)
	if err != nil {
		panic(err)
	}
	return a
}

// Scalar creates a shapeless array holding v.
func Scalar(v float64) *Array {
	return &Array{shape: Shape{}, data: []float64{v}}
}

// Vector creates a 1-D array.
func Vector(values ...float64) *Array {
	return &Array{shape: Shape{len(values)}, data: append([]float64(nil), values...)}
}

// Matrix creates a 2-D array from rows of equal length.
func Matrix(rows [][]float64) (*Array, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("dense: matrix must have at least one row and one column")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("dense: row %d has %d columns, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return &Array{shape: Shape{len(rows), cols}, data: data}, nil
}

// Full creates an array of the given shape filled with v.
func Full(shape Shape, v float64) *Array {
	data := make([]float64, shape.NumElements())
	for i := range data {
		data[i] = v
	}
	return &Array{shape: shape.Clone(), data: data}
}

// Zeros creates an array of the given shape filled with zeros.
func Zeros(shape Shape) *Array {
	return &Array{shape: shape.Clone(), data: make([]float64, shape.NumElements())}
}

// Shape returns a copy of the array's shape.
func (a *Array) Shape() Shape {
	return a.shape.Clone()
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int {
	return len(a.shape)
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.data)
}

// Data returns a copy of the elements in row-major order.
func (a *Array) Data() []float64 {
	return append([]float64(nil), a.data...)
}

// Item returns the only element of a single-element array.
func (a *Array) Item() float64 {
	if len(a.data) != 1 {
		panic(fmt.Sprintf("dense: Item on array of shape %v", a.shape))
	}
	return a.data[0]
}

// At returns the element at the given coordinates.
func (a *Array) At(coords ...int) float64 {
	if len(coords) != len(a.shape) {
		panic(fmt.Sprintf("dense: At: %d coordinates for shape %v", len(coords), a.shape))
	}
	strides := a.shape.Strides()
	idx := 0
	for i, c := range coords {
		if c < 0 || c >= a.shape[i] {
			panic(fmt.Sprintf("dense: At: coordinate %d out of range for dimension %d of shape %v", c, i, a.shape))
		}
		idx += c * strides[i]
	}
	return a.data[idx]
}

// Rows returns a 2-D array as nested slices.
func (a *Array) Rows() [][]float64 {
	if len(a.shape) != 2 {
		panic(fmt.Sprintf("dense: Rows on array of shape %v", a.shape))
	}
	rows := make([][]float64, a.shape[0])
	for i := range rows {
		rows[i] = append([]float64(nil), a.data[i*a.shape[1]:(i+1)*a.shape[1]]...)
	}
	return rows
}

// String formats the array with nested brackets.
func (a *Array) String() string {
	var sb strings.Builder
	a.format(&sb, 0, 0)
	return sb.String()
}

func (a *Array) format(sb *strings.Builder, dim, offset int) {
	if dim == len(a.shape) {
		fmt.Fprintf(sb, "%g", a.data[offset])
		return
	}
	stride := a.shape[dim:].NumElements() / a.shape[dim]
	sb.WriteByte('[')
	for i := 0; i < a.shape[dim]; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		a.format(sb, dim+1, offset+i*stride)
	}
	sb.WriteByte(']')
}
