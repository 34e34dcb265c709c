package dense

import (
	"fmt"
	"math"
)

// Shape is the list of dimensions of an array. The empty shape is a scalar.
type Shape []int

// NumElements returns the number of elements an array of this shape holds.
// The result is only meaningful for shapes that pass Validate.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every dimension is positive and that the element count fits in an int.
func (s Shape) Validate() error {
	n := 1
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
		if n > math.MaxInt/dim {
			return fmt.Errorf("shape %v has too many elements", s)
		}
		n *= dim
	}
	return nil
}

// Equal reports whether both shapes have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return Shape{}
	}
	return append(Shape(nil), s...)
}

// Strides returns row-major strides: stride[i] is the product of all dimensions after i.
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// String formats the shape as (d0, d1, ...).
func (s Shape) String() string {
	out := "("
	for i, d := range s {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprint(d)
	}
	return out + ")"
}

// Broadcast combines two shapes with NumPy rules: dimensions are aligned from the right and are
// compatible when equal or when one of them is 1. Missing dimensions count as 1.
//
//	(3, 1) with (3, 5) → (3, 5)
//	()     with (2, 2) → (2, 2)
//	(3, 4) with (3, 5) → error
func Broadcast(a, b Shape) (Shape, error) {
	n := max(len(a), len(b))
	out := make(Shape, n)
	for i := 0; i < n; i++ {
		ad, bd := 1, 1
		if j := len(a) - 1 - i; j >= 0 {
			ad = a[j]
		}
		if j := len(b) - 1 - i; j >= 0 {
			bd = b[j]
		}
		switch {
		case ad == bd, bd == 1:
			out[n-1-i] = ad
		case ad == 1:
			out[n-1-i] = bd
		default:
			return nil, fmt.Errorf("shapes %v and %v not compatible for broadcasting (dimension %d: %d vs %d)",
				a, b, n-1-i, ad, bd)
		}
	}
	return out, nil
}

// broadcastStrides returns strides that read an array of shape in as if it had shape out.
// Padded and size-1 dimensions get stride 0.
func broadcastStrides(in, out Shape) []int {
	strides := make([]int, len(out))
	offset := len(out) - len(in)
	orig := in.Strides()
	for i := range out {
		j := i - offset
		if j < 0 || in[j] == 1 {
			continue
		}
		strides[i] = orig[j]
	}
	return strides
}

// flatIndex maps a flat position in an output layout to the flat position in a source layout.
func flatIndex(pos int, outStrides, inStrides []int) int {
	idx := 0
	for i, s := range outStrides {
		coord := pos / s
		pos %= s
		idx += coord * inStrides[i]
	}
	return idx
}
