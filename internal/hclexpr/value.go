package hclexpr

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/born-ml/backprop/internal/dense"
)

// ArrayFromValue converts a number or a (nested) list or tuple of numbers to an array.
// Nested sequences must be rectangular.
func ArrayFromValue(v cty.Value) (*dense.Array, error) {
	shape, data, err := flatten(v)
	if err != nil {
		return nil, err
	}
	return dense.New(shape, data)
}

func flatten(v cty.Value) (dense.Shape, []float64, error) {
	switch {
	case v.IsNull():
		return nil, nil, fmt.Errorf("value is null")
	case !v.IsWhollyKnown():
		return nil, nil, fmt.Errorf("value is not known")
	case v.Type() == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return dense.Shape{}, []float64{f}, nil
	case v.Type().IsTupleType() || v.Type().IsListType():
		elems := v.AsValueSlice()
		if len(elems) == 0 {
			return nil, nil, fmt.Errorf("empty sequence")
		}
		var inner dense.Shape
		var data []float64
		for i, elem := range elems {
			shape, values, err := flatten(elem)
			if err != nil {
				return nil, nil, fmt.Errorf("element %d: %w", i, err)
			}
			if i == 0 {
				inner = shape
			} else if !inner.Equal(shape) {
				return nil, nil, fmt.Errorf("element %d has shape %v, want %v", i, shape, inner)
			}
			data = append(data, values...)
		}
		return append(dense.Shape{len(elems)}, inner...), data, nil
	default:
		return nil, nil, fmt.Errorf("unsupported type %s", v.Type().FriendlyName())
	}
}
