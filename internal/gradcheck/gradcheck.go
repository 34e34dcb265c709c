// Package gradcheck compares autodiff gradients against central finite differences.
//
// The objective is reduced to a scalar by summing the elements of its value, which matches the
// ones-seed Gradient.Grad uses. Variable values are restored after every perturbation.
package gradcheck

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"

	"github.com/born-ml/backprop/internal/dense"
	"github.com/born-ml/backprop/internal/engine"
)

// Config controls the finite-difference check.
type Config struct {
	// Step is the perturbation h used in (f(x+h) - f(x-h)) / 2h.
	Step float64

	// Tolerance bounds |autodiff - numeric| / max(1, |autodiff|, |numeric|).
	Tolerance float64
}

// DefaultConfig returns a step and tolerance suited to smooth float64 objectives.
func DefaultConfig() Config {
	return Config{
		Step:      1e-6,
		Tolerance: 1e-5,
	}
}

// Codec exposes the elements of a value as a flat slice.
type Codec[T any] interface {
	Flatten(x T) []float64
	Unflatten(like T, data []float64) T
}

// ScalarCodec flattens float64 values.
type ScalarCodec struct{}

// Flatten implements Codec.
func (ScalarCodec) Flatten(x float64) []float64 { return []float64{x} }

// Unflatten implements Codec.
func (ScalarCodec) Unflatten(_ float64, data []float64) float64 { return data[0] }

// DenseCodec flattens dense arrays in row-major order.
type DenseCodec struct{}

// Flatten implements Codec.
func (DenseCodec) Flatten(x *dense.Array) []float64 { return x.Data() }

// Unflatten implements Codec.
func (DenseCodec) Unflatten(like *dense.Array, data []float64) *dense.Array {
	return dense.MustNew(like.Shape(), data)
}

// Numeric estimates d(sum(expr))/d(v) with central differences.
func Numeric[T any](expr engine.Expression[T], ctx *engine.Context[T], v engine.Variable[T], codec Codec[T], step float64) T {
	base := ctx.Value(v)
	defer ctx.SetVariableValue(v, base)

	flat := codec.Flatten(base)
	grad := make([]float64, len(flat))
	for i := range flat {
		shifted := append([]float64(nil), flat...)

		shifted[i] = flat[i] + step
		ctx.SetVariableValue(v, codec.Unflatten(base, shifted))
		plus := total(codec, ctx.Evaluate(expr).Value)

		shifted[i] = flat[i] - step
		ctx.SetVariableValue(v, codec.Unflatten(base, shifted))
		minus := total(codec, ctx.Evaluate(expr).Value)

		grad[i] = (plus - minus) / (2 * step)
	}
	return codec.Unflatten(base, grad)
}

// Compare checks the autodiff gradient of expr against Numeric for every variable in vars.
//
// Every mismatching element is reported; the returned error is nil when all agree.
func Compare[T any](expr engine.Expression[T], ctx *engine.Context[T], codec Codec[T], cfg Config, vars ...engine.Variable[T]) error {
	var result *multierror.Error
	g := engine.Of(expr, ctx)
	for _, v := range vars {
		analytic := codec.Flatten(g.Grad(v))
		numeric := codec.Flatten(Numeric(expr, ctx, v, codec, cfg.Step))
		if len(analytic) != len(numeric) {
			result = multierror.Append(result, fmt.Errorf("%s: autodiff gradient has %d elements, finite difference %d",
				v, len(analytic), len(numeric)))
			continue
		}
		for i := range analytic {
			scale := math.Max(1, math.Max(math.Abs(analytic[i]), math.Abs(numeric[i])))
			if diff := math.Abs(analytic[i] - numeric[i]); diff/scale > cfg.Tolerance || math.IsNaN(diff) {
				result = multierror.Append(result, fmt.Errorf("%s[%d]: autodiff %g, finite difference %g",
					v, i, analytic[i], numeric[i]))
			}
		}
	}
	return result.ErrorOrNil()
}

func total[T any](codec Codec[T], x T) float64 {
	var sum float64
	for _, v := range codec.Flatten(x) {
		sum += v
	}
	return sum
}
