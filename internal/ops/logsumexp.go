package ops

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// LogSumExpOp computes log(Σ exp(x)) over every element of x.
//
// The forward pass shifts by max(x) so large inputs do not overflow:
//
//	lse = m + log(Σ exp(x - m)),  m = max(x)
//
// Backward pass: d(lse)/dx = exp(x - lse) = softmax(x), so grad_x = g * exp(x - y).
type LogSumExpOp[T any] struct {
	x engine.Expression[T]
}

// LogSumExp returns log(Σ exp(x)).
func LogSumExp[T any](x engine.Expression[T]) *LogSumExpOp[T] {
	return &LogSumExpOp[T]{x: x}
}

// Eval implements engine.Expression.
func (op *LogSumExpOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	x := p.Eval(op.x)
	b := p.Backend()
	ar, el, rd := arithmetic("logsumexp", b), elementary("logsumexp", b), reduction("logsumexp", b)

	m := rd.MaxAll(x.Value)
	lse := ar.Add(m, el.Log(rd.SumAll(el.Exp(ar.Sub(x.Value, m)))))
	return p.NewNode(lse, operands(x), logSumExpVJP[T]{})
}

// LogSumExpAxisOp computes log(Σ exp(x)) along one axis, keeping that axis with size 1.
//
// The backward rule is the same as for the full reduction: the kept axis lets g and y broadcast
// back over x.
type LogSumExpAxisOp[T any] struct {
	x    engine.Expression[T]
	axis int
}

// LogSumExpAxis returns log(Σ exp(x)) along axis. Negative axes count from the last dimension.
func LogSumExpAxis[T any](x engine.Expression[T], axis int) *LogSumExpAxisOp[T] {
	return &LogSumExpAxisOp[T]{x: x, axis: axis}
}

// Eval implements engine.Expression.
func (op *LogSumExpAxisOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	x := p.Eval(op.x)
	b := p.Backend()
	rd := axisReduction("logsumexp", b)
	ar, el := arithmetic("logsumexp", b), elementary("logsumexp", b)

	m := rd.MaxAxis(x.Value, op.axis)
	lse := ar.Add(m, el.Log(rd.SumAxis(el.Exp(ar.Sub(x.Value, m)), op.axis)))
	return p.NewNode(lse, operands(x), logSumExpVJP[T]{})
}

type logSumExpVJP[T any] struct{}

func (logSumExpVJP[T]) VJP(b value.Accumulator[T], g T, y, x *engine.Node[T], argnum int) T {
	if argnum != 0 {
		panic(invalidArgnum("logsumexp", argnum))
	}
	ar := arithmetic("logsumexp", b)
	softmax := elementary("logsumexp", b).Exp(ar.Sub(x.Value, y.Value))
	return ar.Mul(g, softmax)
}

// LogSoftmax returns x - logsumexp(x).
//
// x is shared by both branches; evaluate it once by passing a pointer expression or a variable.
func LogSoftmax[T any](x engine.Expression[T]) *SubOp[T] {
	return Sub[T](x, LogSumExp(x))
}

// LogSoftmaxAxis returns x - logsumexp(x) along axis, normalising each slice independently.
// For a (batch, classes) matrix, axis 1 gives per-row log-probabilities.
func LogSoftmaxAxis[T any](x engine.Expression[T], axis int) *SubOp[T] {
	return Sub[T](x, LogSumExpAxis(x, axis))
}
