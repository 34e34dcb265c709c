package scalar_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/backprop/internal/scalar"
)

func TestSigmoid_Stable(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{0, 0.5},
		{2, 1 / (1 + math.Exp(-2))},
		{-2, 1 / (1 + math.Exp(2))},
		{-1000, 0},
		{1000, 1},
	}
	for _, tt := range tests {
		got := scalar.Sigmoid(tt.x)
		assert.False(t, math.IsNaN(got))
		assert.InDelta(t, tt.want, got, 1e-15)
	}
}

func TestBackend_Identities(t *testing.T) {
	b := scalar.New()

	assert.Equal(t, "float64", b.Name())
	assert.Equal(t, 0.0, b.Zero())
	assert.Equal(t, 0.0, b.ZerosLike(5))
	assert.Equal(t, 1.0, b.OnesLike(5))
	assert.Equal(t, 5.0, b.ReduceTo(5, 1))
	assert.Equal(t, 5.0, b.BroadcastTo(5, 1))
	assert.Equal(t, 5.0, b.SumAll(5))
	assert.Equal(t, 1.0, b.Equal(2, 2))
	assert.Equal(t, 0.0, b.Equal(2, 3))
	assert.Equal(t, 3.0, b.Maximum(2, 3))
	assert.Equal(t, -6.0, b.Scale(3, -2))
	assert.InDelta(t, 8.0, b.Pow(2, 3), 1e-15)
}
