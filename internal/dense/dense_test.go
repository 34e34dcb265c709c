package dense

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/backprop/internal/parallel"
)

func TestBroadcast(t *testing.T) {
	tests := []struct {
		a, b    Shape
		want    Shape
		wantErr bool
	}{
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, false},
		{Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, false},
		{Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false},
		{Shape{}, Shape{2, 2}, Shape{2, 2}, false},
		{Shape{4}, Shape{2, 4}, Shape{2, 4}, false},
		{Shape{3, 4}, Shape{3, 5}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+tt.b.String(), func(t *testing.T) {
			got, err := Broadcast(tt.a, tt.b)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Broadcast mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestShape_Strides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.Strides())
	assert.Equal(t, []int{}, Shape{}.Strides())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.ErrorContains(t, Shape{1 << 32, 1 << 32}.Validate(), "too many elements")
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Shape{2, 2}, []float64{1, 2, 3})
	assert.ErrorContains(t, err, "needs 4 elements")

	_, err = New(Shape{-1}, nil)
	assert.Error(t, err)

	_, err = New(Shape{1 << 32, 1 << 32}, nil)
	assert.ErrorContains(t, err, "too many elements")

	_, err = Matrix([][]float64{{1, 2}, {3}})
	assert.ErrorContains(t, err, "row 1")

	m, err := Matrix([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.At(1, 0))
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, m.Rows())
}

func TestNew_CopiesData(t *testing.T) {
	data := []float64{1, 2}
	a := MustNew(Shape{2}, data)
	data[0] = 99

	assert.Equal(t, 1.0, a.At(0))
	out := a.Data()
	out[1] = 99
	assert.Equal(t, 2.0, a.At(1))
}

func TestArray_String(t *testing.T) {
	assert.Equal(t, "3", Scalar(3).String())
	assert.Equal(t, "[1, 2]", Vector(1, 2).String())
	assert.Equal(t, "[[1, 2, 3], [4, 5, 6]]", MustNew(Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6}).String())
}

func TestBackend_ElementwiseBroadcast(t *testing.T) {
	b := NewBackend()
	m := MustNew(Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	row := MustNew(Shape{3}, []float64{10, 20, 30})
	col := MustNew(Shape{2, 1}, []float64{1, 2})

	assert.Equal(t, []float64{11, 22, 33, 14, 25, 36}, b.Add(m, row).Data())
	assert.Equal(t, []float64{1, 2, 3, 8, 10, 12}, b.Mul(m, col).Data())
	assert.Equal(t, []float64{2, 4, 6, 8, 10, 12}, b.Mul(m, Scalar(2)).Data())
	assert.Panics(t, func() { b.Add(m, Vector(1, 2)) })
}

func TestBackend_ReduceTo(t *testing.T) {
	b := NewBackend()
	g := MustNew(Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})

	tests := []struct {
		name string
		like *Array
		want []float64
	}{
		{"same shape", Zeros(Shape{2, 3}), []float64{1, 2, 3, 4, 5, 6}},
		{"row", Zeros(Shape{1, 3}), []float64{5, 7, 9}},
		{"leading dim dropped", Zeros(Shape{3}), []float64{5, 7, 9}},
		{"column", Zeros(Shape{2, 1}), []float64{6, 15}},
		{"scalar", Scalar(0), []float64{21}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.ReduceTo(g, tt.like)
			assert.Equal(t, tt.like.Shape(), got.Shape())
			assert.Equal(t, tt.want, got.Data())
		})
	}

	assert.Panics(t, func() { b.ReduceTo(g, Zeros(Shape{4})) })
}

func TestBackend_BroadcastTo(t *testing.T) {
	b := NewBackend()
	like := Zeros(Shape{2, 2})

	assert.Equal(t, []float64{3, 3, 3, 3}, b.BroadcastTo(Scalar(3), like).Data())
	assert.Equal(t, []float64{1, 2, 1, 2}, b.BroadcastTo(Vector(1, 2), like).Data())
	assert.Panics(t, func() { b.BroadcastTo(Vector(1, 2, 3), like) })
}

func TestBackend_Reductions(t *testing.T) {
	b := NewBackend()
	x := Vector(3, -1, 7, 2)

	assert.Equal(t, 11.0, b.SumAll(x).Item())
	assert.Equal(t, 7.0, b.MaxAll(x).Item())
	assert.Equal(t, []float64{0, 1, 0, 0}, b.Equal(x, Vector(0, -1, 0, 0)).Data())
	assert.Equal(t, []float64{3, 0, 7, 2}, b.Maximum(x, Scalar(0)).Data())
}

func TestBackend_AxisReductions(t *testing.T) {
	b := NewBackend()
	m := MustNew(Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	cube := MustNew(Shape{2, 2, 2}, []float64{0, 1, 2, 3, 4, 5, 6, 7})

	tests := []struct {
		name  string
		got   *Array
		shape Shape
		data  []float64
	}{
		{"sum rows", b.SumAxis(m, 0), Shape{1, 3}, []float64{5, 7, 9}},
		{"sum columns", b.SumAxis(m, 1), Shape{2, 1}, []float64{6, 15}},
		{"negative axis", b.SumAxis(m, -1), Shape{2, 1}, []float64{6, 15}},
		{"max rows", b.MaxAxis(m, 0), Shape{1, 3}, []float64{4, 5, 6}},
		{"max columns", b.MaxAxis(m, 1), Shape{2, 1}, []float64{3, 6}},
		{"middle axis", b.SumAxis(cube, 1), Shape{2, 1, 2}, []float64{2, 4, 10, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.shape, tt.got.Shape())
			assert.Equal(t, tt.data, tt.got.Data())
		})
	}

	assert.PanicsWithValue(t, "dense: sum: axis out of range for shape (2, 3)", func() { b.SumAxis(m, 2) })
	assert.Panics(t, func() { b.MaxAxis(Scalar(1), 0) })
}

func TestBackend_LinearAlgebra(t *testing.T) {
	b := NewBackend()
	a := MustNew(Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	c := MustNew(Shape{3, 2}, []float64{7, 8, 9, 10, 11, 12})
	v := Vector(1, 0, -1)

	assert.Equal(t, []float64{58, 64, 139, 154}, b.MatMul(a, c).Data())
	assert.Equal(t, []float64{58, 64, 139, 154}, b.Dot(a, c).Data())
	assert.Equal(t, []float64{-2, -2}, b.Dot(a, v).Data())
	assert.Equal(t, []float64{-4, -4}, b.Dot(v, c).Data())
	assert.Equal(t, 2.0, b.Dot(v, v).Item())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, b.Transpose(a).Data())
	assert.Equal(t, Shape{3, 2}, b.Transpose(a).Shape())
	assert.Equal(t, []float64{1, 2, 0, 0, -1, -2}, b.Outer(v, Vector(1, 2)).Data())
	assert.Equal(t, 2, b.Rank(a))

	assert.PanicsWithValue(t, "dense: matmul: shape mismatch [2,3] @ [2,3]", func() { b.MatMul(a, a) })
	assert.Panics(t, func() { b.Dot(MustNew(Shape{1, 1, 1}, []float64{1}), v) })
}

func TestBackend_MatMulLarge(t *testing.T) {
	const n = 64
	a := Zeros(Shape{n, n})
	eye := Zeros(Shape{n, n})
	for i := 0; i < n; i++ {
		eye.data[i*n+i] = 1
		for j := 0; j < n; j++ {
			a.data[i*n+j] = float64(i*n + j)
		}
	}

	for _, b := range []Backend{NewBackend(), NewParallelBackend(parallel.Config{Workers: 4, MinChunk: 1})} {
		assert.Equal(t, a.Data(), b.MatMul(a, eye).Data())
		assert.Equal(t, a.Data(), b.MatMul(eye, a).Data())
	}
}

func TestBackend_CloneIsIndependent(t *testing.T) {
	b := NewBackend()
	x := Vector(1, 2)
	y := b.Clone(x)
	y.data[0] = 5

	assert.Equal(t, 1.0, x.At(0))
	assert.Equal(t, Shape{2}, b.OnesLike(x).Shape())
	assert.Equal(t, []float64{1, 1}, b.OnesLike(x).Data())
	assert.Equal(t, Shape{}, b.Zero().Shape())
}
