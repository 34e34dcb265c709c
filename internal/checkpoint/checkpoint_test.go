package checkpoint

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/backprop/internal/dense"
	"github.com/born-ml/backprop/internal/engine"
)

func TestWriteRead(t *testing.T) {
	arrays := map[string]*dense.Array{
		"w": dense.MustNew(dense.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6}),
		"b": dense.Scalar(-0.5),
		"v": dense.Vector(math.Pi, math.Inf(1)),
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, arrays, map[string]string{"format": "backprop"}))

	f, err := Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "v", "w"}, f.Names())
	assert.Equal(t, map[string]string{"format": "backprop"}, f.Metadata)
	for name, want := range arrays {
		got := f.Arrays[name]
		assert.True(t, want.Shape().Equal(got.Shape()), name)
		assert.Equal(t, want.Data(), got.Data(), name)
	}
}

func TestWrite_HeaderLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]*dense.Array{
		"b": dense.Vector(1, 2),
		"a": dense.Scalar(3),
	}, nil))

	raw := buf.Bytes()
	size := binary.LittleEndian.Uint64(raw[:8])
	var header map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw[8:8+size], &header))

	var meta map[string]string
	require.NoError(t, json.Unmarshal(header[metadataKey], &meta))
	assert.Equal(t, checksum(raw[8+size:]), meta[checksumKey])
	delete(header, metadataKey)

	entries := make(map[string]entryHeader, len(header))
	for name, msg := range header {
		var e entryHeader
		require.NoError(t, json.Unmarshal(msg, &e))
		entries[name] = e
	}

	want := map[string]entryHeader{
		"a": {DType: "F64", Shape: []int64{}, DataOffsets: [2]int64{0, 8}},
		"b": {DType: "F64", Shape: []int64{2}, DataOffsets: [2]int64{8, 24}},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, raw, 8+int(size)+24)
}

func TestRead_ChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]*dense.Array{"x": dense.Vector(1, 2)}, nil))

	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0x01

	_, err := Read(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestWrite_ReservedName(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, map[string]*dense.Array{metadataKey: dense.Scalar(1)}, nil)
	assert.Error(t, err)
}

// encode builds a raw checkpoint from a header and data section.
func encode(t *testing.T, header map[string]any, data []byte) *bytes.Buffer {
	t.Helper()
	js, err := json.Marshal(header)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(js))))
	buf.Write(js)
	buf.Write(data)
	return &buf
}

func TestRead_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]any
		data   []byte
		want   error
	}{
		{
			name:   "out of bounds",
			header: map[string]any{"x": entryHeader{DType: "F64", Shape: []int64{2}, DataOffsets: [2]int64{0, 16}}},
			data:   make([]byte, 8),
			want:   ErrOutOfBounds,
		},
		{
			name:   "negative offset",
			header: map[string]any{"x": entryHeader{DType: "F64", Shape: []int64{1}, DataOffsets: [2]int64{-8, 0}}},
			data:   make([]byte, 8),
			want:   ErrOutOfBounds,
		},
		{
			name: "overlap",
			header: map[string]any{
				"x": entryHeader{DType: "F64", Shape: []int64{2}, DataOffsets: [2]int64{0, 16}},
				"y": entryHeader{DType: "F64", Shape: []int64{1}, DataOffsets: [2]int64{8, 16}},
			},
			data: make([]byte, 16),
			want: ErrOffsetOverlap,
		},
		{
			name:   "dtype",
			header: map[string]any{"x": entryHeader{DType: "I64", Shape: []int64{1}, DataOffsets: [2]int64{0, 8}}},
			data:   make([]byte, 8),
			want:   ErrUnsupportedDType,
		},
		{
			name:   "shape",
			header: map[string]any{"x": entryHeader{DType: "F64", Shape: []int64{3}, DataOffsets: [2]int64{0, 16}}},
			data:   make([]byte, 16),
			want:   ErrShapeMismatch,
		},
		{
			name:   "negative dimension",
			header: map[string]any{"x": entryHeader{DType: "F64", Shape: []int64{-1}, DataOffsets: [2]int64{0, 8}}},
			data:   make([]byte, 8),
			want:   ErrShapeMismatch,
		},
		{
			name:   "element count overflow",
			header: map[string]any{"x": entryHeader{DType: "F64", Shape: []int64{1 << 32, 1 << 32}, DataOffsets: [2]int64{0, 0}}},
			data:   nil,
			want:   ErrShapeMismatch,
		},
		{
			name:   "zero dimension",
			header: map[string]any{"x": entryHeader{DType: "F64", Shape: []int64{0}, DataOffsets: [2]int64{0, 0}}},
			data:   nil,
			want:   ErrShapeMismatch,
		},
		{
			name:   "partial element",
			header: map[string]any{"x": entryHeader{DType: "F32", Shape: []int64{1}, DataOffsets: [2]int64{0, 6}}},
			data:   make([]byte, 6),
			want:   ErrShapeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(encode(t, tt.header, tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "x", verr.Name)
		})
	}
}

func TestRead_HeaderTooLarge(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(MaxHeaderSize+1)))

	_, err := Read(&buf)
	assert.ErrorIs(t, err, ErrHeaderTooLarge)
}

func TestRead_F32(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:], math.Float32bits(1.5))
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(-2))

	f, err := Read(encode(t, map[string]any{
		"x": entryHeader{DType: "F32", Shape: []int64{2}, DataOffsets: [2]int64{0, 8}},
	}, data))
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2}, f.Arrays["x"].Data())
}

func TestSnapshot_SaveLoadRestore(t *testing.T) {
	ctx := engine.NewContext[*dense.Array](dense.NewBackend())
	vars := map[string]engine.Variable[*dense.Array]{
		"w": ctx.CreateVariable(dense.Vector(1, 2)),
		"b": ctx.CreateVariable(dense.Scalar(3)),
	}

	snap := Capture(ctx, vars)
	snap.State = map[string]*dense.Array{"m.0": dense.Vector(0.1, 0.2)}
	snap.Timestep = 7
	snap.Metadata = map[string]string{"optimizer": "adam"}

	path := filepath.Join(t.TempDir(), "run.safetensors")
	require.NoError(t, snap.Save(path))

	ctx.SetVariableValue(vars["w"], dense.Vector(0, 0))
	ctx.SetVariableValue(vars["b"], dense.Scalar(0))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Timestep)
	assert.Equal(t, map[string]string{"optimizer": "adam"}, loaded.Metadata)
	require.Contains(t, loaded.State, "m.0")
	assert.Equal(t, []float64{0.1, 0.2}, loaded.State["m.0"].Data())

	require.NoError(t, loaded.Restore(ctx, vars))
	assert.Equal(t, []float64{1, 2}, ctx.Value(vars["w"]).Data())
	assert.Equal(t, 3.0, ctx.Value(vars["b"]).Item())
}

func TestSnapshot_RestoreAggregatesErrors(t *testing.T) {
	ctx := engine.NewContext[*dense.Array](dense.NewBackend())
	w := ctx.CreateVariable(dense.Vector(1, 2))
	vars := map[string]engine.Variable[*dense.Array]{"w": w}

	snap := &Snapshot{Variables: map[string]*dense.Array{
		"w":    dense.Vector(1, 2, 3),
		"bias": dense.Scalar(0),
	}}

	err := snap.Restore(ctx, vars)
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, merr.Errors[0], ErrUnknownVariable)
	assert.ErrorIs(t, merr.Errors[1], ErrShapeMismatch)

	// Nothing was written.
	assert.Equal(t, []float64{1, 2}, ctx.Value(w).Data())
}

func TestSnapshot_ReservedPrefix(t *testing.T) {
	snap := &Snapshot{Variables: map[string]*dense.Array{"optim.x": dense.Scalar(1)}}
	assert.Error(t, snap.Save(filepath.Join(t.TempDir(), "bad.safetensors")))
}
