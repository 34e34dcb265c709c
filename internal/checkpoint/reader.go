package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/born-ml/backprop/internal/dense"
)

// File is a decoded checkpoint.
type File struct {
	Arrays   map[string]*dense.Array
	Metadata map[string]string
}

// Names returns the array names in alphabetical order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Arrays))
	for name := range f.Arrays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Read decodes a checkpoint from r.
func Read(r io.Reader) (*File, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("checkpoint: failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, &ValidationError{Err: ErrHeaderTooLarge, Details: fmt.Sprintf("%d > %d", headerSize, MaxHeaderSize)}
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, fmt.Errorf("checkpoint: failed to read header: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, fmt.Errorf("checkpoint: failed to parse header: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: failed to read data: %w", err)
	}

	file := &File{Arrays: make(map[string]*dense.Array, len(raw))}
	entries := make(map[string]entryHeader, len(raw))
	for name, msg := range raw {
		if name == metadataKey {
			if err := json.Unmarshal(msg, &file.Metadata); err != nil {
				return nil, fmt.Errorf("checkpoint: failed to parse metadata: %w", err)
			}
			continue
		}
		var e entryHeader
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, fmt.Errorf("checkpoint: failed to parse entry %q: %w", name, err)
		}
		entries[name] = e
	}

	if stored, ok := file.Metadata[checksumKey]; ok {
		if err := verifyChecksum(data, stored); err != nil {
			return nil, err
		}
		delete(file.Metadata, checksumKey)
	}

	if err := validateOffsets(entries, int64(len(data))); err != nil {
		return nil, err
	}

	for name, e := range entries {
		a, err := decode(name, e, data)
		if err != nil {
			return nil, err
		}
		file.Arrays[name] = a
	}
	return file, nil
}

// ReadFile decodes the checkpoint at path.
func ReadFile(path string) (*File, error) {
	//nolint:gosec // G304: path comes from the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: failed to open file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Read(f)
}

func decode(name string, e entryHeader, data []byte) (*dense.Array, error) {
	shape := make(dense.Shape, len(e.Shape))
	for i, d := range e.Shape {
		if d <= 0 || int64(int(d)) != d {
			return nil, &ValidationError{Err: ErrShapeMismatch, Name: name,
				Details: fmt.Sprintf("invalid dimension %d at index %d", d, i)}
		}
		shape[i] = int(d)
	}
	if err := shape.Validate(); err != nil {
		return nil, &ValidationError{Err: ErrShapeMismatch, Name: name, Details: err.Error()}
	}

	var width int
	switch e.DType {
	case "F64":
		width = 8
	case "F32":
		width = 4
	default:
		return nil, &ValidationError{Err: ErrUnsupportedDType, Name: name, Details: e.DType}
	}

	n := shape.NumElements()
	chunk := data[e.DataOffsets[0]:e.DataOffsets[1]]
	if len(chunk)%width != 0 || len(chunk)/width != n {
		return nil, &ValidationError{Err: ErrShapeMismatch, Name: name,
			Details: fmt.Sprintf("shape %v needs %d %s elements, got %d bytes", shape, n, e.DType, len(chunk))}
	}

	values := make([]float64, n)
	for i := range values {
		if width == 8 {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk[i*8:]))
		} else {
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(chunk[i*4:])))
		}
	}

	a, err := dense.New(shape, values)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: entry %q: %w", name, err)
	}
	return a, nil
}

// validateOffsets rejects entries that leave the data section or overlap one another.
func validateOffsets(entries map[string]entryHeader, dataSize int64) error {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return entries[names[i]].DataOffsets[0] < entries[names[j]].DataOffsets[0]
	})

	for i, name := range names {
		start, end := entries[name].DataOffsets[0], entries[name].DataOffsets[1]
		if start < 0 || end < start || end > dataSize {
			return &ValidationError{Err: ErrOutOfBounds, Name: name,
				Details: fmt.Sprintf("[%d, %d) with data size %d", start, end, dataSize)}
		}
		if i < len(names)-1 {
			next := names[i+1]
			if end > entries[next].DataOffsets[0] {
				return &ValidationError{Err: ErrOffsetOverlap, Name: name,
					Details: fmt.Sprintf("overlaps %q", next)}
			}
		}
	}
	return nil
}
