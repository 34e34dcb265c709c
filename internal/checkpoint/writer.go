// Package checkpoint persists dense arrays in the SafeTensors format.
//
// Format:
//
//	[8 bytes: header_size (uint64 LE)]
//	[header_size bytes: JSON header]
//	[array data: float64 LE, in header order]
//
// Entries are written in alphabetical order by name. Only the F64 dtype is produced; F32 entries
// are widened on read.
package checkpoint

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/born-ml/backprop/internal/dense"
)

// entryHeader describes one array in the SafeTensors header.
type entryHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

const (
	metadataKey = "__metadata__"
	checksumKey = "sha256"
)

// Write encodes arrays and optional metadata to w.
//
// The metadata also records the SHA-256 checksum of the data section, which Read verifies.
func Write(w io.Writer, arrays map[string]*dense.Array, metadata map[string]string) error {
	names := make([]string, 0, len(arrays))
	for name := range arrays {
		if name == metadataKey {
			return fmt.Errorf("checkpoint: reserved name %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var offset int64
	entries := make(map[string]entryHeader, len(names))
	for _, name := range names {
		a := arrays[name]
		shape := a.Shape()
		dims := make([]int64, len(shape))
		for i, d := range shape {
			dims[i] = int64(d)
		}
		size := int64(a.Len() * 8)
		entries[name] = entryHeader{
			DType:       "F64",
			Shape:       dims,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	data := make([]byte, 0, offset)
	for _, name := range names {
		for _, v := range arrays[name].Data() {
			data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
		}
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[checksumKey] = checksum(data)

	header := make(map[string]any, len(entries)+1)
	header[metadataKey] = meta
	for name, e := range entries {
		header[name] = e
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("checkpoint: failed to marshal header: %w", err)
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("checkpoint: failed to write header size: %w", err)
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return fmt.Errorf("checkpoint: failed to write header: %w", err)
	}
	if _, err := bw.Write(data); err != nil {
		return fmt.Errorf("checkpoint: failed to write data: %w", err)
	}
	return bw.Flush()
}

// WriteFile writes arrays to the file at path, replacing it.
func WriteFile(path string, arrays map[string]*dense.Array, metadata map[string]string) (err error) {
	//nolint:gosec // G304: path comes from the command line
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("checkpoint: failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, arrays, metadata)
}
