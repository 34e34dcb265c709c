package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
)

// checksum returns the hex SHA-256 of data.
func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// verifyChecksum compares the checksum of data against stored.
func verifyChecksum(data []byte, stored string) error {
	if got := checksum(data); got != stored {
		return &ValidationError{Err: ErrChecksumMismatch, Details: "data section was modified or truncated"}
	}
	return nil
}
