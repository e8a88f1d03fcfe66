package task

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashBytes returns the lowercase hexadecimal SHA-256 digest of data.
func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
