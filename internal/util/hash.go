package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashString returns the hex encoded SHA-256 of the joined parts. Parts are
// separated by a NUL byte so ("ab","c") and ("a","bc") differ.
func HashString(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
