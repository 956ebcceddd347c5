package models

import (
	"hash/fnv"
	"strings"
)

const hashDigits = "0123456789abcdefghijklmnopqrstuvwxyz"

// HashCaseID derives a stable de-identified token for a source key.
// The token is the FNV-1a 32-bit hash of "<secret>::<sourceKey>" rendered
// in upper-case base 36 and left-padded to 8 characters, so the same
// secret always maps a source key to the same token.
func HashCaseID(secret, sourceKey string) string {
	h := fnv.New32a()
	h.Write([]byte(secret + "::" + sourceKey))
	n := h.Sum32()

	if n == 0 {
		return "00000000"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{hashDigits[n%36]}, b...)
		n /= 36
	}
	s := strings.ToUpper(string(b))
	for len(s) < 8 {
		s = "0" + s
	}
	return s
}
