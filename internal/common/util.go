package common

import (
	"crypto/rand"
	"encoding/hex"
)

// RandHex generates a random hexadecimal string from size random bytes.
// The resulting string is twice as long as size (two hex characters per
// byte). It returns an error only if the system random source fails.
func RandHex(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RandBytes returns size cryptographically random bytes. It panics only if
// the system random source is broken, which is unrecoverable anyway.
func RandBytes(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeBytes overwrites the contents of the provided byte slice with zeros.
// Useful for removing passwords from memory after use. A nil slice is a
// no-op.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
