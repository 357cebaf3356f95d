package utils

import (
	"crypto/rand"
	"encoding/hex"
)

func Ptr[T any](v T) *T {
	return &v
}

func Val[T any](p *T) T {
	if p != nil {
		return *p
	}
	var zero T
	return zero
}

// RandomToken returns n random bytes, hex encoded.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
