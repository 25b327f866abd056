// Package id generates resource identifiers and short random tokens.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// suffixAlphabet keeps generated usernames lowercase and URL-safe.
const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// New returns a random (version 4) UUID string.
// All persisted resources use 128-bit random identifiers.
func New() string {
	return uuid.NewString()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Suffix returns a random lowercase alphanumeric token of length n.
func Suffix(n int) (string, error) {
	s, err := gonanoid.Generate(suffixAlphabet, n)
	if err != nil {
		return "", fmt.Errorf("generate suffix: %w", err)
	}
	return s, nil
}
