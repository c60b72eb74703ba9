package service

import (
	"crypto/rand"
	"fmt"

	"autofix/internal/models"
)

// base32 alphabet; references stay shouty and unambiguous on receipts.
const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// NewReference returns a fresh candidate booking reference, e.g.
// "BK7Q2MZVA4KX". Uniqueness is enforced by the store; callers retry
// on collision.
func NewReference() (string, error) {
	buf := make([]byte, models.ReferenceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return models.ReferencePrefix + string(buf), nil
}
