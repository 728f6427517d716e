package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only looks at the first 72 bytes; longer inputs are refused
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// salted adaptive password hashing, safe for concurrent use
type BcryptHasher struct {
	cost int
}

func NewHasher(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashed), nil
}

// false on mismatch, empty hash (OAuth-only accounts) or a malformed hash
func (h *BcryptHasher) Verify(plaintext, hashed string) bool {
	if hashed == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
