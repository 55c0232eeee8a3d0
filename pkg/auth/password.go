package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength is enforced at user creation, never at login.
	MinPasswordLength = 8
	// MaxPasswordLength guards against bcrypt's 72-byte truncation.
	MaxPasswordLength = 72
)

// HashPassword hashes a plaintext password with bcrypt at the default
// cost.
func HashPassword(password string) ([]byte, error) {
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidCredentials, MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return nil, fmt.Errorf("%w: password must be at most %d characters", ErrInvalidCredentials, MaxPasswordLength)
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// VerifyPassword compares a plaintext password against a bcrypt hash.
// Any failure maps to ErrInvalidCredentials; callers must never
// distinguish a bad hash from a wrong password.
func VerifyPassword(hash []byte, password string) error {
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
