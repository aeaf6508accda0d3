// Package auth provides the password hashing and bearer token primitives
// used by the auth service.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the bcrypt work factor applied to every new hash.
const passwordCost = bcrypt.DefaultCost

// HashPassword computes a salted bcrypt digest of the plaintext. Each call
// generates a fresh salt, so two hashes of the same password differ.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored digest.
// A mismatch is not an error, it is simply false.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
