// Package credentials hashes and verifies administrator passwords.
package credentials

import (
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password we allow into the system.
const MinPasswordLength = 8

// HashCost currently using the default cost of bcrypt
var HashCost = bcrypt.DefaultCost

// Hash returns a salted one-way hash of password. The salt is freshly
// random on every call, so hashing the same password twice yields
// different hashes.
func Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether password hashes to hash using the salt embedded
// in hash. A malformed hash is simply a non-match, never an error.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
