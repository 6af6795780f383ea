package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the fixed bcrypt work factor. It is deliberately not
// configurable: stored hashes are never rehashed, so changing it would
// split the user base across work factors.
const passwordCost = bcrypt.DefaultCost

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a password with a hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
