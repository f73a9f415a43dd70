package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is the bcrypt work factor for account passwords.
const passwordHashCost = 12

// ErrPasswordTooLong is returned when a password exceeds bcrypt's 72-byte
// input limit; bcrypt silently ignores everything past it.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	return string(hash), err
}

// CheckPasswordHash reports whether the plaintext password matches the hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
