package password

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt cost used for stored credentials.
	DefaultCost = 10
	// MinLength is the shortest password accepted at registration.
	MinLength = 6
)

// Hash hashes a password using bcrypt at cost (DefaultCost in production,
// bcrypt.MinCost in tests).
func Hash(password string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares a password with a hash
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Valid checks the registration length rule.
func Valid(password string) bool {
	return len(password) >= MinLength
}
