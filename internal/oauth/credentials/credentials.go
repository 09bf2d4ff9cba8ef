// Package credentials is the gateway's only window into the user
// database: lookup of a profile by email or id, and password
// verification against its stored bcrypt hash. The grant flow treats
// it as an external collaborator behind a single bounded round trip.
package credentials

import (
	"golang.org/x/crypto/bcrypt"
)

// Profile is a resource owner's record as the credential store returns it.
type Profile struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
}

// Verify reports whether the password matches the stored bcrypt hash.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashPassword produces a bcrypt hash for seeding and tests.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
