// Package hash wraps bcrypt for password storage.
package hash

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash at the default cost. Inputs longer
// than 72 bytes are rejected by bcrypt itself.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether plain matches the stored hash.
func CheckPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
