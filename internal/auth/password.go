// Package auth hashes and verifies user passwords. Pure functions, no I/O.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted one-way hash from the plaintext password.
// bcrypt embeds a fresh random salt in every hash.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether plain matches the stored hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
