package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost is deliberately above bcrypt.DefaultCost; password hashing is
// rare enough (register, login, change-password) that the extra work factor
// is affordable.
const bcryptCost = 12

// HashPassword derives a salted bcrypt hash from the plaintext password.
// Two calls with the same input produce different hashes.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether the plaintext password matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
