package passwordutil

import "golang.org/x/crypto/bcrypt"

// GeneratePasswordHash derives a salted one-way hash from a password.
// bcrypt generates a random per-password salt and embeds it in the
// returned string. Costs below bcrypt.MinCost fall back to the default.
func GeneratePasswordHash(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash compares a hash and the provided password.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
