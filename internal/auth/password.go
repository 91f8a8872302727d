package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/brnhrs/warhorse-server/internal/relationship"
)

// DefaultBcryptCost balances security and latency for an interactive
// login path; operators can raise it via Config.BcryptCost.
const DefaultBcryptCost = bcrypt.DefaultCost

// HashPassword generates a bcrypt hash of password at the given cost.
func HashPassword(cost int, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword reports whether password matches the bcrypt hash.
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// BcryptHasher implements relationship.PasswordHasher over golang.org/x/crypto/bcrypt.
// It is wired in instead of the relationship package's reference stub
// when Config.RequireHashedPassword is set (spec §9 Open Question 5).
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	return HashPassword(cost, password)
}

// BcryptVerifier implements relationship.PasswordVerifier over bcrypt.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(hash, password string) bool {
	return ComparePassword(hash, password) == nil
}

var (
	_ relationship.PasswordHasher   = BcryptHasher{}
	_ relationship.PasswordVerifier = BcryptVerifier{}
)
