package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Password length bounds accepted at registration. bcrypt itself caps input at 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 14
)

var ErrPasswordTooLong = errors.New("password exceeds maximum length of 72 bytes")

// Hasher hashes and verifies passwords with a fixed bcrypt cost.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher. Costs outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Cost returns the work factor used for new hashes.
func (h *Hasher) Cost() int {
	return h.cost
}

// HashPassword creates a salted bcrypt hash of the password.
func (h *Hasher) HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
// A malformed or corrupt hash never matches.
func (h *Hasher) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
