package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the registry's seeded digests.
const DefaultBcryptCost = 10

// Hasher performs one-way password hashing and verification with
// bcrypt. Safe for concurrent use; holds no mutable state.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher. An out-of-range cost is a
// configuration error and must abort startup.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Hash digests a plaintext password. bcrypt salts per call, so hashing
// the same plaintext twice yields different digests that both verify.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the digest. It never
// returns an error: malformed digests simply verify false.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
