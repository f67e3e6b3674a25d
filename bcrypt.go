package blog

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt work factor used when none is configured
const DefaultPasswordCost = 10

// BcryptHasher hashes passwords with bcrypt and a per call random salt
type BcryptHasher struct {
	Cost int
}

var _ PasswordHasher = BcryptHasher{}

// NewBcryptHasher returns a hasher with the cost clamped to the range bcrypt accepts
func NewBcryptHasher(cost int) BcryptHasher {
	return BcryptHasher{Cost: normalizeCost(cost)}
}

// Hash will generate a password hash
func (h BcryptHasher) Hash(raw string) (string, error) {
	if raw == "" {
		return "", ErrNoEmptyString
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(raw), normalizeCost(h.Cost))
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify will validate the given cleartext password matches the digest.
// Malformed digests never match.
func (h BcryptHasher) Verify(raw, digest string) bool {
	if raw == "" || digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(raw)) == nil
}

func normalizeCost(cost int) int {
	switch {
	case cost == 0:
		return DefaultPasswordCost
	case cost < bcrypt.MinCost:
		return bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		return bcrypt.MaxCost
	default:
		return cost
	}
}
