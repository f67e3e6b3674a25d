package blog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// SigningKeys holds the active HMAC secret plus previous secrets that
// are still accepted for verification during a rotation window.
type SigningKeys struct {
	activeKID string
	secrets   map[string][]byte
	jwks      *keyfunc.JWKS
}

// NewSigningKeys builds a key set. Each secret gets a stable kid derived
// from its digest so tokens survive restarts.
func NewSigningKeys(active string, previous ...string) (*SigningKeys, error) {
	active = strings.TrimSpace(active)
	if active == "" {
		return nil, errors.New("signing key is required", errors.CategoryBadInput)
	}

	keys := &SigningKeys{
		activeKID: KeyID(active),
		secrets:   map[string][]byte{},
	}
	keys.secrets[keys.activeKID] = []byte(active)

	for _, secret := range previous {
		secret = strings.TrimSpace(secret)
		if secret == "" {
			continue
		}
		keys.secrets[KeyID(secret)] = []byte(secret)
	}

	given := make(map[string]keyfunc.GivenKey, len(keys.secrets))
	for kid, secret := range keys.secrets {
		given[kid] = keyfunc.NewGivenCustom(secret, keyfunc.GivenKeyOptions{
			Algorithm: jwt.SigningMethodHS256.Alg(),
		})
	}
	keys.jwks = keyfunc.NewGiven(given)

	return keys, nil
}

// MustSigningKeys is like NewSigningKeys but panics on error
func MustSigningKeys(active string, previous ...string) *SigningKeys {
	keys, err := NewSigningKeys(active, previous...)
	if err != nil {
		panic(err)
	}
	return keys
}

// KeyID returns the kid header value used for a secret
func KeyID(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:8])
}

// ActiveKID returns the kid new tokens are signed with
func (k *SigningKeys) ActiveKID() string {
	return k.activeKID
}

func (k *SigningKeys) activeSecret() []byte {
	return k.secrets[k.activeKID]
}

// Len returns the number of accepted secrets
func (k *SigningKeys) Len() int {
	return len(k.secrets)
}

// Keyfunc resolves the verification key by kid. Tokens without a kid
// header are checked against the active secret.
func (k *SigningKeys) Keyfunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	if _, ok := token.Header["kid"]; !ok {
		return k.activeSecret(), nil
	}

	return k.jwks.Keyfunc(token)
}
