package access

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// BearerMatches reports whether an Authorization header carries the secret.
// An empty secret never matches.
func BearerMatches(header, secret string) bool {
	if secret == "" {
		return false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(secret)) == 1
}

// PremiumClaims are carried by a signed premium pass.
type PremiumClaims struct {
	Premium bool `json:"premium"`
	jwt.RegisteredClaims
}

// PremiumGate decides whether the is_premium query value unlocks the dashboard.
// Without a signing secret the literal value "true" is accepted.
type PremiumGate struct {
	secret []byte
}

func NewPremiumGate(secret string) *PremiumGate {
	return &PremiumGate{secret: []byte(secret)}
}

// Signed reports whether the gate requires signed passes.
func (g *PremiumGate) Signed() bool {
	return len(g.secret) > 0
}

func (g *PremiumGate) Allows(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if !g.Signed() {
		return value == "true"
	}
	claims, err := ParsePremiumPass(string(g.secret), value)
	return err == nil && claims.Premium
}

// MintPremiumPass issues an HS256 premium pass valid for ttl.
func MintPremiumPass(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("PREMIUM_SIGNING_SECRET environment variable not set")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	now := time.Now()
	claims := PremiumClaims{
		Premium: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParsePremiumPass verifies signature and expiry of a pass.
func ParsePremiumPass(secret, raw string) (*PremiumClaims, error) {
	claims := &PremiumClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid premium pass: %w", err)
	}
	return claims, nil
}
