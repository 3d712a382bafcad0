package security

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const confirmationScope = "delete"

type confirmationClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenIssuer hands out short-lived tokens proving the admin password was entered, so a
// client can confirm several deletes without resending it.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// RandomSecret returns a process-local signing key for deployments without JWT_SECRET.
func RandomSecret() ([]byte, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	return secret, nil
}

func (t *TokenIssuer) Issue(subject string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := confirmationClaims{
		Scope: confirmationScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign confirmation token: %w", err)
	}

	return token, expiresAt, nil
}

func (t *TokenIssuer) Verify(tokenString string) error {
	claims := &confirmationClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return fmt.Errorf("invalid confirmation token: %w", err)
	}
	if !token.Valid || claims.Scope != confirmationScope {
		return fmt.Errorf("invalid confirmation token scope %q", claims.Scope)
	}

	return nil
}
