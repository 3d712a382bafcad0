package security

import (
	"context"
	"crypto/subtle"
	"fmt"

	custom_error "splitters/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Authorizer decides whether a presented secret may confirm a destructive action.
type Authorizer interface {
	Authorize(ctx context.Context, secret string) error
}

// SharedSecret accepts a single literal password. It is a placeholder gate for a small team
// tool and not a substitute for real access control.
type SharedSecret string

func (s SharedSecret) Authorize(_ context.Context, secret string) error {
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s)) != 1 {
		return custom_error.ErrIncorrectPassword
	}

	return nil
}

// BcryptHash accepts the password whose bcrypt hash it holds.
type BcryptHash []byte

func (h BcryptHash) Authorize(_ context.Context, secret string) error {
	if err := bcrypt.CompareHashAndPassword(h, []byte(secret)); err != nil {
		return custom_error.ErrIncorrectPassword
	}

	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// Gate guards delete actions behind an Authorizer.
type Gate struct {
	authorizer Authorizer
	log        *zap.Logger
}

func NewGate(authorizer Authorizer, logger *zap.Logger) *Gate {
	return &Gate{authorizer: authorizer, log: logger}
}

// Confirm calls fn exactly once when secret is accepted. A rejected secret never reaches fn
// and yields ErrIncorrectPassword.
func (g *Gate) Confirm(ctx context.Context, secret string, fn func() error) error {
	if err := g.authorizer.Authorize(ctx, secret); err != nil {
		g.log.Warn("Delete confirmation rejected", zap.Error(err))
		return err
	}

	return fn()
}
