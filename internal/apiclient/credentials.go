package apiclient

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialProvider yields the bearer token for an outgoing request. An
// empty token sends the request unauthenticated.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// NoCredentials never authenticates.
type NoCredentials struct{}

func (NoCredentials) Token(context.Context) (string, error) { return "", nil }

// StaticToken always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Chain returns the first non-empty token of its providers.
type Chain []CredentialProvider

func (c Chain) Token(ctx context.Context) (string, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		token, err := p.Token(ctx)
		if err != nil {
			return "", err
		}
		if token != "" {
			return token, nil
		}
	}
	return "", nil
}

type operatorKey struct{}

// WithOperator records who is acting so SignedToken can use it as subject.
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey{}, operator)
}

// OperatorFromContext returns the operator set by WithOperator.
func OperatorFromContext(ctx context.Context) string {
	op, _ := ctx.Value(operatorKey{}).(string)
	return op
}

// SignedToken mints a short-lived HS256 token per request.
type SignedToken struct {
	Secret   []byte
	Issuer   string
	TTL      time.Duration
	Audience string
	now      func() time.Time
}

// NewSignedToken builds a SignedToken provider.
func NewSignedToken(secret, issuer string, ttl time.Duration) *SignedToken {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SignedToken{Secret: []byte(secret), Issuer: issuer, TTL: ttl, now: time.Now}
}

func (s *SignedToken) Token(ctx context.Context) (string, error) {
	if s == nil || len(s.Secret) == 0 {
		return "", errors.New("signed token: secret not configured")
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	issuedAt := now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.Issuer,
		Subject:   OperatorFromContext(ctx),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.TTL)),
	}
	if s.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}
