package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification errors. The middleware collapses all of these into a
// single external 401; they exist so internal logs can record the real reason.
var (
	// ErrInvalidSignature indicates the token was tampered with or signed
	// with a different secret.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrTokenExpired indicates the embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrMalformedToken indicates the token could not be parsed or lacks
	// a subject claim.
	ErrMalformedToken = errors.New("malformed token")
)

// DefaultTokenTTL is the validity window for issued tokens.
const DefaultTokenTTL = 30 * time.Minute

// TokenService issues and verifies signed, self-contained bearer tokens.
// Tokens are stateless: validity is evaluated from the signature and the
// embedded expiry alone, with no server-side session lookup. There is no
// revocation list; an issued token stays valid until its expiry passes.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithTTL overrides the default token validity window.
func WithTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLeeway sets the clock-skew tolerance applied during expiry checks.
func WithLeeway(leeway time.Duration) TokenOption {
	return func(s *TokenService) {
		if leeway >= 0 {
			s.leeway = leeway
		}
	}
}

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenService creates a TokenService signing with the given secret.
// The secret comes from startup configuration and is fixed for the process
// lifetime; rotation requires a restart.
func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}

	s := &TokenService{
		secret: secret,
		ttl:    DefaultTokenTTL,
		leeway: 30 * time.Second,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the configured validity window.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a signed token for the given subject with an absolute
// expiry of now + TTL.
func (s *TokenService) Issue(subject string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("issue token: %w", ErrMalformedToken)
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks a token's signature and expiry and returns its subject.
// Checks run in order: signature integrity, then expiry, then subject
// presence. Each failure maps to one of the package's sentinel errors.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			// HS256 only. Anything else, "none" included, is a signature failure.
			if t.Method != jwt.SigningMethodHS256 {
				return nil, ErrInvalidSignature
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		default:
			return "", ErrMalformedToken
		}
	}

	if !token.Valid {
		return "", ErrInvalidSignature
	}
	if claims.Subject == "" {
		return "", ErrMalformedToken
	}

	return claims.Subject, nil
}
