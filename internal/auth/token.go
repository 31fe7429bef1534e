package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the validity window for issued tokens.
const DefaultTokenTTL = 14 * 24 * time.Hour

// MinSigningKeyLen is the minimum accepted HMAC key length. HS256
// keys shorter than the hash output weaken the MAC, so a short key is
// treated as a fatal configuration error.
const MinSigningKeyLen = 32

// TokenService issues and validates HS256 bearer tokens. Tokens are
// stateless: nothing is stored server-side, so revocation before
// expiry is only possible by rotating the signing key.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService constructs a TokenService. The secret is process-wide
// static configuration; a weak key aborts startup.
func NewTokenService(secret []byte, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < MinSigningKeyLen {
		return nil, fmt.Errorf("auth: signing key must be at least %d bytes, got %d", MinSigningKeyLen, len(secret))
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &TokenService{secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL exposes the configured validity window.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

type tokenClaims struct {
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// Issue signs a token carrying the principal's identity and authority
// set. Expiry is issued-at plus the fixed validity window.
func (s *TokenService) Issue(principal *Principal) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Authorities: principal.Authorities(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.Username(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and expiry of a token and rebuilds a
// Principal view from its claims. The user registry is deliberately not
// consulted: an account disabled after issuance stays valid until the
// token expires.
func (s *TokenService) Validate(tokenString string) (*Principal, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrTokenMalformed
	}
	return NewPrincipal(claims.Subject, claims.Authorities), nil
}
