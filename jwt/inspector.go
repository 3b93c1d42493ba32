package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken is returned when a token cannot be split or decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrWrongTokenType is returned when a refresh token is presented as an access token.
	ErrWrongTokenType = errors.New("wrong token type")
)

const (
	// TypeAccess is the "type" claim value carried by access tokens.
	TypeAccess = "access"
	// TypeRefresh is the "type" claim value carried by refresh tokens.
	TypeRefresh = "refresh"
)

// Config tunes an [Inspector].
type Config struct {
	// Leeway is subtracted from exp before comparing against the clock, so a token
	// is treated as expired slightly early.
	Leeway time.Duration
	// Now overrides the clock. Nil uses time.Now.
	Now func() time.Time
}

// Claims is the subset of server-issued claims the client cares about.
type Claims struct {
	Type string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Inspector decodes tokens without signature verification.
type Inspector struct {
	parser *jwt.Parser
	leeway time.Duration
	now    func() time.Time
}

// NewInspector validates cfg and returns an [Inspector].
func NewInspector(cfg Config) (*Inspector, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Inspector{
		parser: jwt.NewParser(jwt.WithoutClaimsValidation()),
		leeway: cfg.Leeway,
		now:    now,
	}, nil
}

// Inspect returns the decoded claims of token.
func (i *Inspector) Inspect(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMalformedToken
	}
	claims := &Claims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

// InspectAccess is Inspect plus a check that token is not a refresh token. Tokens
// that carry no "type" claim are accepted.
func (i *Inspector) InspectAccess(token string) (*Claims, error) {
	claims, err := i.Inspect(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != "" && claims.Type != TypeAccess {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// Expired reports whether token's exp (minus leeway) is in the past. Tokens
// without an exp claim never expire locally.
func (i *Inspector) Expired(token string) (bool, error) {
	remaining, ok, err := i.ExpiresIn(token)
	if err != nil {
		return false, err
	}
	return ok && remaining <= 0, nil
}

// ExpiresIn returns the time left before token expires. ok is false when the
// token has no exp claim.
func (i *Inspector) ExpiresIn(token string) (remaining time.Duration, ok bool, err error) {
	claims, err := i.Inspect(token)
	if err != nil {
		return 0, false, err
	}
	if claims.ExpiresAt == nil {
		return 0, false, nil
	}
	return claims.ExpiresAt.Time.Add(-i.leeway).Sub(i.now()), true, nil
}

// Subject returns the sub claim, which the blog API sets to the user ID.
func (i *Inspector) Subject(token string) (string, error) {
	claims, err := i.Inspect(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
