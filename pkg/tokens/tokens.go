// Package tokens issues and verifies the signed tokens used by the auth
// service. Access and refresh tokens form two independent signing domains:
// each domain has its own HMAC secret and its own TTL, so a token minted
// for one domain never verifies under the other.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Domain selects which secret/TTL pair a token is issued or verified under.
type Domain string

const (
	DomainAccess  Domain = "access"
	DomainRefresh Domain = "refresh"
)

var (
	ErrMalformed        = errors.New("malformed token")
	ErrSignatureInvalid = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
)

// Claims is the payload carried by every token. Subject is the user's
// email; Domain records which signing domain minted the token.
type Claims struct {
	Role   string `json:"role"`
	Domain Domain `json:"dom"`
	jwt.RegisteredClaims
}

type domainConfig struct {
	secret []byte
	ttl    time.Duration
}

// Codec is immutable after construction and safe for concurrent use.
type Codec struct {
	domains map[Domain]domainConfig
	now     func() time.Time
}

func NewCodec(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		return nil, errors.New("tokens: signing secrets must not be empty")
	}
	return &Codec{
		domains: map[Domain]domainConfig{
			DomainAccess:  {secret: accessSecret, ttl: accessTTL},
			DomainRefresh: {secret: refreshSecret, ttl: refreshTTL},
		},
		now: time.Now,
	}, nil
}

// TTL returns the configured lifetime for tokens of the given domain.
func (c *Codec) TTL(d Domain) time.Duration {
	return c.domains[d].ttl
}

func (c *Codec) Issue(subject, role string, d Domain) (string, error) {
	cfg, ok := c.domains[d]
	if !ok {
		return "", fmt.Errorf("tokens: unknown domain %q", d)
	}
	now := c.now()
	claims := Claims{
		Role:   role,
		Domain: d,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ttl)),
			// unique JTI: tokens minted in the same second must still
			// differ, or refresh rotation could reissue an identical token
			ID: uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.secret)
}

// Verify checks signature, domain, and expiry. Expiry is validated here
// rather than by the jwt library: a token is expired iff now >= exp, at
// second granularity.
func (c *Codec) Verify(token string, d Domain) (*Claims, error) {
	cfg, ok := c.domains[d]
	if !ok {
		return nil, fmt.Errorf("tokens: unknown domain %q", d)
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrSignatureInvalid
		}
		return cfg.secret, nil
	}, jwt.WithoutClaimsValidation())
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrSignatureInvalid):
		return nil, ErrSignatureInvalid
	default:
		return nil, ErrMalformed
	}
	if claims.Domain != d {
		return nil, ErrSignatureInvalid
	}
	if claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}
	if !c.now().Truncate(time.Second).Before(claims.ExpiresAt.Time) {
		return nil, ErrExpired
	}
	return &claims, nil
}
