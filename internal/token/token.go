// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package token issues and verifies signed, time-bounded bearer
// tokens. Tokens are HS256 JWTs over a single server-held secret; the
// service is pure and stateless, so a token moves through exactly one
// lifecycle: issued, valid until its embedded expiry, expired. There
// is no revocation; rotating the secret invalidates all tokens at
// once.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Sentinel errors forming the token half of the error taxonomy.
var (
	// ErrTokenInvalid is returned for signature mismatch, malformed
	// structure, or a missing required claim.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired is returned for a well-formed token past its
	// validity window.
	ErrTokenExpired = errors.New("token expired")
)

// MinSecretLength guards against trivially brute-forceable HMAC keys.
const MinSecretLength = 16

// Claims are the named values carried inside a token: the subject's
// username plus the registered claims (expiry, issue time). The
// plaintext password is deliberately never part of the claims; see
// DESIGN.md on the credential-carrying tokens of older deployments.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens. It owns no state beyond the
// secret and is safe for concurrent use.
type Service struct {
	secret []byte
	now    func() time.Time
}

// NewService creates a token Service with the server-held signing
// secret. The secret comes from configuration, never from code.
func NewService(secret []byte) (*Service, error) {
	if len(secret) < MinSecretLength {
		return nil, oops.Code("TOKEN_WEAK_SECRET").
			With("min_bytes", MinSecretLength).
			Errorf("signing secret must be at least %d bytes", MinSecretLength)
	}
	return &Service{secret: secret, now: time.Now}, nil
}

// Issue signs the claims with an absolute expiry of now+ttl and
// returns the encoded token.
func (s *Service) Issue(claims Claims, ttl time.Duration) (string, error) {
	if claims.Username == "" {
		return "", oops.Code("TOKEN_MISSING_SUBJECT").Errorf("claims must carry a username")
	}
	if ttl <= 0 {
		return "", oops.Code("TOKEN_INVALID_TTL").With("ttl", ttl).Errorf("ttl must be positive")
	}

	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify checks the signature and validity window and returns the
// recovered claims. Structure or signature problems and a missing
// username claim fail with ErrTokenInvalid; a well-formed token at or
// past its expiry fails with ErrTokenExpired. Both are terminal for
// the request that presented the token.
func (s *Service) Verify(tokenString string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, oops.Code("TOKEN_EXPIRED").Wrap(ErrTokenExpired)
		}
		return Claims{}, oops.Code("TOKEN_INVALID").Wrap(errors.Join(ErrTokenInvalid, err))
	}
	if claims.Username == "" {
		return Claims{}, oops.Code("TOKEN_MISSING_SUBJECT").Wrap(ErrTokenInvalid)
	}
	return claims, nil
}
