// Package auth issues and checks the demo session token.
//
// SESSION FLOW:
//  1. POST /api/session/login creates the profile and sets an HttpOnly
//     cookie holding a signed token whose subject is the profile id
//  2. Routes that change the profile run RequireSession, which validates
//     the cookie and puts the persona id in the request context
//  3. POST /api/session/logout clears the profile and expires the cookie
//
// There are no credentials anywhere: the token only proves that this
// browser went through login on this server. It is a session, not
// authentication.
//
// TOKEN STRUCTURE (three base64 parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header:  {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<profile id>","iss":"vininote","exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is written to and required in every token.
const Issuer = "vininote"

// MinSecretLength matches the config validation rule.
const MinSecretLength = 32

// ErrExpired is returned by Validate for a well-formed but expired token.
var ErrExpired = errors.New("auth: token expired")

// TokenService signs and verifies session tokens with one HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. ttl is the lifetime of every
// token Generate issues.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: session secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("auth: session ttl must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of generated tokens; the session cookie uses it as MaxAge.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Generate signs a token for the given persona id.
func (s *TokenService) Generate(personaID string) (string, error) {
	return s.GenerateWithDuration(personaID, s.ttl)
}

// GenerateWithDuration signs a token that expires after d. Negative d
// yields an already expired token, which tests use.
func (s *TokenService) GenerateWithDuration(personaID string, d time.Duration) (string, error) {
	if personaID == "" {
		return "", errors.New("auth: persona id is required")
	}
	now := s.now()

	c := jwt.RegisteredClaims{
		Subject:   personaID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		Issuer:    Issuer,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, algorithm, issuer and expiry and returns the
// persona id stored in the subject claim.
//
// ALGORITHM CONFUSION:
// jwt.WithValidMethods pins HS256 so a token claiming "none" (or an RSA
// algorithm keyed with our secret as a public key) is rejected before the
// key function ever runs.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	var c jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("auth: invalid token")
	}
	if c.Subject == "" {
		return "", errors.New("auth: token has no subject")
	}
	return c.Subject, nil
}
