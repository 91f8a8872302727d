// Package auth supplies the two pieces spec.md deliberately leaves as
// external collaborators (§1: "Cryptographic password hashing and
// authentication ... the reference accepts any password for an existing
// account"): a real bcrypt-backed PasswordHasher/PasswordVerifier pair for
// internal/relationship, wired in only when Config.RequireHashedPassword
// is set, plus an additive JWT session-resume token so a reconnecting
// client can skip re-authenticating.
package auth

import (
	"errors"
	"time"

	"github.com/brnhrs/warhorse-server/internal/relationship"
	"github.com/brnhrs/warhorse-server/internal/store"
)

// ErrTokenInvalid is returned by ResumeSession for an expired, malformed,
// or forged token.
var ErrTokenInvalid = errors.New("resume token invalid")

// Service issues and validates session-resume tokens.
type Service struct {
	jwtConfig *JWTConfig
}

// NewService constructs a Service. secret signs every issued token; ttl
// bounds how long a resume token remains valid.
func NewService(secret []byte, issuer string, ttl time.Duration) *Service {
	return &Service{
		jwtConfig: &JWTConfig{
			Secret:   secret,
			Issuer:   issuer,
			Audience: issuer,
			TTL:      ttl,
		},
	}
}

// IssueResumeToken signs a token binding to userID, minted right after a
// successful login/register.
func (s *Service) IssueResumeToken(userID store.UserID) (string, error) {
	return GenerateToken(s.jwtConfig, userID)
}

// ResumeSession validates token and returns the user it was issued for.
func (s *Service) ResumeSession(token string) (store.UserID, error) {
	claims, err := ValidateToken(s.jwtConfig, token)
	if err != nil {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}

// PasswordHasher returns the PasswordHasher relationship.Service should
// use: real bcrypt if required is true, otherwise nil (the reference
// stub, which accepts the password as its own hash).
func PasswordHasher(required bool, cost int) relationship.PasswordHasher {
	if !required {
		return nil
	}
	return BcryptHasher{Cost: cost}
}

// PasswordVerifier returns the PasswordVerifier relationship.Service
// should use: real bcrypt if required is true, otherwise nil (the
// reference stub, which accepts any password for an existing account).
func PasswordVerifier(required bool) relationship.PasswordVerifier {
	if !required {
		return nil
	}
	return BcryptVerifier{}
}
