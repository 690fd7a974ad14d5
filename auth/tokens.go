// Package auth holds the authentication and authorization primitives: signed
// session and reset tokens, password hashing and the ownership/admin policy.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rpupo63/blog-backend/errs"
)

// ResetTokenTTL is the default validity of a password reset token.
const ResetTokenTTL = time.Hour

const (
	purposeAccess = "access"
	purposeReset  = "reset"
)

var signingMethod = jwt.SigningMethodHS256

type sessionClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// ResetClaims is the payload of a password reset token.
type ResetClaims struct {
	UserID  uint   `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Expiry returns the encoded expiry, or the zero time when absent.
func (c ResetClaims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenService issues and verifies session and reset tokens. It holds no state
// besides its keys and clock, so it is safe for concurrent use.
type TokenService struct {
	sessionKey []byte
	resetKey   []byte
	accessTTL  time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

type TokenOption func(*TokenService)

// WithAccessTTL makes session tokens expire after d. Zero disables expiry.
func WithAccessTTL(d time.Duration) TokenOption {
	return func(s *TokenService) {
		s.accessTTL = d
	}
}

func WithResetTTL(d time.Duration) TokenOption {
	return func(s *TokenService) {
		if d > 0 {
			s.resetTTL = d
		}
	}
}

func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(sessionSecret, resetSecret string, opts ...TokenOption) (*TokenService, error) {
	if sessionSecret == "" {
		return nil, errs.NewEnvironmentVariableError("JWT_SECRET_KEY")
	}
	if resetSecret == "" {
		return nil, errs.NewEnvironmentVariableError("SECRET_KEY")
	}

	s := &TokenService{
		sessionKey: []byte(sessionSecret),
		resetKey:   []byte(resetSecret),
		resetTTL:   ResetTokenTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IssueSessionToken returns a token whose subject is userID.
func (s *TokenService) IssueSessionToken(userID uint) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Purpose: purposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatUint(uint64(userID), 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.accessTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.accessTTL))
	}

	token, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.sessionKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// ReadIdentity recovers the user id from a session token. Failures wrap
// errs.ErrInvalidToken or errs.ErrExpiredToken.
func (s *TokenService) ReadIdentity(token string) (uint, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, keyFunc(s.sessionKey),
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("%w: %v", errs.ErrExpiredToken, err)
		}
		return 0, fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
	}
	if claims.Purpose != purposeAccess {
		return 0, fmt.Errorf("%w: not a session token", errs.ErrInvalidToken)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", errs.ErrInvalidToken, claims.Subject)
	}
	return uint(userID), nil
}

// IssueResetToken returns a reset token for userID valid until now + the reset TTL.
func (s *TokenService) IssueResetToken(userID uint, now time.Time) (string, error) {
	claims := ResetClaims{
		UserID:  userID,
		Purpose: purposeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.resetTTL)),
		},
	}

	token, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.resetKey)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return token, nil
}

// VerifyResetToken checks the signature and the encoded expiry. The token is
// expired only once now is strictly after its expiry.
func (s *TokenService) VerifyResetToken(token string, now time.Time) (ResetClaims, error) {
	claims := ResetClaims{}
	_, err := jwt.ParseWithClaims(token, &claims, keyFunc(s.resetKey),
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return ResetClaims{}, fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
	}
	if claims.Purpose != purposeReset || claims.UserID == 0 || claims.ExpiresAt == nil {
		return ResetClaims{}, fmt.Errorf("%w: malformed reset payload", errs.ErrInvalidToken)
	}
	if now.After(claims.ExpiresAt.Time) {
		return ResetClaims{}, fmt.Errorf("%w: expired at %s", errs.ErrExpiredToken, claims.ExpiresAt.Time.Format(time.RFC3339))
	}
	return claims, nil
}

func keyFunc(key []byte) jwt.Keyfunc {
	return func(*jwt.Token) (interface{}, error) {
		return key, nil
	}
}
