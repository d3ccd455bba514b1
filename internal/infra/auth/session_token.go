// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"storefront/config"
	"storefront/internal/domain/service"
)

// sessionTokenService signs per-session tokens with the JWT standard. The
// token is the only link an anonymous client has to its guest profile, so
// its TTL matches the session cache TTL rather than a short auth window.
type sessionTokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionTokenService is the constructor for sessionTokenService.
func NewSessionTokenService(cfg *config.Config) (service.SessionTokenService, error) {
	if cfg.SecretKey.Session == "" {
		return nil, errors.New("session token secret must be provided")
	}

	return &sessionTokenService{
		secret: []byte(cfg.SecretKey.Session),
		ttl:    cfg.Profile.SessionTokenTTL,
	}, nil
}

// IssueSessionToken signs a token carrying the session id.
func (s *sessionTokenService) IssueSessionToken(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  sessionID,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
		"type": "session",
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}

	return token, nil
}

// ValidateSessionToken parses a token and returns the session id it carries.
func (s *sessionTokenService) ValidateSessionToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to parse session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid session token claims")
	}
	if tokenType, _ := claims["type"].(string); tokenType != "session" {
		return "", errors.New("unexpected token type")
	}

	sessionID, _ := claims["sub"].(string)
	if sessionID == "" {
		return "", errors.New("session token missing subject")
	}

	return sessionID, nil
}
