package auth

import (
	"testing"
	"time"

	"storefront/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Session = secret
	cfg.Profile.SessionTokenTTL = time.Hour

	return cfg
}

func TestSessionToken_RoundTrip(t *testing.T) {
	svc, err := NewSessionTokenService(newTestConfig("test-secret"))
	require.NoError(t, err)

	token, err := svc.IssueSessionToken("sess-abc")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sessionID, err := svc.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-abc", sessionID)
}

func TestSessionToken_RejectsWrongSecret(t *testing.T) {
	issuer, err := NewSessionTokenService(newTestConfig("secret-a"))
	require.NoError(t, err)
	verifier, err := NewSessionTokenService(newTestConfig("secret-b"))
	require.NoError(t, err)

	token, err := issuer.IssueSessionToken("sess-abc")
	require.NoError(t, err)

	_, err = verifier.ValidateSessionToken(token)
	assert.Error(t, err)
}

func TestSessionToken_RejectsGarbage(t *testing.T) {
	svc, err := NewSessionTokenService(newTestConfig("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateSessionToken("not-a-token")
	assert.Error(t, err)
}

func TestNewSessionTokenService_RequiresSecret(t *testing.T) {
	_, err := NewSessionTokenService(newTestConfig(""))
	assert.Error(t, err)
}
