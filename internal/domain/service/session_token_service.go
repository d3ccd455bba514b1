package service

// SessionTokenService signs and validates the per-session token the delivery
// layer hands to anonymous clients. The token carries nothing but the stable
// session identifier; losing it loses the guest's profile linkage.
type SessionTokenService interface {
	// IssueSessionToken signs a token for a session id.
	IssueSessionToken(sessionID string) (string, error)

	// ValidateSessionToken parses a token and returns the session id it
	// carries.
	ValidateSessionToken(token string) (string, error)
}
