package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// HeaderSessionToken carries the signed session token both ways: the
	// client echoes back what the server issued.
	HeaderSessionToken = "X-Session-Token"

	// HeaderPageURL reports the page the client action originated from.
	HeaderPageURL = "X-Page-Url"
)

// SessionMiddleware resolves the caller's session and identity before any
// handler runs. Every request leaves it with a session id in context; new
// visitors get a fresh session and a signed token in the response header.
type SessionMiddleware struct {
	tokens   service.SessionTokenService
	identity service.IdentityProvider
	logger   *slog.Logger
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(tokens service.SessionTokenService, identity service.IdentityProvider, logger *slog.Logger) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, identity: identity, logger: logger}
}

// Resolve populates the request context with session id, request id, client
// metadata, page URL and (when an ID token is presented) verified identity.
func (m *SessionMiddleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := req.Context()

		requestID := req.Header.Get(deliverycontext.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		deliverycontext.SetRequestID(c, requestID)
		c.Response().Header().Set(deliverycontext.HeaderXRequestID, requestID)
		ctx = deliverycontext.WithRequestID(ctx, requestID)
		ctx = deliverycontext.WithLogger(ctx, m.logger.With(slog.String("requestID", requestID)))

		sessionID := m.resolveSessionID(c)
		ctx = deliverycontext.WithSessionID(ctx, sessionID)

		ctx = deliverycontext.WithClientMetadata(ctx, entity.Metadata{
			UserAgent: req.UserAgent(),
			Referrer:  req.Referer(),
			Language:  req.Header.Get("Accept-Language"),
		})

		if pageURL := req.Header.Get(HeaderPageURL); pageURL != "" {
			ctx = deliverycontext.WithPageURL(ctx, pageURL)
		}

		if ident := m.verifyIdentity(c); ident != nil {
			ctx = deliverycontext.WithIdentity(ctx, ident)
		}

		c.SetRequest(req.WithContext(ctx))

		return next(c)
	}
}

// resolveSessionID validates the presented session token or mints a new
// session. The fresh token rides back on the response header; a client that
// drops it simply becomes a new guest.
func (m *SessionMiddleware) resolveSessionID(c echo.Context) string {
	if token := c.Request().Header.Get(HeaderSessionToken); token != "" {
		sessionID, err := m.tokens.ValidateSessionToken(token)
		if err == nil {
			return sessionID
		}
		m.logger.Debug("Rejected session token, issuing a new session",
			slog.Any("error", err))
	}

	sessionID := uuid.New().String()
	token, err := m.tokens.IssueSessionToken(sessionID)
	if err != nil {
		m.logger.Error("Failed to issue session token", slog.Any("error", err))

		return sessionID
	}
	c.Response().Header().Set(HeaderSessionToken, token)

	return sessionID
}

// verifyIdentity checks the Authorization header for an identity-provider ID
// token. Verification failures leave the request anonymous rather than
// rejecting it; profile reads must keep working for expired tokens.
func (m *SessionMiddleware) verifyIdentity(c echo.Context) *usecase.IdentityInfo {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || tokenString == "" {
		return nil
	}

	ident, err := m.identity.VerifyToken(c.Request().Context(), tokenString)
	if err != nil {
		m.logger.Debug("Identity token verification failed", slog.Any("error", err))

		return nil
	}

	return &usecase.IdentityInfo{
		ID:          ident.ID,
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
	}
}
