package context

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/usecase"
)

const (
	// KeySessionID is the key for storing the session ID in context.
	KeySessionID ContextKey = "session_id"

	// KeyIdentity is the key for storing the verified identity in context.
	KeyIdentity ContextKey = "identity"

	// KeyClientMetadata is the key for storing client metadata in context.
	KeyClientMetadata ContextKey = "client_metadata"

	// KeyPageURL is the key for storing the originating page URL in context.
	KeyPageURL ContextKey = "page_url"
)

// GetSessionID extracts the session ID from context.Context.
// If not found, returns empty string.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(KeySessionID).(string); ok {
		return id
	}

	return ""
}

// WithSessionID returns a new context with the session ID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, KeySessionID, sessionID)
}

// GetIdentity extracts the verified customer identity from context.Context.
// Returns nil for unauthenticated requests.
func GetIdentity(ctx context.Context) *usecase.IdentityInfo {
	if ident, ok := ctx.Value(KeyIdentity).(*usecase.IdentityInfo); ok {
		return ident
	}

	return nil
}

// WithIdentity returns a new context with the verified identity.
func WithIdentity(ctx context.Context, ident *usecase.IdentityInfo) context.Context {
	return context.WithValue(ctx, KeyIdentity, ident)
}

// GetClientMetadata extracts the client environment fingerprint captured by
// the session middleware. Returns the zero value when absent.
func GetClientMetadata(ctx context.Context) entity.Metadata {
	if meta, ok := ctx.Value(KeyClientMetadata).(entity.Metadata); ok {
		return meta
	}

	return entity.Metadata{}
}

// WithClientMetadata returns a new context with the client metadata.
func WithClientMetadata(ctx context.Context, meta entity.Metadata) context.Context {
	return context.WithValue(ctx, KeyClientMetadata, meta)
}

// GetPageURL extracts the originating page URL reported by the client.
// If not found, returns empty string.
func GetPageURL(ctx context.Context) string {
	if url, ok := ctx.Value(KeyPageURL).(string); ok {
		return url
	}

	return ""
}

// WithPageURL returns a new context with the page URL.
func WithPageURL(ctx context.Context, pageURL string) context.Context {
	return context.WithValue(ctx, KeyPageURL, pageURL)
}
