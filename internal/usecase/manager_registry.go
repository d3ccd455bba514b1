package usecase

import (
	"context"
)

// ManagerRegistry owns one Profile Manager per live session. The delivery
// layer resolves the caller's session and asks the registry for that
// session's manager; the registry creates managers on first touch and evicts
// idle ones.
type ManagerRegistry interface {
	// ManagerFor returns the Profile Manager bound to a session, creating
	// and initializing it when the session is seen for the first time.
	ManagerFor(ctx context.Context, sessionID string) (ProfileUsecase, error)

	// FlushAll forces every live manager to complete its pending writes.
	// Called on shutdown.
	FlushAll(ctx context.Context) error
}
