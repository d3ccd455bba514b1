// Package handler contains the HTTP handlers for the application.
package handler

import (
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// resolveManager fetches the Profile Manager bound to the caller's session.
// The session middleware guarantees a session id is present.
func resolveManager(c echo.Context, registry usecase.ManagerRegistry) (usecase.ProfileUsecase, error) {
	ctx := c.Request().Context()

	sessionID := deliverycontext.GetSessionID(ctx)
	if sessionID == "" {
		return nil, errors.New("request reached handler without a session")
	}

	manager, err := registry.ManagerFor(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve profile manager")
	}

	return manager, nil
}
