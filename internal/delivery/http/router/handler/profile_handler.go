package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/delivery/http/response"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ProfileHandler holds dependencies for profile-related handlers.
type ProfileHandler struct {
	registry usecase.ManagerRegistry
	logger   *slog.Logger
}

// NewProfileHandler is the constructor for ProfileHandler, injected by Fx.
func NewProfileHandler(registry usecase.ManagerRegistry, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{registry: registry, logger: logger}
}

// GetProfile returns the caller's current profile, creating a guest profile
// on first contact.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	profile := manager.InitializeProfile(c.Request().Context())

	return response.Success(c, http.StatusOK, profile, "")
}

// UpdateProfile applies a partial update to personal info and preferences.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var input *usecase.UpdateProfileInput
	if err := c.Bind(&input); err != nil || input == nil {
		// Bind leaves input nil on an empty body.
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile update input")
	}

	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	profile, err := manager.UpdateProfile(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, profile, "Profile updated")
}

// SignUp converts the caller's guest profile into a registered one.
func (h *ProfileHandler) SignUp(c echo.Context) error {
	var input *usecase.SignUpInput
	if err := c.Bind(&input); err != nil || input == nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid signup input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	output, err := manager.ConvertGuestToRegistered(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output.Profile, "Account created")
}

// SignIn activates the registered profile for a verified identity and merges
// any guest-session activity into it.
func (h *ProfileHandler) SignIn(c echo.Context) error {
	ctx := c.Request().Context()

	ident := deliverycontext.GetIdentity(ctx)
	if ident == nil {
		return response.Unauthorized(c, "IDENTITY_REQUIRED", "A valid identity token is required to sign in")
	}

	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := manager.HandleAuthChange(ctx, usecase.AuthChange{Identity: ident}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, manager.CurrentProfile(), "Signed in")
}

// DeleteAccount removes the caller's registered account and all of its
// profile data, leaving the session on a fresh guest profile.
func (h *ProfileHandler) DeleteAccount(c echo.Context) error {
	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := manager.DeleteAccount(c.Request().Context()); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, manager.CurrentProfile(), "Account deleted")
}

// SignOut discards the registered profile and activates a fresh guest one.
func (h *ProfileHandler) SignOut(c echo.Context) error {
	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := manager.HandleAuthChange(c.Request().Context(), usecase.AuthChange{}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, manager.CurrentProfile(), "Signed out")
}
