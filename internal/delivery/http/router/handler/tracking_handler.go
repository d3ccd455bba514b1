package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/http/response"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// TrackingHandler holds dependencies for behavioral tracking handlers.
type TrackingHandler struct {
	registry usecase.ManagerRegistry
	logger   *slog.Logger
}

// NewTrackingHandler is the constructor for TrackingHandler, injected by Fx.
func NewTrackingHandler(registry usecase.ManagerRegistry, logger *slog.Logger) *TrackingHandler {
	return &TrackingHandler{registry: registry, logger: logger}
}

type trackActionInput struct {
	Action string         `json:"action" validate:"required"`
	Data   map[string]any `json:"data,omitempty"`
}

type trackPageViewInput struct {
	Page string         `json:"page" validate:"required"`
	Data map[string]any `json:"data,omitempty"`
}

type trackProductViewInput struct {
	ProductID string         `json:"product_id" validate:"required"`
	Data      map[string]any `json:"data,omitempty"`
}

// TrackAction records a custom analytics event on the caller's profile.
func (h *TrackingHandler) TrackAction(c echo.Context) error {
	var input trackActionInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid tracking input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	manager.TrackAction(c.Request().Context(), input.Action, input.Data)

	return response.Success(c, http.StatusAccepted, nil, "")
}

// TrackPageView records a page view on the caller's profile.
func (h *TrackingHandler) TrackPageView(c echo.Context) error {
	var input trackPageViewInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid tracking input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	manager.TrackPageView(c.Request().Context(), input.Page, input.Data)

	return response.Success(c, http.StatusAccepted, nil, "")
}

// TrackProductView records a product view on the caller's profile.
func (h *TrackingHandler) TrackProductView(c echo.Context) error {
	var input trackProductViewInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid tracking input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	manager.TrackProductView(c.Request().Context(), input.ProductID, input.Data)

	return response.Success(c, http.StatusAccepted, nil, "")
}
