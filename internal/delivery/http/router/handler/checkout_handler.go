package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/http/response"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CheckoutHandler holds dependencies for checkout handlers.
type CheckoutHandler struct {
	registry usecase.ManagerRegistry
	checkout usecase.CheckoutUsecase
	logger   *slog.Logger
}

// NewCheckoutHandler is the constructor for CheckoutHandler, injected by Fx.
func NewCheckoutHandler(registry usecase.ManagerRegistry, checkout usecase.CheckoutUsecase, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{registry: registry, checkout: checkout, logger: logger}
}

// Begin snapshots the cart and opens a payment session with the gateway.
func (h *CheckoutHandler) Begin(c echo.Context) error {
	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	output, err := h.checkout.BeginCheckout(c.Request().Context(), manager)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Checkout started")
}

// Confirm settles the payment session's final verdict against the profile.
func (h *CheckoutHandler) Confirm(c echo.Context) error {
	var input *usecase.ConfirmCheckoutInput
	if err := c.Bind(&input); err != nil || input == nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid checkout confirmation input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.checkout.ConfirmCheckout(c.Request().Context(), manager, input); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Checkout confirmed")
}
