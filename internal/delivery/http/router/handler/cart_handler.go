package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/http/response"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CartHandler holds dependencies for cart and wishlist handlers.
type CartHandler struct {
	registry usecase.ManagerRegistry
	logger   *slog.Logger
}

// NewCartHandler is the constructor for CartHandler, injected by Fx.
func NewCartHandler(registry usecase.ManagerRegistry, logger *slog.Logger) *CartHandler {
	return &CartHandler{registry: registry, logger: logger}
}

type addToCartInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityInput struct {
	Quantity int `json:"quantity"`
}

type wishlistInput struct {
	ProductID   string         `json:"product_id" validate:"required"`
	ProductData map[string]any `json:"product_data,omitempty"`
}

// cartView is the denormalized cart payload returned to clients.
type cartView struct {
	Lines []any   `json:"lines"`
	Total float64 `json:"total"`
}

// GetCart returns the cart projection joined against the catalog.
func (h *CartHandler) GetCart(c echo.Context) error {
	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	lines, err := manager.CartView(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	view := cartView{Lines: make([]any, 0, len(lines))}
	for _, line := range lines {
		view.Lines = append(view.Lines, line)
		view.Total += line.LineTotal
	}

	return response.Success(c, http.StatusOK, view, "")
}

// AddItem adds quantity of a product to the cart.
func (h *CartHandler) AddItem(c echo.Context) error {
	var input addToCartInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid cart input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := manager.AddToCart(c.Request().Context(), input.ProductID, input.Quantity); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, manager.CurrentProfile().Shopping.Cart, "Added to cart")
}

// UpdateItem sets the quantity of a cart line.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	var input updateQuantityInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid quantity input")
	}

	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := manager.UpdateCartQuantity(c.Request().Context(), c.Param("productId"), input.Quantity); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, manager.CurrentProfile().Shopping.Cart, "Cart updated")
}

// RemoveItem removes a cart line.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := manager.RemoveFromCart(c.Request().Context(), c.Param("productId")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, manager.CurrentProfile().Shopping.Cart, "Removed from cart")
}

// ClearCart empties the cart, recording the abandoned snapshot.
func (h *CartHandler) ClearCart(c echo.Context) error {
	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := manager.ClearCart(c.Request().Context()); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Cart cleared")
}

// AddToWishlist saves a product to the wishlist.
func (h *CartHandler) AddToWishlist(c echo.Context) error {
	var input wishlistInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid wishlist input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := manager.AddToWishlist(c.Request().Context(), input.ProductID, input.ProductData); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, manager.CurrentProfile().Shopping.Wishlist, "Added to wishlist")
}

// RemoveFromWishlist removes a wishlist entry.
func (h *CartHandler) RemoveFromWishlist(c echo.Context) error {
	manager, err := resolveManager(c, h.registry)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := manager.RemoveFromWishlist(c.Request().Context(), c.Param("productId")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, manager.CurrentProfile().Shopping.Wishlist, "Removed from wishlist")
}
