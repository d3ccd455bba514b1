// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"storefront/internal/delivery/http/middleware"
	"storefront/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	ProfileHandler    *handler.ProfileHandler
	CartHandler       *handler.CartHandler
	CheckoutHandler   *handler.CheckoutHandler
	CatalogHandler    *handler.CatalogHandler
	TrackingHandler   *handler.TrackingHandler
	SessionMiddleware *middleware.SessionMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	profileHandler    *handler.ProfileHandler
	cartHandler       *handler.CartHandler
	checkoutHandler   *handler.CheckoutHandler
	catalogHandler    *handler.CatalogHandler
	trackingHandler   *handler.TrackingHandler
	sessionMiddleware *middleware.SessionMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		profileHandler:    params.ProfileHandler,
		cartHandler:       params.CartHandler,
		checkoutHandler:   params.CheckoutHandler,
		catalogHandler:    params.CatalogHandler,
		trackingHandler:   params.TrackingHandler,
		sessionMiddleware: params.SessionMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Every customer-facing route runs through session resolution, so each
	// request is bound to a per-session Profile Manager.
	api := e.Group("", r.sessionMiddleware.Resolve)

	profileGroup := api.Group("/profile")
	{
		profileGroup.GET("", r.profileHandler.GetProfile)
		profileGroup.PATCH("", r.profileHandler.UpdateProfile)
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", r.profileHandler.SignUp)
		authGroup.POST("/signin", r.profileHandler.SignIn)
		authGroup.POST("/signout", r.profileHandler.SignOut)
		authGroup.DELETE("/account", r.profileHandler.DeleteAccount)
	}

	cartGroup := api.Group("/cart")
	{
		cartGroup.GET("", r.cartHandler.GetCart)
		cartGroup.POST("/items", r.cartHandler.AddItem)
		cartGroup.PATCH("/items/:productId", r.cartHandler.UpdateItem)
		cartGroup.DELETE("/items/:productId", r.cartHandler.RemoveItem)
		cartGroup.DELETE("", r.cartHandler.ClearCart)
	}

	wishlistGroup := api.Group("/wishlist")
	{
		wishlistGroup.POST("/items", r.cartHandler.AddToWishlist)
		wishlistGroup.DELETE("/items/:productId", r.cartHandler.RemoveFromWishlist)
	}

	checkoutGroup := api.Group("/checkout")
	{
		checkoutGroup.POST("", r.checkoutHandler.Begin)
		checkoutGroup.POST("/confirm", r.checkoutHandler.Confirm)
	}

	productGroup := api.Group("/products")
	{
		productGroup.GET("", r.catalogHandler.ListProducts)
		productGroup.GET("/:productId", r.catalogHandler.GetProduct)
	}

	trackGroup := api.Group("/track")
	{
		trackGroup.POST("/action", r.trackingHandler.TrackAction)
		trackGroup.POST("/page", r.trackingHandler.TrackPageView)
		trackGroup.POST("/product", r.trackingHandler.TrackProductView)
	}
}
