package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"
)

// ErrProductNotFound is returned when a catalog entry does not exist.
var ErrProductNotFound = errors.New("product not found")

// CatalogRepository is the read-only product catalog. The engine only needs
// it for price lookups and the cart projection join; catalog management is
// out of scope.
type CatalogRepository interface {
	// FindByID retrieves a single product.
	// Returns ErrProductNotFound when the id does not resolve.
	FindByID(ctx context.Context, id string) (*entity.Product, error)

	// FindByIDs retrieves the subset of the given products that still exist,
	// keyed by product id. Missing ids are simply absent from the result.
	FindByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)

	// List returns catalog entries for browsing, optionally filtered by
	// category.
	List(ctx context.Context, category string, limit int) ([]*entity.Product, error)
}
