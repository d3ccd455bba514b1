package usecase

import (
	"context"

	"storefront/internal/domain/entity"
)

// CatalogUsecase exposes the read-only product catalog to the delivery
// layer. Catalog management is out of scope; the engine is a consumer only.
type CatalogUsecase interface {
	// GetProduct retrieves a single catalog entry.
	GetProduct(ctx context.Context, id string) (*entity.Product, error)

	// ListProducts returns catalog entries, optionally filtered by category.
	ListProducts(ctx context.Context, category string, limit int) ([]*entity.Product, error)
}
