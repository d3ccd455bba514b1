package impl

import (
	"context"
	"log/slog"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// CatalogServiceParams holds dependencies for catalogService.
type CatalogServiceParams struct {
	fx.In

	Catalog repository.CatalogRepository
	Logger  *slog.Logger
}

type catalogService struct {
	catalog repository.CatalogRepository
	logger  *slog.Logger
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(params CatalogServiceParams) usecase.CatalogUsecase {
	return &catalogService{
		catalog: params.Catalog,
		logger:  params.Logger,
	}
}

// GetProduct retrieves a single catalog entry.
func (s *catalogService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	product, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, errors.Wrap(domainerrors.ErrProductNotFound, "product lookup failed")
		}

		return nil, errors.Wrap(err, "failed to load product")
	}

	return product, nil
}

// ListProducts returns catalog entries, optionally filtered by category.
func (s *catalogService) ListProducts(ctx context.Context, category string, limit int) ([]*entity.Product, error) {
	products, err := s.catalog.List(ctx, category, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	return products, nil
}
