package impl

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"

	"github.com/pkg/errors"
)

// projectCart joins authoritative cart lines against the catalog into the
// denormalized view the delivery layer renders. The projection is derived,
// never stored: lines whose product has vanished from the catalog are
// dropped without error.
func projectCart(ctx context.Context, catalog repository.CatalogRepository, items []entity.CartItem) ([]entity.CartLine, error) {
	if len(items) == 0 {
		return []entity.CartLine{}, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve catalog entries")
	}

	lines := make([]entity.CartLine, 0, len(items))
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}

		lines = append(lines, entity.CartLine{
			Product:   *product,
			Quantity:  item.Quantity,
			LineTotal: product.Price * float64(item.Quantity),
		})
	}

	return lines, nil
}
