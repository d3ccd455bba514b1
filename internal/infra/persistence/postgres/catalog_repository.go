package postgres

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const defaultListLimit = 50

// catalogRepository implements repository.CatalogRepository using GORM.
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository is the constructor for catalogRepository.
func NewCatalogRepository(db *gorm.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

// FindByID retrieves a single product by id.
func (repo *catalogRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	var productM model.ProductModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&productM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to find product by id")
	}

	return productM.ToDomain(), nil
}

// FindByIDs retrieves the subset of the given products that exist, keyed by
// product id. Missing ids are absent from the result.
func (repo *catalogRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	found := make(map[string]*entity.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var productMs []model.ProductModel
	err := repo.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&productMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find products by ids")
	}

	for i := range productMs {
		found[productMs[i].ID] = productMs[i].ToDomain()
	}

	return found, nil
}

// List returns catalog entries for browsing, optionally filtered by category.
func (repo *catalogRepository) List(ctx context.Context, category string, limit int) ([]*entity.Product, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := repo.db.WithContext(ctx).Limit(limit).Order("name")
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var productMs []model.ProductModel
	if err := query.Find(&productMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	products := make([]*entity.Product, 0, len(productMs))
	for i := range productMs {
		products = append(products, productMs[i].ToDomain())
	}

	return products, nil
}
