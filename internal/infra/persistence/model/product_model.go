// Package model contains the GORM persistence models. They are mapped to
// pure domain entities at the repository boundary.
package model

import (
	"time"

	"storefront/internal/domain/entity"
)

// ProductModel maps the products table backing the read-only catalog.
type ProductModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	Price       float64   `gorm:"column:price;not null"`
	ImageURL    string    `gorm:"column:image_url"`
	Category    string    `gorm:"column:category;index"`
	InStock     bool      `gorm:"column:in_stock;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default GORM table name.
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain maps the persistence model to the domain entity.
func (m *ProductModel) ToDomain() *entity.Product {
	return &entity.Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		ImageURL:    m.ImageURL,
		Category:    m.Category,
		InStock:     m.InStock,
	}
}
