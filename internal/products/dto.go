package product

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// CategoryRef is the category summary embedded in a product.
type CategoryRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ProductDTO is the public product representation.
type ProductDTO struct {
	ID          uint          `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Price       string        `json:"price"`
	Stock       int           `json:"stock"`
	Categories  []CategoryRef `json:"categories"`
}

// CreateProductInput is the create payload. Unknown category ids are skipped.
type CreateProductInput struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CategoryIDs []uint          `json:"categoryIds"`
}

// UpdateProductInput holds optional replacements; nil keeps the stored value.
type UpdateProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
}

// productFields is validated after an update has been merged.
type productFields struct {
	Name  string          `json:"name" validate:"required,max=255"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
	Stock int             `json:"stock" validate:"gte=0"`
}

// FormatMoney renders amounts with two decimals.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func NewProductDTO(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	cats := make([]CategoryRef, 0, len(p.Categories))
	for _, c := range p.Categories {
		cats = append(cats, CategoryRef{ID: c.ID, Name: c.Name})
	}
	return &ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       FormatMoney(p.Price),
		Stock:       p.Stock,
		Categories:  cats,
	}
}
