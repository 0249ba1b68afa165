package categories

import "github.com/angelmondragon/storefront-backend/pkg/db/models"

// CategoryDTO lists the ids of the products filed under the category.
type CategoryDTO struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Products    []uint  `json:"products"`
}

type CreateCategoryInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}

// UpdateCategoryInput holds optional replacements; nil keeps the stored value.
type UpdateCategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type categoryFields struct {
	Name string `json:"name" validate:"required,max=255"`
}

func NewCategoryDTO(c *models.Category) *CategoryDTO {
	if c == nil {
		return nil
	}
	ids := make([]uint, 0, len(c.Products))
	for _, p := range c.Products {
		ids = append(ids, p.ID)
	}
	return &CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Products:    ids,
	}
}
