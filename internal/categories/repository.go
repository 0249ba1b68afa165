package categories

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists catalog categories.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the category and the products linked to it.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Preload("Products", orderByID).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByIDs returns the categories that exist among ids; missing ids are ignored.
func (r *Repository) FindByIDs(ctx context.Context, ids []uint) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := r.db.WithContext(ctx).Preload("Products", orderByID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Omit("Products").Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateFields writes name and description, including empty values.
func (r *Repository) UpdateFields(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).
		Model(category).
		Select("name", "description").
		Updates(category).Error
}

// Delete unlinks the category from its products and removes it.
func (r *Repository) Delete(ctx context.Context, category *models.Category) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Model(category).Association("Products").Clear(); err != nil {
		return err
	}
	return tx.Delete(&models.Category{}, category.ID).Error
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
