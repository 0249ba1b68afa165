package product

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository wires together all product-related persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product with its categories.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Categories", orderByID).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns every product with its categories, oldest first.
func (r *Repository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Preload("Categories", orderByID).Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create inserts the product and links any categories set on it.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("Categories.*").Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateFields writes the scalar columns, including zero values.
func (r *Repository) UpdateFields(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Model(product).
		Select("name", "description", "price", "stock").
		Updates(product).Error
}

// Delete removes the product. Cart lines and category links go with it;
// order lines keep their snapshot and lose the reference.
func (r *Repository) Delete(ctx context.Context, product *models.Product) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", product.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.OrderItem{}).
		Where("product_id = ?", product.ID).
		Update("product_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Model(product).Association("Categories").Clear(); err != nil {
		return err
	}
	return tx.Delete(&models.Product{}, product.ID).Error
}

// AttachCategory links category to product. Linking twice is a no-op.
func (r *Repository) AttachCategory(ctx context.Context, product *models.Product, category *models.Category) error {
	return r.db.WithContext(ctx).Model(product).Association("Categories").Append(category)
}

// DetachCategory unlinks category from product.
func (r *Repository) DetachCategory(ctx context.Context, product *models.Product, category *models.Category) error {
	return r.db.WithContext(ctx).Model(product).Association("Categories").Delete(category)
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
