package cart

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	pkgauth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/validate"
)

const (
	msgProductNotFound   = "Product not found"
	msgInsufficientStock = "Insufficient stock"
	msgCartNotFound      = "Cart not found"
	msgCartItemNotFound  = "Cart item not found"
)

type productFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
}

// Service owns the single cart each shopper holds.
type Service interface {
	GetCart(ctx context.Context, actor pkgauth.Identity) (*CartDTO, error)
	AddItem(ctx context.Context, actor pkgauth.Identity, input AddItemInput) (*CartItemDTO, error)
	RemoveItem(ctx context.Context, actor pkgauth.Identity, itemID uint) error
}

type service struct {
	repo     *Repository
	db       *db.Client
	products productFinder
}

// NewService builds the cart service.
func NewService(repo *Repository, dbClient *db.Client, products productFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{repo: repo, db: dbClient, products: products}, nil
}

// GetCart returns the actor's cart, creating an empty one on first access.
func (s *service) GetCart(ctx context.Context, actor pkgauth.Identity) (*CartDTO, error) {
	record, err := s.getOrCreate(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return NewCartDTO(record), nil
}

// AddItem puts quantity units of a product in the cart, merging with an
// existing line for the same product.
func (s *service) AddItem(ctx context.Context, actor pkgauth.Identity, input AddItemInput) (*CartItemDTO, error) {
	quantity := input.quantity()

	item, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if item.Stock < quantity {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, msgInsufficientStock)
	}
	if quantity < 1 {
		return nil, validate.Struct(models.CartItem{Quantity: quantity})
	}

	record, err := s.getOrCreate(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	var line *models.CartItem
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindItem(ctx, record.ID, item.ID)
		switch {
		case err == nil:
			existing.Quantity += quantity
			if err := validate.Struct(existing); err != nil {
				return err
			}
			if err := repo.UpdateItemQuantity(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
			line = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			created := &models.CartItem{CartID: record.ID, ProductID: item.ID, Quantity: quantity}
			if err := validate.Struct(created); err != nil {
				return err
			}
			if err := repo.CreateItem(ctx, created); err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "item was added concurrently, retry")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
			}
			line = created
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CartItemDTO{
		ID: line.ID,
		Product: CartProductDTO{
			ID:    item.ID,
			Name:  item.Name,
			Price: product.FormatMoney(item.Price),
		},
		Quantity: line.Quantity,
	}, nil
}

// RemoveItem deletes a line from the actor's cart. Lines in other carts are
// reported as missing.
func (s *service) RemoveItem(ctx context.Context, actor pkgauth.Identity, itemID uint) error {
	record, err := s.repo.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, msgCartNotFound)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, msgCartItemNotFound)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if item.CartID != record.ID || record.UserID != actor.UserID {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgCartItemNotFound)
	}

	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	return nil
}

func (s *service) getOrCreate(ctx context.Context, userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	record, err := s.repo.FindByUserID(ctx, userID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	created, err := s.repo.Create(ctx, &models.Cart{UserID: userID})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			record, ferr := s.repo.FindByUserID(ctx, userID)
			if ferr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ferr, "reload cart")
			}
			return record, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	created.Items = []models.CartItem{}
	return created, nil
}
