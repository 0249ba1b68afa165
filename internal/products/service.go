package product

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	pkgauth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/validate"
)

const (
	msgProductNotFound     = "Product not found"
	msgAssociationNotFound = "Product or Category not found"
)

// Service exposes catalog product operations. Mutations require an admin actor.
type Service interface {
	CreateProduct(ctx context.Context, actor pkgauth.Identity, input CreateProductInput) (*ProductDTO, error)
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id uint) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, actor pkgauth.Identity, id uint, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, actor pkgauth.Identity, id uint) error
	AttachCategory(ctx context.Context, actor pkgauth.Identity, productID, categoryID uint) error
	DetachCategory(ctx context.Context, actor pkgauth.Identity, productID, categoryID uint) error
}

type categoryFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Category, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo       *Repository
	tx         txRunner
	categories categoryFinder
}

// NewService builds the product service.
func NewService(repo *Repository, dbClient *db.Client, categories categoryFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{
		repo:       repo,
		tx:         dbClient,
		categories: categories,
	}, nil
}

// CreateProduct validates and persists a product with any resolvable categories.
func (s *service) CreateProduct(ctx context.Context, actor pkgauth.Identity, input CreateProductInput) (*ProductDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var categories []models.Category
	if len(input.CategoryIDs) > 0 {
		found, err := s.categories.FindByIDs(ctx, input.CategoryIDs)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
		}
		categories = found
	}

	product := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Categories:  categories,
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, product)
		return err
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	return s.GetProduct(ctx, product.ID)
}

func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, *NewProductDTO(&products[i]))
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, id uint) (*ProductDTO, error) {
	product, err := s.load(ctx, s.repo, id, msgProductNotFound)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

// UpdateProduct merges the provided fields over the stored product and revalidates.
func (s *service) UpdateProduct(ctx context.Context, actor pkgauth.Identity, id uint, input UpdateProductInput) (*ProductDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	product, err := s.load(ctx, s.repo, id, msgProductNotFound)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}

	if err := validate.Struct(productFields{Name: product.Name, Price: product.Price, Stock: product.Stock}); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFields(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return NewProductDTO(product), nil
}

// DeleteProduct hard-deletes the product. Past orders keep their snapshots.
func (s *service) DeleteProduct(ctx context.Context, actor pkgauth.Identity, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product, err := s.load(ctx, txRepo, id, msgProductNotFound)
		if err != nil {
			return err
		}
		if err := txRepo.Delete(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		return nil
	})
}

func (s *service) AttachCategory(ctx context.Context, actor pkgauth.Identity, productID, categoryID uint) error {
	product, category, err := s.resolvePair(ctx, actor, productID, categoryID)
	if err != nil {
		return err
	}
	if err := s.repo.AttachCategory(ctx, product, category); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach category")
	}
	return nil
}

func (s *service) DetachCategory(ctx context.Context, actor pkgauth.Identity, productID, categoryID uint) error {
	product, category, err := s.resolvePair(ctx, actor, productID, categoryID)
	if err != nil {
		return err
	}
	if err := s.repo.DetachCategory(ctx, product, category); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach category")
	}
	return nil
}

func (s *service) resolvePair(ctx context.Context, actor pkgauth.Identity, productID, categoryID uint) (*models.Product, *models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, nil, err
	}
	product, err := s.load(ctx, s.repo, productID, msgAssociationNotFound)
	if err != nil {
		return nil, nil, err
	}
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, msgAssociationNotFound)
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return product, category, nil
}

func (s *service) load(ctx context.Context, repo *Repository, id uint, notFound string) (*models.Product, error) {
	product, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func requireAdmin(actor pkgauth.Identity) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Access denied")
	}
	return nil
}
