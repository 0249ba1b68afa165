package categories

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

const msgCategoryNotFound = "Category not found"

// Service exposes category CRUD. Mutations require an admin actor.
type Service interface {
	CreateCategory(ctx context.Context, actor pkgauth.Identity, input CreateCategoryInput) (*CategoryDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	GetCategory(ctx context.Context, id uint) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, actor pkgauth.Identity, id uint, input UpdateCategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, actor pkgauth.Identity, id uint) error
}

type service struct {
	repo *Repository
	db   *db.Client
}

func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, db: dbClient}, nil
}

func (s *service) CreateCategory(ctx context.Context, actor pkgauth.Identity, input CreateCategoryInput) (*CategoryDTO, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Access denied")
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, &models.Category{Name: input.Name, Description: input.Description})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return NewCategoryDTO(created), nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewCategoryDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) GetCategory(ctx context.Context, id uint) (*CategoryDTO, error) {
	category, err := load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return NewCategoryDTO(category), nil
}

func (s *service) UpdateCategory(ctx context.Context, actor pkgauth.Identity, id uint, input UpdateCategoryInput) (*CategoryDTO, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Access denied")
	}
	category, err := load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		category.Name = *input.Name
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if err := validate.Struct(categoryFields{Name: category.Name}); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return NewCategoryDTO(category), nil
}

// DeleteCategory removes the category; its products stay in the catalog.
func (s *service) DeleteCategory(ctx context.Context, actor pkgauth.Identity, id uint) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Access denied")
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		category, err := load(ctx, txRepo, id)
		if err != nil {
			return err
		}
		if err := txRepo.Delete(ctx, category); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
		}
		return nil
	})
}

func load(ctx context.Context, repo *Repository, id uint) (*models.Category, error) {
	category, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgCategoryNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}
