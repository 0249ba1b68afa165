package users

import (
	"context"
	"fmt"

	pkgauth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type listRepository interface {
	List(ctx context.Context) ([]models.User, error)
}

// Service answers admin user queries.
type Service interface {
	ListUsers(ctx context.Context, actor pkgauth.Identity) ([]UserDTO, error)
}

type service struct {
	repo listRepository
}

func NewService(repo listRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListUsers(ctx context.Context, actor pkgauth.Identity) ([]UserDTO, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Access denied")
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}
