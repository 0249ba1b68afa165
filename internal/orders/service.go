package orders

import (
	"context"
	"fmt"

	pkgauth "github.com/angelmondragon/storefront-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Service answers order history queries.
type Service interface {
	ListForUser(ctx context.Context, actor pkgauth.Identity) ([]OrderDTO, error)
	ListAll(ctx context.Context, actor pkgauth.Identity) ([]AdminOrderDTO, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

// ListForUser returns the actor's own orders, oldest first.
func (s *service) ListForUser(ctx context.Context, actor pkgauth.Identity) ([]OrderDTO, error) {
	if actor.UserID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	rows, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewOrderDTO(&rows[i]))
	}
	return out, nil
}

// ListAll returns every order with its owner. Admin only.
func (s *service) ListAll(ctx context.Context, actor pkgauth.Identity) ([]AdminOrderDTO, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Access denied")
	}
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]AdminOrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewAdminOrderDTO(&rows[i]))
	}
	return out, nil
}
