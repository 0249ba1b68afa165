package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgauth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t).DB())

	created, err := repo.Create(ctx, CreateUserDTO{Email: "a@example.com", PasswordHash: "hash", Roles: []enums.Role{enums.RoleAdmin}})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	byEmail, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, byEmail.Roles.Strings())

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", byID.Email)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t).DB())

	_, err := repo.Create(ctx, CreateUserDTO{Email: "dup@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, CreateUserDTO{Email: "dup@example.com", PasswordHash: "hash"})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestServiceListUsers(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t).DB())
	for _, email := range []string{"one@example.com", "two@example.com"} {
		_, err := repo.Create(ctx, CreateUserDTO{Email: email, PasswordHash: "hash"})
		require.NoError(t, err)
	}

	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.ListUsers(ctx, pkgauth.Identity{UserID: 1, Roles: []enums.Role{enums.RoleUser}})
	require.Error(t, err)
	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	list, err := svc.ListUsers(ctx, pkgauth.Identity{UserID: 1, Roles: []enums.Role{enums.RoleAdmin}})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one@example.com", list[0].Email)
	assert.Equal(t, []string{"ROLE_USER"}, list[1].Roles)
}
