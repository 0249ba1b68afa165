package users

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID    uint     `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Roles        []enums.Role
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:    u.ID,
		Email: u.Email,
		Roles: u.Roles.Strings(),
	}
}

// ToModel always grants ROLE_USER on top of the requested roles.
func (c CreateUserDTO) ToModel() *models.User {
	roles := append(dbtypes.RoleSet{enums.RoleUser}, c.Roles...)
	return &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Roles:        roles.Normalize(),
	}
}
