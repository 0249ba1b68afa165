package models

import (
	"time"

	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
)

// User represents the canonical identity entity.
type User struct {
	ID           uint            `gorm:"column:id;primaryKey"`
	Email        string          `gorm:"column:email;not null;uniqueIndex:ux_users_email"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Roles        dbtypes.RoleSet `gorm:"column:roles;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
