package models

import "time"

// Cart is created lazily per user and survives checkout empty.
type Cart struct {
	ID        uint       `gorm:"column:id;primaryKey"`
	UserID    uint       `gorm:"column:user_id;not null;uniqueIndex:ux_carts_user"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
