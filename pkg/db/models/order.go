package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is written once at checkout and never mutated.
type Order struct {
	ID        uint            `gorm:"column:id;primaryKey"`
	UserID    uint            `gorm:"column:user_id;not null;index:ix_orders_user"`
	User      User            `gorm:"foreignKey:UserID"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `gorm:"column:created_at;not null"`
}
