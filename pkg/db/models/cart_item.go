package models

import "time"

// CartItem holds one product line; a product appears at most once per cart.
type CartItem struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	CartID    uint      `gorm:"column:cart_id;not null;uniqueIndex:ux_cart_items_cart_product,priority:1"`
	ProductID uint      `gorm:"column:product_id;not null;uniqueIndex:ux_cart_items_cart_product,priority:2"`
	Product   Product   `gorm:"foreignKey:ProductID" validate:"-"`
	Quantity  int       `gorm:"column:quantity;not null" json:"quantity" validate:"min=1"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
