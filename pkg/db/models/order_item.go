package models

import "github.com/shopspring/decimal"

// OrderItem snapshots name and price at purchase time. ProductID is cleared
// when the product is deleted.
type OrderItem struct {
	ID          uint            `gorm:"column:id;primaryKey"`
	OrderID     uint            `gorm:"column:order_id;not null;index:ix_order_items_order"`
	ProductID   *uint           `gorm:"column:product_id"`
	ProductName string          `gorm:"column:product_name;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
}
