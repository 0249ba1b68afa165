package helpers

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// BuildOrderItems turns cart lines into order items priced from products and
// returns the order total.
func BuildOrderItems(lines []models.CartItem, products map[uint]models.Product) ([]models.OrderItem, decimal.Decimal) {
	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		p := products[line.ProductID]
		productID := line.ProductID
		items = append(items, models.OrderItem{
			ProductID:   &productID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       p.Price,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return items, total
}
