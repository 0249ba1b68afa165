package orders

import (
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// CreatedAtLayout renders order timestamps.
const CreatedAtLayout = "2006-01-02 15:04:05"

// OrderDTO is an order as shown to its owner.
type OrderDTO struct {
	ID        uint           `json:"id"`
	CreatedAt string         `json:"createdAt"`
	Total     string         `json:"total"`
	Items     []OrderItemDTO `json:"items"`
}

// AdminOrderDTO adds the owning user to OrderDTO.
type AdminOrderDTO struct {
	OrderDTO
	User OrderUserDTO `json:"user"`
}

type OrderItemDTO struct {
	Product  OrderProductDTO `json:"product"`
	Quantity int             `json:"quantity"`
	Price    string          `json:"price"`
}

// OrderProductDTO carries the purchased product; ID is null once the product
// has been removed from the catalog.
type OrderProductDTO struct {
	ID   *uint  `json:"id"`
	Name string `json:"name"`
}

type OrderUserDTO struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

func NewOrderDTO(o *models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			Product:  OrderProductDTO{ID: item.ProductID, Name: item.ProductName},
			Quantity: item.Quantity,
			Price:    product.FormatMoney(item.Price),
		})
	}
	return OrderDTO{
		ID:        o.ID,
		CreatedAt: o.CreatedAt.UTC().Format(CreatedAtLayout),
		Total:     product.FormatMoney(o.Total),
		Items:     items,
	}
}

func NewAdminOrderDTO(o *models.Order) AdminOrderDTO {
	return AdminOrderDTO{
		OrderDTO: NewOrderDTO(o),
		User:     OrderUserDTO{ID: o.User.ID, Email: o.User.Email},
	}
}
