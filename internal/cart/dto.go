package cart

import (
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// CartDTO is the shopper-facing view of a cart.
type CartDTO struct {
	Items []CartItemDTO `json:"items"`
}

type CartItemDTO struct {
	ID       uint           `json:"id"`
	Product  CartProductDTO `json:"product"`
	Quantity int            `json:"quantity"`
}

type CartProductDTO struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

// AddItemInput is the body of an add-to-cart request. Quantity defaults to 1.
type AddItemInput struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  *int `json:"quantity"`
}

func (in AddItemInput) quantity() int {
	if in.Quantity == nil {
		return 1
	}
	return *in.Quantity
}

func NewCartDTO(c *models.Cart) *CartDTO {
	out := &CartDTO{Items: []CartItemDTO{}}
	if c == nil {
		return out
	}
	for _, item := range c.Items {
		out.Items = append(out.Items, CartItemDTO{
			ID: item.ID,
			Product: CartProductDTO{
				ID:    item.Product.ID,
				Name:  item.Product.Name,
				Price: product.FormatMoney(item.Product.Price),
			},
			Quantity: item.Quantity,
		})
	}
	return out
}
