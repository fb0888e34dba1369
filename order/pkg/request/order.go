package request

import (
	cartRes "github.com/Alturino/storefront/cart/pkg/response"
)

type CreateOrder struct {
	Items []OrderItem `validate:"required,gt=0,dive" json:"items"`
}

type OrderItem struct {
	ProductID int64 `validate:"required"       json:"productId"`
	Quantity  int   `validate:"required,gte=1" json:"quantity"`
}

// FromCart builds the order payload from cart lines; prices are not sent,
// the api prices the order itself.
func FromCart(lines []cartRes.CartLine) CreateOrder {
	items := make([]OrderItem, len(lines))
	for i, line := range lines {
		items[i] = OrderItem{ProductID: line.Product.ID, Quantity: line.Quantity}
	}
	return CreateOrder{Items: items}
}

type FindOrderById struct {
	OrderID int64 `validate:"required,gt=0"`
}
