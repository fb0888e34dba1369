package response

import (
	"github.com/shopspring/decimal"

	productRes "github.com/Alturino/storefront/product/pkg/response"
)

type Order struct {
	OrderDate   string          `json:"orderDate"`
	Status      string          `json:"status,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	OrderItems  []OrderItem     `json:"orderItems"`
	ID          int64           `json:"id"`
}

type OrderItem struct {
	Product  productRes.Product `json:"product"`
	Price    decimal.Decimal    `json:"price"`
	ID       int64              `json:"id"`
	Quantity int                `json:"quantity"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
