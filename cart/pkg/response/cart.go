package response

import (
	"github.com/shopspring/decimal"

	productRes "github.com/Alturino/storefront/product/pkg/response"
)

// CartLine is a product snapshot taken when it was first added plus the
// requested quantity.
type CartLine struct {
	Product  productRes.Product `json:"product"`
	Quantity int                `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Total     decimal.Decimal `json:"total"`
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"itemCount"`
}
