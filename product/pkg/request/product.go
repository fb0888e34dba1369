package request

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product is the admin create and update payload.
type Product struct {
	Name     string          `validate:"required"                json:"name"`
	Price    decimal.Decimal `validate:"decimal_gte_zero"        json:"price"`
	Quantity int             `validate:"gte=0"                   json:"quantity"`
}

// MarshalJSON sends the price as a json number, which the api expects.
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name     string      `json:"name"`
		Price    json.Number `json:"price"`
		Quantity int         `json:"quantity"`
	}{
		Name:     p.Name,
		Price:    json.Number(p.Price.String()),
		Quantity: p.Quantity,
	})
}

type FindProduct struct {
	Name string `json:"name"`
}
