package response

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Product struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ID       int64           `json:"id"`
	Quantity int             `json:"quantity"`
}

func (p Product) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("id", p.ID).
		Str("name", p.Name).
		Str("price", p.Price.StringFixed(2)).
		Int("quantity", p.Quantity)
}

func (p Product) InStock() bool {
	return p.Quantity > 0
}
