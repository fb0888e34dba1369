package request

import (
	"github.com/rs/zerolog"
)

type Register struct {
	Name          string `validate:"required"       json:"name"`
	Email         string `validate:"required,email" json:"email"`
	Password      string `validate:"required,min=6" json:"password"`
	Address       string `validate:"omitempty"      json:"address"`
	ContactNumber string `validate:"omitempty"      json:"contactNumber"`
}

func (r Register) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", r.Name).
		Str("email", r.Email).
		Str("password", "***").
		Str("address", r.Address).
		Str("contactNumber", r.ContactNumber)
}
