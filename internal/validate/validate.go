package validate

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const TagDecimalGteZero = "decimal_gte_zero"

var (
	once     sync.Once
	validate *validator.Validate
)

// Get returns the shared validator with the storefront rules registered.
func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(DecimalValue, decimal.Decimal{})
		_ = validate.RegisterValidation(TagDecimalGteZero, DecimalGteZero)
	})
	return validate
}

// DecimalValue lets rules see a decimal as its string form instead of a
// struct.
func DecimalValue(v reflect.Value) interface{} {
	d, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	return d.String()
}

func DecimalGteZero(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	return !d.IsNegative()
}
