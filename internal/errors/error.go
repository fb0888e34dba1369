package errors

import (
	"errors"
)

var (
	ErrUnauthorized     = errors.New("unauthorized, please login again")
	ErrForbidden        = errors.New("forbidden, admin role required")
	ErrLoginFailed      = errors.New("login failed")
	ErrRegisterFailed   = errors.New("registration failed")
	ErrEmptyCart        = errors.New("your cart is empty")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrPlaceOrder       = errors.New("failed to place order, please try again")
	ErrKeyNotFound      = errors.New("key not found")
	ErrUnknownStorage   = errors.New("unknown storage driver")
	ErrInvalidProductID = errors.New("invalid product id")
	ErrBadRequest       = errors.New("malformed request")
	ErrOutOfStock       = errors.New("product is out of stock")
	ErrUnexpected       = errors.New("something went wrong, please try again")
)
