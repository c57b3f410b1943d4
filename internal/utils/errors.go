package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken    = errors.New("INVALID_TOKEN")
	ErrProductNotFound = errors.New("PRODUCT_NOT_FOUND")
	ErrEmptyCart       = errors.New("EMPTY_CART")
)
