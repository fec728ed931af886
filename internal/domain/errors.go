package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrUnknownSurface       = errors.New("unknown surface")
)
