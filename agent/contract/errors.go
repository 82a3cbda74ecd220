package contract

import "errors"

var (
	ErrUnknownOperation = errors.New("unknown tool operation")
	ErrMissingArgs      = errors.New("operation args are missing")
	ErrValidation       = errors.New("validation failed")
)
