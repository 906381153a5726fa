package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrBadRequest        = errors.New("bad request")
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrMalformedEvent    = errors.New("malformed event")
	ErrUpstream          = errors.New("upstream service unavailable")
	ErrInternal          = errors.New("internal server error")
)
