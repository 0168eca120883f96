package errors

import "errors"

var (
	ErrInvalidOrderPayload = errors.New("invalid order payload")
	ErrInvalidRequest      = errors.New("invalid request")
)
