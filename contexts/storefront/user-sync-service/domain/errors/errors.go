package errors

import "errors"

var (
	ErrInvalidPayload    = errors.New("invalid user lifecycle payload")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
)
