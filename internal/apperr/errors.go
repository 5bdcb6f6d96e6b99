package apperr

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidState    = errors.New("invalid oauth state")
)
