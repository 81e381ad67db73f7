// Package domain holds the error taxonomy shared by the persistence,
// session and asset layers. Handlers map these to redirects or HTTP codes.
package domain

import "errors"

var (
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStorage            = errors.New("storage error")
)
