package domain

import "errors"

var (
	ErrSourceNotFound     = errors.New("source not found")
	ErrDuplicateSource    = errors.New("source already registered")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
)
