package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("tracked unit not found")
	ErrAlreadyExists = errors.New("tracked unit already exists")
	ErrUnknownDriver = errors.New("unsupported store driver")
)
