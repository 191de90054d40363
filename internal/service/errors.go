package service

import "errors"

var (
	ErrTripNotFound       = errors.New("trip not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrInvalidTrip wraps ingestion payloads that pass binding but not domain checks.
	ErrInvalidTrip = errors.New("invalid trip")
)
