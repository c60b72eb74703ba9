package service

import "errors"

var (
	// ErrValidation marks terminal per-request input errors. The
	// wrapped message is safe to show to the caller.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized covers failed logins and missing or expired
	// sessions without revealing which part was wrong.
	ErrUnauthorized = errors.New("unauthorized")
)
