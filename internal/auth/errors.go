package auth

import "errors"

var (
	// ErrMissingToken is returned when the request carries no bearer token.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidToken is returned when a token cannot be verified.
	ErrInvalidToken = errors.New("invalid token")

	// ErrDevTokenInProduction is returned when dev tokens are presented in production.
	ErrDevTokenInProduction = errors.New("development tokens not allowed in production")
)
