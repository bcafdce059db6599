package auth

import "errors"

// Verifier outcomes. Every one of them is terminal for the request.
var (
	ErrTokenMissing          = errors.New("token not provided or invalid")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")

	ErrMissingSecret = errors.New("access token secret not configured")
)
