// Package login provides the Sign-In with Ethereum endpoints.
//
// A client fetches a nonce, signs an EIP-4361 message containing it and
// exchanges message and signature for a bearer token.
package login

import "errors"

var (
	// ErrInvalidFormData is returned when the login body cannot be parsed or fails validation.
	ErrInvalidFormData = errors.New("invalid form data")

	// ErrInvalidSignature is the public answer to any failed verification.
	ErrInvalidSignature = errors.New("invalid signature")
)
