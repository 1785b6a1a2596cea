package auth

import "errors"

var (
	// ErrNoToken is returned when the request carries no bearer token.
	ErrNoToken = errors.New("no token")

	// ErrInvalidToken is returned for a token that is neither a valid api key nor a valid JWT.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for a JWT past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenNoExpiry is returned for a JWT without an exp claim.
	ErrTokenNoExpiry = errors.New("token has no expiry")

	// ErrTokenNoScope is returned for a JWT without a scope claim.
	ErrTokenNoScope = errors.New("token has no scope")

	// ErrScopeMismatch is returned when the token scope does not allow the request.
	ErrScopeMismatch = errors.New("token scope does not match route")

	// ErrTenantMismatch is returned when a JWT issued for one tenant is used on another.
	ErrTenantMismatch = errors.New("token was issued for another tenant")

	// ErrInvalidMessage is returned for a SIWE message that cannot be parsed or is not valid now.
	ErrInvalidMessage = errors.New("invalid siwe message")

	// ErrDomainMismatch is returned when the SIWE message was signed for another domain.
	ErrDomainMismatch = errors.New("siwe domain mismatch")

	// ErrInvalidNonce is returned for an unknown, expired or already used nonce.
	ErrInvalidNonce = errors.New("invalid nonce")

	// ErrInvalidSignature is returned when neither the EOA nor the contract accepts the signature.
	ErrInvalidSignature = errors.New("invalid signature")
)
