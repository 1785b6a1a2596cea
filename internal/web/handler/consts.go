package handler

import "errors"

const (
	// APIPath is the prefix of every api route.
	APIPath = "/api/v1"

	// ErrNilEnvFatalLogMsg is used if the router or env pointer is nil.
	ErrNilEnvFatalLogMsg = "router, env or db is nil"
)

var (
	// ErrNilEnv is returned by Init when the router or env is nil.
	ErrNilEnv = errors.New(ErrNilEnvFatalLogMsg)
	// ErrInternal is the message of every 500 response.
	ErrInternal = errors.New("internal server error")
)
