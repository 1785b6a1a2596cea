package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrJWTSecretMissing is returned when no jwt secret was configured.
	ErrJWTSecretMissing = errors.New("auth.jwtSecret or AGORA_JWT_SECRET must be set")
)
