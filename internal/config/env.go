package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	// envPrefix is prepended to every secret variable, e.g. AGORA_JWT_SECRET.
	envPrefix = "agora"

	// DevModeEnv enables dev mode when set to true.
	DevModeEnv = "AGORA_DEV"
)

// secrets are only read from the process environment, never from files.
type secrets struct {
	DevMode          bool   `envconfig:"DEV"`
	InstanceName     string `envconfig:"INSTANCE_NAME"`
	JWTSecret        string `envconfig:"JWT_SECRET"`
	AlchemyID        string `envconfig:"ALCHEMY_ID"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD"`
	DataDogAPIKey    string `envconfig:"DATADOG_API_KEY"`
}

// applyEnv overlays the environment secrets on c. Empty variables keep the file value.
func applyEnv(c *Config) error {
	var s secrets

	if err := envconfig.Process(envPrefix, &s); err != nil {
		return errors.Wrap(err, "failed to read environment")
	}

	if s.DevMode {
		c.DevMode = true
	}

	if s.InstanceName != "" {
		c.Tenants.Default = s.InstanceName
	}

	if s.JWTSecret != "" {
		c.Auth.JWTSecret = s.JWTSecret
	}

	if s.AlchemyID != "" {
		c.Chain.AlchemyID = s.AlchemyID
	}

	if s.DatabasePassword != "" {
		c.DB.Password = s.DatabasePassword
	}

	if s.DataDogAPIKey != "" {
		c.Log.DataDog.APIKey = s.DataDogAPIKey
	}

	return nil
}
