// Package config handles input from etc/main.toml and the process environment.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	// JSONConfigEnv holds a json document merged over the config file.
	JSONConfigEnv = "AGORA_CONFIG_JSON"

	devJWTSecret = "go-agora-development-secret-do-not-use"

	defaultTokenTTL = 24 * time.Hour
	defaultNonceTTL = 10 * time.Minute
	defaultRPCTime  = 10 * time.Second
)

// ReadConfig from config file.
// path is the directory holding main.toml (main.yaml and main.json work too).
func ReadConfig(path string) (Config, error) {
	var (
		c   Config
		err error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigName("main")
	v.AddConfigPath(path)

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
	}); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	if configAsJSON := os.Getenv(JSONConfigEnv); configAsJSON != "" {
		c, err = decodeAndMergeConfig(c, configAsJSON)
		if err != nil {
			return c, err
		}
	}

	if err = applyEnv(&c); err != nil {
		return c, err
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(redacted(c)); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(redacted(c)); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// redacted returns a copy of c without secrets.
func redacted(c *Config) Config {
	out := *c
	out.Auth.JWTSecret = ""
	out.Chain.AlchemyID = ""
	out.DB.Password = ""
	out.Log.DataDog.APIKey = ""

	return out
}

// validate checks the settings the service can not start without and fills defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	// validate access-control-allow-origin
	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if c.Auth.JWTSecret == "" {
		if !c.DevMode {
			return errors.Wrap(ErrJWTSecretMissing, invalidErrMessage)
		}

		log.Warn().Msg("dev mode: using a static jwt secret")

		c.Auth.JWTSecret = devJWTSecret
	}

	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = defaultTokenTTL
	}

	if c.Auth.NonceTTL == 0 {
		c.Auth.NonceTTL = defaultNonceTTL
	}

	if c.Chain.Timeout == 0 {
		c.Chain.Timeout = defaultRPCTime
	}

	if c.DB.GormEngine == "" {
		c.DB.GormEngine = EngineMySQL
	}

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, invalidErrMessage)
	}

	return nil
}
