// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"

	"github.com/GoAgora/go-agora/internal/config"
)

const sqliteMemory = ":memory:"

// Create builds the Data Source Name for the configured gorm engine.
func Create(cfg *config.Config) string {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.User,
			cfg.DB.Password,
			cfg.DB.Name,
		)

		if cfg.DB.Extras != "" {
			out += " " + cfg.DB.Extras
		}

		return out
	case config.EngineSQLite:
		if cfg.DB.Path == "" {
			return sqliteMemory
		}

		return cfg.DB.Path
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			cfg.DB.User,
			cfg.DB.Password,
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.Name,
			cfg.DB.Extras,
		)
	}
}

// URI builds a postgres connection url, as expected by the postgres key/value storage.
func URI(cfg *config.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DB.User, cfg.DB.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.DB.Host, cfg.DB.Port),
		Path:     "/" + cfg.DB.Name,
		RawQuery: cfg.DB.Extras,
	}

	return u.String()
}
