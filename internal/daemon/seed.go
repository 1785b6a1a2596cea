package daemon

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/auth"
	"github.com/GoAgora/go-agora/internal/config"
	"github.com/GoAgora/go-agora/internal/db/controller/apiuser"
)

const bootstrapUser = "bootstrap-admin"

// bootstrapAPIKey creates an admin api user when enabled and no api user exists yet.
// The key is logged once and can not be recovered afterwards.
func bootstrapAPIKey(cfg *config.Config, db *gorm.DB) error {
	if !cfg.Auth.BootstrapAPIKey {
		return nil
	}

	count, err := apiuser.Count(db)
	if err != nil {
		return errors.Wrap(err, "failed to count api users")
	}

	if count > 0 {
		return nil
	}

	u, key, err := apiuser.Create(db, bootstrapUser, "", []string{auth.ScopeAdmin})
	if err != nil {
		return errors.Wrap(err, "failed to create bootstrap api user")
	}

	log.Warn().
		Uint64("id", u.ID).
		Str("key", key).
		Msg("created admin api key, store it now, it is not shown again")

	return nil
}
