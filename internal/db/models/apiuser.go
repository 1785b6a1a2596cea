package models

import (
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// APIUser is a machine client allowed to call the API with a static key.
// The key is shown once at creation, only its Argon2id hash is stored.
type APIUser struct {
	// ID is the unique identifier and the public part of the key.
	ID uint64 `gorm:"primaryKey"`
	// Name describes the client.
	Name string `gorm:"size:100;not null"`
	// Email is the contact of the client owner.
	Email string `gorm:"size:255"`
	// KeyHash is the Argon2id hash of the secret part of the key.
	KeyHash string `gorm:"size:255;not null"`
	// Scope is a space separated list of granted scopes.
	Scope string `gorm:"size:255"`
	// Enabled indicates whether the key may be used.
	Enabled bool
	// LastUsedAt is set on every successful authentication.
	LastUsedAt *time.Time
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName keeps the historical table name.
func (APIUser) TableName() string {
	return "api_users"
}

// Scopes splits Scope.
func (u *APIUser) Scopes() []string {
	return strings.Fields(u.Scope)
}

// VerifySecret verifies a plaintext secret against the stored hash in constant time.
func (u *APIUser) VerifySecret(secret string) bool {
	match, err := argon2id.ComparePasswordAndHash(secret, u.KeyHash)
	if err != nil {
		log.Error().Err(err).Uint64("api_user", u.ID).Msg("failed to verify api key")
		return false
	}

	return match
}

// HashSecret hashes an api key secret using the Argon2id algorithm.
func HashSecret(secret string) (string, error) {
	return argon2id.CreateHash(secret, argon2id.DefaultParams) //nolint:wrapcheck
}
