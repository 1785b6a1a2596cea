package daemon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/auth"
	"github.com/GoAgora/go-agora/internal/config"
	"github.com/GoAgora/go-agora/internal/db/models"
)

func sqliteConfig() *config.Config {
	return &config.Config{
		DevMode: true,
		DB:      config.DB{GormEngine: config.EngineSQLite},
		Auth: config.Auth{
			JWTSecret: "0123456789abcdef0123456789abcdef",
		},
		Webserver: config.Webserver{Port: 8080, ShutDownTime: 1},
	}
}

func openMigrated(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := OpenDB(sqliteConfig())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestOpenDB(t *testing.T) {
	db := openMigrated(t)

	for _, model := range models.All() {
		assert.True(t, db.Migrator().HasTable(model))
	}
}

func TestBootstrapAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		runs    int
		want    int64
	}{
		{name: "disabled", enabled: false, runs: 1, want: 0},
		{name: "enabled", enabled: true, runs: 1, want: 1},
		{name: "only once", enabled: true, runs: 3, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openMigrated(t)
			cfg := sqliteConfig()
			cfg.Auth.BootstrapAPIKey = tt.enabled

			for range tt.runs {
				require.NoError(t, bootstrapAPIKey(cfg, db))
			}

			var users []models.APIUser
			require.NoError(t, db.Find(&users).Error)
			assert.Len(t, users, int(tt.want))

			for _, u := range users {
				assert.Equal(t, bootstrapUser, u.Name)
				assert.Equal(t, []string{auth.ScopeAdmin}, u.Scopes())
				assert.True(t, u.Enabled)
			}
		})
	}
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), nil)
	require.Error(t, err)

	cfg := sqliteConfig()
	cfg.Auth.BootstrapAPIKey = true

	d, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, d.webService)

	t.Cleanup(d.Close)

	assert.True(t, d.webService.Alive())
}
