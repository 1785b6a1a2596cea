package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configDir(t *testing.T) string {
	t.Helper()

	// Get the project root by going up from internal/config
	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err)

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(configDir(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.NotZero(t, cfg.Webserver.Port)
	assert.NotEmpty(t, cfg.Webserver.URL)
	assert.NotEmpty(t, cfg.DB.Host)
	assert.Equal(t, EngineMySQL, cfg.DB.GormEngine)
	assert.Equal(t, "optimism", cfg.Tenants.Default)
	assert.Equal(t, 30*time.Second, cfg.Webserver.CacheExpiration)
	assert.Equal(t, 10*time.Minute, cfg.Auth.NonceTTL)
	assert.Contains(t, cfg.Tenants.Overrides, "ens")
	assert.Equal(t, []string{"agora.ensdao.org"}, cfg.Tenants.Overrides["ens"].Hosts)
	assert.True(t, cfg.Log.Console.Enabled)
	assert.Equal(t, "access.log", cfg.Log.File.AccessLog)
}

func TestReadConfigMissingDir(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	require.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	secret := strings.Repeat("s", 32)

	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name: "valid config",
			config: Config{
				Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
				Auth:      Auth{JWTSecret: secret},
			},
		},
		{
			name: "missing port",
			config: Config{
				Webserver: Webserver{URL: "http://localhost:8080"},
				Auth:      Auth{JWTSecret: secret},
			},
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name: "missing URL",
			config: Config{
				Webserver: Webserver{Port: 8080},
				Auth:      Auth{JWTSecret: secret},
			},
			wantErr: ErrEmptyURL,
		},
		{
			name: "missing jwt secret",
			config: Config{
				Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
			},
			wantErr: ErrJWTSecretMissing,
		},
		{
			name: "missing jwt secret in dev mode",
			config: Config{
				DevMode:   true,
				Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.config)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 5, tt.config.Webserver.ShutDownTime)
			assert.NotEmpty(t, tt.config.Auth.JWTSecret)
			assert.Equal(t, defaultTokenTTL, tt.config.Auth.TokenTTL)
			assert.Equal(t, EngineMySQL, tt.config.DB.GormEngine)
		})
	}
}

func TestConfigValidationRejectsShortSecret(t *testing.T) {
	cfg := Config{
		Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
		Auth:      Auth{JWTSecret: "short"},
	}

	require.Error(t, validate(&cfg))
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	t.Setenv(JSONConfigEnv, `{"Title":"Test Override","Webserver":{"Port":9090}}`)

	cfg, err := ReadConfig(configDir(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Override", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
}

func TestReadConfigWithEnvSecrets(t *testing.T) {
	secret := strings.Repeat("x", 40)

	t.Setenv("AGORA_INSTANCE_NAME", "ens")
	t.Setenv("AGORA_JWT_SECRET", secret)
	t.Setenv("AGORA_ALCHEMY_ID", "alchemy-key")
	t.Setenv("AGORA_DATABASE_PASSWORD", "db-secret")

	cfg, err := ReadConfig(configDir(t))
	require.NoError(t, err)

	assert.Equal(t, "ens", cfg.Tenants.Default)
	assert.Equal(t, secret, cfg.Auth.JWTSecret)
	assert.Equal(t, "alchemy-key", cfg.Chain.AlchemyID)
	assert.Equal(t, "db-secret", cfg.DB.Password)
}

func TestReadConfigDevModeEnv(t *testing.T) {
	t.Setenv(DevModeEnv, "true")

	cfg, err := ReadConfig(configDir(t))
	require.NoError(t, err)

	assert.True(t, cfg.DevMode)
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{
		Title:   "Test",
		DevMode: true,
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
		Auth: Auth{JWTSecret: "do-not-print-me"},
	}

	tomlStr, err := DumpConfig(&cfg)
	require.NoError(t, err)

	assert.Contains(t, tomlStr, "Test")
	assert.NotContains(t, tomlStr, "do-not-print-me")
	assert.Equal(t, "do-not-print-me", cfg.Auth.JWTSecret)
}

func TestDumpConfigJSON(t *testing.T) {
	cfg := Config{
		Title:   "Test",
		DevMode: true,
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
		DB: DB{Password: "hunter2"},
	}

	jsonStr, err := DumpConfigJSON(&cfg)
	require.NoError(t, err)

	assert.Contains(t, jsonStr, "Test")
	assert.NotContains(t, jsonStr, "hunter2")
}
