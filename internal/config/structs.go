package config

import (
	"time"

	"github.com/GoAgora/go-agora/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Chain     Chain
	Tenants   Tenants
	Telemetry Telemetry
}

// Webserver implement webserver settings.
type Webserver struct {
	CacheEnabled    bool          // true = enable response cache for public GET routes
	CacheExpiration time.Duration // lifetime of a cached response
	CleanPath       bool          // use clean path middleware to allow multi slash requests
	DisableRecover  bool          // disable recover middleware
	Domain          string        // domain name for the webserver
	Port            int           // listening port for the webserver
	ShutDownTime    int           // wait time for shutdown
	URL             string        // base url for the webserver
	CORSOrigins     string        // comma separated list of allowed origins
	EnableMetrics   bool          // expose prometheus metrics on /metrics
}

// Auth holds SIWE, JWT and API key settings.
type Auth struct {
	// JWTSecret signs the access tokens handed out after a SIWE login.
	JWTSecret string `json:"-" toml:"jwtSecret" validate:"omitempty,min=32"`
	// TokenTTL is the lifetime of an access token.
	TokenTTL time.Duration `toml:"tokenTTL"`
	// NonceTTL is how long a SIWE nonce stays valid.
	NonceTTL time.Duration `toml:"nonceTTL"`
	// Domain is the expected SIWE domain; empty accepts the request host.
	Domain string `toml:"domain"`
	// BootstrapAPIKey creates an admin API user on first start when true.
	BootstrapAPIKey bool `toml:"bootstrapAPIKey"`
}

// Chain holds blockchain RPC settings.
type Chain struct {
	// AlchemyID is appended to alchemy RPC endpoints.
	AlchemyID string `json:"-" toml:"alchemyID"`
	// RPC overrides the RPC endpoint per chain id.
	RPC map[string]string `toml:"rpc"`
	// Timeout bounds a single RPC call.
	Timeout time.Duration `toml:"timeout"`
}

// Tenants selects the default tenant and holds per tenant overrides.
type Tenants struct {
	Default   string                    `toml:"default"`
	Overrides map[string]TenantOverride `toml:"overrides"`
}

// TenantOverride changes a built-in tenant.
type TenantOverride struct {
	Hosts   []string        `toml:"hosts"`
	RPCURL  string          `toml:"rpcURL"`
	Toggles map[string]bool `toml:"toggles"`
}

// Telemetry holds the OpenTelemetry tracing settings.
type Telemetry struct {
	Enabled     bool    `toml:"enabled"`
	Exporter    string  `toml:"exporter" validate:"omitempty,oneof=otlp stdout"`
	Endpoint    string  `toml:"endpoint"`
	ServiceName string  `toml:"serviceName"`
	SampleRatio float64 `toml:"sampleRatio" validate:"gte=0,lte=1"`
}
