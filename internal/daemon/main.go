// Package daemon wires the configured database, chains and web service into a running process.
package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GoAgora/go-agora/internal/auth"
	"github.com/GoAgora/go-agora/internal/chain"
	"github.com/GoAgora/go-agora/internal/config"
	"github.com/GoAgora/go-agora/internal/db/dsn"
	"github.com/GoAgora/go-agora/internal/db/kvstore"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/logger/adapter/stdlogger"
	"github.com/GoAgora/go-agora/internal/metrics"
	"github.com/GoAgora/go-agora/internal/telemetry"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

const (
	slowQuery       = 500 * time.Millisecond
	tracingShutdown = 5 * time.Second
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	chains     *chain.Registry
	storage    fiber.Storage
	webService *web.Service
	stopTraces telemetry.ShutdownFunc
}

// Start serves http until SIGINT or SIGTERM and releases every resource afterwards.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)
	log.Info().Str("addr", addr).Msg("starting web service")

	err := d.webService.Start(addr)
	d.Close()

	return err
}

// Close releases the chain clients, the key/value storage, the tracer and the database.
func (d *Daemon) Close() {
	if d.chains != nil {
		d.chains.Close()
	}

	if d.storage != nil {
		if err := d.storage.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close key/value storage")
		}
	}

	if d.stopTraces != nil {
		ctx, cancel := context.WithTimeout(context.Background(), tracingShutdown)
		defer cancel()

		if err := d.stopTraces(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to flush traces")
		}
	}

	if d.db != nil {
		if sqlDB, err := d.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// New creates a new Daemon instance with the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	d := &Daemon{cfg: cfg}

	stop, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, errors.Wrap(err, "failed to setup tracing")
	}

	d.stopTraces = stop

	if d.db, err = OpenDB(cfg); err != nil {
		d.Close()
		return nil, err
	}

	if err = Migrate(d.db); err != nil {
		d.Close()
		return nil, err
	}

	if err = bootstrapAPIKey(cfg, d.db); err != nil {
		d.Close()
		return nil, err
	}

	tenants, err := tenant.NewRegistry(cfg.Tenants, cfg.Chain)
	if err != nil {
		d.Close()
		return nil, errors.Wrap(err, "failed to load tenants")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	d.chains = chain.NewRegistry(tenants.All(), cfg.Chain, m)
	d.storage = kvstore.Open(cfg, d.db)

	env := &handler.Env{
		Cfg:     cfg,
		DB:      d.db,
		Chains:  d.chains,
		Auth:    auth.NewService(d.db, cfg.Auth, d.storage, d.chains),
		Metrics: m,
	}

	d.webService, err = web.New(cfg, env, web.Options{
		Registry: tenants,
		Storage:  d.storage,
		Gatherer: prometheus.DefaultGatherer,
	})
	if err != nil {
		d.Close()
		return nil, err
	}

	log.Info().
		Str("engine", cfg.DB.GormEngine).
		Str("default_tenant", tenants.Default().Namespace).
		Msg("daemon ready")

	return d, nil
}

// OpenDB opens the database of the configured engine. SQL goes to the zerolog logger.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		dialector = postgres.Open(dsn.Create(cfg))
	case config.EngineSQLite:
		dialector = sqlite.Open(dsn.Create(cfg))
	default:
		dialector = mysql.Open(dsn.Create(cfg))
	}

	level := gormlogger.Warn
	if cfg.DB.LogQueries {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(stdlogger.NewComponent("gorm"), gormlogger.Config{
			SlowThreshold:             slowQuery,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect %s database", cfg.DB.GormEngine)
	}

	if cfg.DB.GormEngine == config.EngineSQLite {
		// every sqlite memory connection is a database of its own
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "failed to access sqlite pool")
		}

		sqlDB.SetMaxOpenConns(1)
	}

	if cfg.Telemetry.Enabled {
		if err = telemetry.InstrumentDB(db); err != nil {
			return nil, errors.Wrap(err, "failed to instrument database")
		}
	}

	return db, nil
}

// Migrate creates or updates the tables of every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}

	return nil
}
