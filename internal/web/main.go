package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/GoAgora/go-agora/internal/config"
	fiberlogger "github.com/GoAgora/go-agora/internal/logger/adapter/fiber"
	"github.com/GoAgora/go-agora/internal/metrics"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler"
	"github.com/GoAgora/go-agora/internal/web/handler/admin"
	"github.com/GoAgora/go-agora/internal/web/handler/ballots"
	"github.com/GoAgora/go-agora/internal/web/handler/citizens"
	"github.com/GoAgora/go-agora/internal/web/handler/dashboard"
	"github.com/GoAgora/go-agora/internal/web/handler/delegates"
	"github.com/GoAgora/go-agora/internal/web/handler/login"
	"github.com/GoAgora/go-agora/internal/web/handler/projects"
	"github.com/GoAgora/go-agora/internal/web/handler/proposals"
	"github.com/GoAgora/go-agora/internal/web/handler/staking"
	"github.com/GoAgora/go-agora/internal/web/handler/votingpower"
)

const (
	// CheckAlivePath answers 200 while the service accepts traffic.
	CheckAlivePath = "/checkalive"
	// SpecPath serves the OpenAPI document, SpecPath+".json" its JSON rendering.
	SpecPath = "/spec"
	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"

	requestIDLocal = "requestid"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	env          *handler.Env
}

// Options holds the collaborators of the web service that are not part of handler.Env.
type Options struct {
	Registry *tenant.Registry
	// Storage backs the response cache. The cache is skipped when nil.
	Storage fiber.Storage
	// Gatherer is exposed on MetricsPath when metrics are enabled.
	Gatherer prometheus.Gatherer
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the service down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown stops the http server. Unless fast shutdown is set, checkalive fails first
// for ShutDownTime seconds, so load balancers drain the instance.
func (s *Service) Shutdown() {
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether checkalive answers 200.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// New creates the web service and registers every api handler.
func New(cfg *config.Config, env *handler.Env, opts Options) (*Service, error) {
	if cfg == nil || env == nil || env.DB == nil || opts.Registry == nil {
		log.Error().Msg(handler.ErrNilEnvFatalLogMsg)
		return nil, handler.ErrNilEnv
	}

	specJSON, err := openAPIJSON()
	if err != nil {
		return nil, err
	}

	appName := cfg.Title
	if appName == "" {
		appName = "go-agora"
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        appName,
			CaseSensitive:  true,
			StrictRouting:  !cfg.Webserver.CleanPath,
			Immutable:      true,
			ErrorHandler:   handler.ErrorHandler,
		},
	)

	service := &Service{
		App:          app,
		cfg:          cfg,
		fastShutDown: cfg.DevMode,
		env:          env,
	}
	service.alive.Store(true)

	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:            cfg.Log,
		CacheControlError: "max-age=0",
		CheckAliveURI:     CheckAlivePath,
		Locals:            []string{tenant.LocalNamespace, requestIDLocal},
	}))

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	origins := cfg.Webserver.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: strings.Join([]string{
			fiber.HeaderOrigin,
			fiber.HeaderContentType,
			fiber.HeaderAccept,
			fiber.HeaderAuthorization,
			tenant.HeaderTenant,
		}, ","),
	}))

	app.Get(CheckAlivePath, service.checkAlive)

	app.Get(SpecPath, func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(openAPIYAML)
	})

	app.Get(SpecPath+".json", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(specJSON)
	})

	if cfg.Webserver.EnableMetrics {
		gatherer := opts.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}

		app.Get(MetricsPath, metrics.Handler(gatherer))
	}

	app.Use(tenant.Middleware(opts.Registry, env.DB))
	app.Use(env.Metrics.Middleware(tenant.LocalNamespace))

	api := app.Group(handler.APIPath)

	if cfg.Webserver.CacheEnabled && opts.Storage != nil {
		api.Use(cache.New(cache.Config{
			Next:         skipCache,
			Expiration:   cfg.Webserver.CacheExpiration,
			CacheControl: true,
			KeyGenerator: func(c *fiber.Ctx) string {
				ns, _ := c.Locals(tenant.LocalNamespace).(string)
				return "cache_" + ns + "_" + c.OriginalURL()
			},
			Storage: opts.Storage,
		}))
	}

	for _, h := range []handler.Service{
		&dashboard.Handler,
		&login.Handler,
		&proposals.Handler,
		&delegates.Handler,
		&votingpower.Handler,
		&staking.Handler,
		&projects.Handler,
		&citizens.Handler,
		&ballots.Handler,
		&admin.Handler,
	} {
		if err = h.Init(api, env); err != nil {
			return nil, err
		}
	}

	return service, nil
}

// checkAlive answers 503 once a graceful shutdown started.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// skipCache keeps authenticated calls, login nonces and failed responses out of the cache.
// The cache middleware asks again after the handler ran.
func skipCache(c *fiber.Ctx) bool {
	if c.Get(fiber.HeaderAuthorization) != "" {
		return true
	}

	if strings.HasPrefix(c.Path(), handler.APIPath+login.Path) {
		return true
	}

	return c.Response().StatusCode() >= fiber.StatusBadRequest
}
