// Package citizens serves the badgeholders of the tenant.
package citizens

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoAgora/go-agora/internal/db/controller/citizen"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

const (
	// Path is the path of the citizen routes.
	Path = "/citizens"

	addressParam = "addressOrENS"
)

// Service is the citizens handler service.
type Service struct {
	handler.Service
	env *handler.Env
}

// Handler is the citizens handler.
var Handler = Service{}

// Init registers the citizen routes.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || env == nil || env.DB == nil {
		log.Error().Msg(handler.ErrNilEnvFatalLogMsg)
		return handler.ErrNilEnv
	}

	s.env = env

	g := router.Group(Path, tenant.RequireToggle(tenant.ToggleCitizens))
	g.Get("/", s.List)
	g.Get("/:"+addressParam, s.Get)

	return nil
}

// List returns one page of citizens.
func (s *Service) List(c *fiber.Ctx) error {
	p, err := handler.Page(c)
	if err != nil {
		return err
	}

	page, err := citizen.List(s.env.DB, tenant.Current(c).Namespace, p)
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(page)
}

// Get returns one citizen.
func (s *Service) Get(c *fiber.Ctx) error {
	addr, err := handler.Address(c, s.env.Chains, addressParam)
	if err != nil {
		return err
	}

	ct, err := citizen.Get(s.env.DB, tenant.Current(c).Namespace, addr)
	if err != nil {
		return handler.Fail(err, citizen.ErrCitizenNotFound)
	}

	return c.JSON(ct)
}
