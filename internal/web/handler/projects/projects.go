// Package projects serves the retro funding projects.
package projects

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoAgora/go-agora/internal/db/controller/project"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

// Path is the path of the project routes.
const Path = "/projects"

// Service is the projects handler service.
type Service struct {
	handler.Service
	env *handler.Env
}

// Handler is the projects handler.
var Handler = Service{}

// Init registers the project routes.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || env == nil || env.DB == nil {
		log.Error().Msg(handler.ErrNilEnvFatalLogMsg)
		return handler.ErrNilEnv
	}

	s.env = env

	g := router.Group(Path, tenant.RequireToggle(tenant.ToggleRetroFunding))
	g.Get("/", s.List)
	g.Get("/:projectId", s.Get)

	return nil
}

// List returns one page of projects, filtered by ?round= and ?category=.
func (s *Service) List(c *fiber.Ctx) error {
	p, err := handler.Page(c)
	if err != nil {
		return err
	}

	f := project.Filter{Round: c.Query("round"), Category: c.Query("category")}

	page, err := project.List(s.env.DB, tenant.Current(c).Namespace, f, p)
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(page)
}

// Get returns one project.
func (s *Service) Get(c *fiber.Ctx) error {
	pr, err := project.Get(s.env.DB, tenant.Current(c).Namespace, c.Params("projectId"))
	if err != nil {
		return handler.Fail(err, project.ErrProjectNotFound)
	}

	return c.JSON(pr)
}
