// Package toggles lets admins override the feature toggles of the current tenant.
package toggles

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/controller/toggle"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

// Path is the path of the toggle routes below the admin group.
const Path = "/toggles"

// Service is the toggles handler service.
type Service struct {
	handler.Service
	db *gorm.DB
}

// Handler is the toggles handler.
var Handler = Service{}

// Init registers the toggle routes.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || env == nil || env.DB == nil {
		log.Error().Msg(handler.ErrNilEnvFatalLogMsg)
		return handler.ErrNilEnv
	}

	s.db = env.DB

	router.Get(Path, s.Get)
	router.Put(Path, s.Put)

	return nil
}

// Response is the effective toggles of a tenant and the stored overrides.
type Response struct {
	Toggles   map[string]bool  `json:"toggles"`
	Overrides toggle.Overrides `json:"overrides"`
}

// Get returns the effective toggles and the runtime overrides.
func (s *Service) Get(c *fiber.Ctx) error {
	t := tenant.Current(c)

	o, err := toggle.Load(s.db, t.Namespace)
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(Response{Toggles: t.Toggles, Overrides: o})
}

// Put merges the body into the stored overrides. The change applies from the next request on.
func (s *Service) Put(c *fiber.Ctx) error {
	t := tenant.Current(c)

	var changes toggle.Overrides
	if err := c.BodyParser(&changes); err != nil {
		return handler.BadRequest(err)
	}

	if len(changes) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no toggles given")
	}

	o, err := toggle.Merge(s.db, t.Namespace, changes)
	if err != nil {
		return handler.Fail(err)
	}

	log.Info().Str("tenant", t.Namespace).Interface("changes", changes).Msg("feature toggles updated")

	return c.JSON(Response{Toggles: t.WithToggles(o).Toggles, Overrides: o})
}
