package tenant

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/controller/toggle"
)

const (
	// HeaderTenant selects a tenant explicitly.
	HeaderTenant = "X-Agora-Tenant"
	// LocalNamespace is the fiber local holding the namespace of the resolved tenant.
	LocalNamespace = "tenant"

	localTenant = "tenant.current"
)

// Middleware resolves the tenant of every request and stores it in the request locals.
// Runtime toggle overrides are read from db when it is not nil.
func Middleware(reg *Registry, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t := reg.Resolve(c.Hostname())

		if ns := c.Get(HeaderTenant); ns != "" {
			var err error

			t, err = reg.Get(ns)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		if db != nil {
			overrides, err := toggle.Load(db, t.Namespace)
			if err != nil {
				log.Warn().Err(err).Str("tenant", t.Namespace).Msg("failed to load toggle overrides")
			} else if len(overrides) > 0 {
				t = t.WithToggles(overrides)
			}
		}

		c.Locals(LocalNamespace, t.Namespace)
		c.Locals(localTenant, t)

		return c.Next()
	}
}

// Current returns the tenant resolved for the request. It panics when Middleware did not run.
func Current(c *fiber.Ctx) *Tenant {
	t, ok := c.Locals(localTenant).(*Tenant)
	if !ok {
		panic(errors.New("tenant middleware is not installed"))
	}

	return t
}

// RequireToggle answers 404 when the feature name is disabled for the tenant.
func RequireToggle(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !Current(c).Toggle(name) {
			return fiber.ErrNotFound
		}

		return c.Next()
	}
}
