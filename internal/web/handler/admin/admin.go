// Package admin mounts the routes reserved to the admin scope.
package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoAgora/go-agora/internal/auth"
	"github.com/GoAgora/go-agora/internal/web/handler"
	"github.com/GoAgora/go-agora/internal/web/handler/admin/apiusers"
	"github.com/GoAgora/go-agora/internal/web/handler/admin/toggles"
)

// Path is the path of the admin routes.
const Path = "/admin"

// Service is the admin handler service.
type Service struct {
	handler.Service
	services []handler.Service
}

// Handler is the admin handler.
var Handler = Service{
	services: []handler.Service{&toggles.Handler, &apiusers.Handler},
}

// Init registers the admin group and every admin handler below it.
// Callers must present a token with the admin scope.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || env == nil || env.Auth == nil {
		log.Error().Msg(handler.ErrNilEnvFatalLogMsg)
		return handler.ErrNilEnv
	}

	if s.services == nil {
		s.services = []handler.Service{&toggles.Service{}, &apiusers.Service{}}
	}

	g := router.Group(Path, env.Auth.RequireAuth(), auth.RequireScope(auth.ScopeAdmin))

	for _, svc := range s.services {
		if err := svc.Init(g, env); err != nil {
			return err
		}
	}

	return nil
}
