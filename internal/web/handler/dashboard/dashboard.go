// Package dashboard serves the overview of the current tenant.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoAgora/go-agora/internal/db/controller/delegate"
	"github.com/GoAgora/go-agora/internal/db/controller/proposal"
	"github.com/GoAgora/go-agora/internal/db/controller/votingpower"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/governance/units"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

// Path is the path of the tenant overview.
const Path = "/tenant"

// Stats are the headline numbers of a tenant.
type Stats struct {
	Proposals              int64         `json:"proposals"`
	Delegates              int64         `json:"delegates"`
	VotableSupply          models.Amount `json:"votableSupply"`
	VotableSupplyFormatted string        `json:"votableSupplyFormatted"`
}

// Data is the tenant overview.
type Data struct {
	*tenant.Tenant
	Stats Stats `json:"stats"`
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	env *handler.Env
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init registers the overview route.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || env == nil || env.DB == nil {
		log.Error().Msg(handler.ErrNilEnvFatalLogMsg)
		return handler.ErrNilEnv
	}

	s.env = env

	router.Get(Path, s.Get)

	return nil
}

// Get returns the configuration of the tenant and its headline numbers.
func (s *Service) Get(c *fiber.Ctx) error {
	t := tenant.Current(c)

	var (
		st  Stats
		err error
	)

	if st.Proposals, err = proposal.Count(s.env.DB, t.Namespace); err != nil {
		return handler.Fail(err)
	}

	if st.Delegates, err = delegate.Count(s.env.DB, t.Namespace); err != nil {
		return handler.Fail(err)
	}

	if st.VotableSupply, err = votingpower.VotableSupplyOrZero(s.env.DB, t.Namespace); err != nil {
		return handler.Fail(err)
	}

	st.VotableSupplyFormatted = units.FormatVotingPower(st.VotableSupply, t.Token.Decimals, 0)

	return c.JSON(Data{Tenant: t, Stats: st})
}
