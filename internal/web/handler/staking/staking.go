// Package staking serves the deposits into the tenant staker contract.
package staking

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	stakingctrl "github.com/GoAgora/go-agora/internal/db/controller/staking"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

const (
	// Path is the path of the staking routes.
	Path = "/staking"

	addressParam = "addressOrENS"
)

// Service is the staking handler service.
type Service struct {
	handler.Service
	env *handler.Env
}

// Handler is the staking handler.
var Handler = Service{}

// Init registers the staking routes.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || env == nil || env.DB == nil {
		log.Error().Msg(handler.ErrNilEnvFatalLogMsg)
		return handler.ErrNilEnv
	}

	s.env = env

	g := router.Group(Path, tenant.RequireToggle(tenant.ToggleStaking))
	g.Get("/:"+addressParam, s.Summary)
	g.Get("/:"+addressParam+"/deposits", s.Deposits)

	return nil
}

// SummaryView is the staking position of an address.
type SummaryView struct {
	Address     string        `json:"address"`
	TotalStaked models.Amount `json:"totalStaked"`
	Staker      string        `json:"staker"`
}

// Summary returns the total an address has staked.
func (s *Service) Summary(c *fiber.Ctx) error {
	t := tenant.Current(c)

	addr, err := handler.Address(c, s.env.Chains, addressParam)
	if err != nil {
		return err
	}

	total, err := stakingctrl.TotalStaked(s.env.DB, t.Namespace, addr)
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(SummaryView{Address: addr, TotalStaked: total, Staker: t.Contracts.Staker})
}

// Deposits returns one page of the deposits of an address, newest first.
func (s *Service) Deposits(c *fiber.Ctx) error {
	t := tenant.Current(c)

	addr, err := handler.Address(c, s.env.Chains, addressParam)
	if err != nil {
		return err
	}

	p, err := handler.Page(c)
	if err != nil {
		return err
	}

	page, err := stakingctrl.Deposits(s.env.DB, t.Namespace, addr, p)
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(page)
}
