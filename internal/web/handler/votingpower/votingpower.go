// Package votingpower serves indexed and live voting power.
package votingpower

import (
	"context"
	"errors"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/GoAgora/go-agora/internal/chain"
	vpctrl "github.com/GoAgora/go-agora/internal/db/controller/votingpower"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/governance/units"
	"github.com/GoAgora/go-agora/internal/metrics"
	"github.com/GoAgora/go-agora/internal/telemetry"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

const (
	// Path is the path of the voting power routes.
	Path = "/voting-power"
	// SupplyPath is the path of the votable supply route.
	SupplyPath = "/votable-supply"

	addressParam = "addressOrENS"
	// displayDecimals is the precision of formatted amounts.
	displayDecimals = 2
)

// Service is the voting power handler service.
type Service struct {
	handler.Service
	env *handler.Env
}

// Handler is the voting power handler.
var Handler = Service{}

// Init registers the voting power routes.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || env == nil || env.DB == nil {
		log.Error().Msg(handler.ErrNilEnvFatalLogMsg)
		return handler.ErrNilEnv
	}

	s.env = env

	router.Get(SupplyPath, s.VotableSupply)
	router.Get(Path+"/:"+addressParam, s.Indexed)
	router.Get(Path+"/:"+addressParam+"/onchain", s.Onchain)

	return nil
}

// PowerView is the voting power of an address.
type PowerView struct {
	Address string `json:"address"`
	// BlockNumber is the block the power was read at, 0 for the latest.
	BlockNumber int64 `json:"blockNumber"`
	vpctrl.Power
	Formatted string `json:"formatted"`
}

// Indexed returns the indexed voting power of an address, at ?block= when given.
func (s *Service) Indexed(c *fiber.Ctx) error {
	t := tenant.Current(c)

	addr, err := handler.Address(c, s.env.Chains, addressParam)
	if err != nil {
		return err
	}

	var block int64
	if raw := c.Query("block"); raw != "" {
		if block, err = strconv.ParseInt(raw, 10, 64); err != nil || block < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "block must be a non negative integer")
		}
	}

	p, err := vpctrl.AtBlock(s.env.DB, t.Namespace, addr, block)
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(PowerView{
		Address:     addr,
		BlockNumber: block,
		Power:       p,
		Formatted:   units.FormatVotingPower(p.Total, t.Token.Decimals, displayDecimals),
	})
}

// Onchain reads the live voting power of an address from the token contracts.
func (s *Service) Onchain(c *fiber.Ctx) error {
	t := tenant.Current(c)

	addr, err := handler.Address(c, s.env.Chains, addressParam)
	if err != nil {
		return err
	}

	var total models.Amount

	err = telemetry.DoInSpan(c.UserContext(), "votingpower.onchain", func(ctx context.Context) error {
		total, err = metrics.Time(s.env.Metrics, "votingpower.onchain", func() (models.Amount, error) {
			return units.FromBig(chain.OnchainVotingPower(ctx, s.env.Chains, t, common.HexToAddress(addr))), nil
		})

		return err
	}, attribute.String("tenant", t.Namespace), attribute.String("address", addr))
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(PowerView{
		Address:   addr,
		Power:     vpctrl.Power{Direct: total, Advanced: models.ZeroAmount, Total: total},
		Formatted: units.FormatVotingPower(total, t.Token.Decimals, displayDecimals),
	})
}

// SupplyView is the votable supply of the tenant.
type SupplyView struct {
	VotableSupply models.Amount `json:"votableSupply"`
	BlockNumber   int64         `json:"blockNumber"`
	Formatted     string        `json:"formatted"`
}

// VotableSupply returns the newest indexed votable supply.
func (s *Service) VotableSupply(c *fiber.Ctx) error {
	t := tenant.Current(c)

	vs, err := vpctrl.VotableSupply(s.env.DB, t.Namespace)
	if errors.Is(err, vpctrl.ErrNoVotableSupply) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(SupplyView{
		VotableSupply: vs.Amount,
		BlockNumber:   vs.BlockNumber,
		Formatted:     units.FormatVotingPower(vs.Amount, t.Token.Decimals, displayDecimals),
	})
}
