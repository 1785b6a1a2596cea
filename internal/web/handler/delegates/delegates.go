// Package delegates serves delegates, their voting records and statements.
package delegates

import (
	"context"
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/controller/citizen"
	"github.com/GoAgora/go-agora/internal/db/controller/delegate"
	proposalctrl "github.com/GoAgora/go-agora/internal/db/controller/proposal"
	"github.com/GoAgora/go-agora/internal/db/controller/statement"
	"github.com/GoAgora/go-agora/internal/db/controller/vote"
	"github.com/GoAgora/go-agora/internal/db/controller/votingpower"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/governance/units"
	"github.com/GoAgora/go-agora/internal/metrics"
	"github.com/GoAgora/go-agora/internal/pagination"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

const (
	// Path is the path of the delegate routes.
	Path = "/delegates"

	addressParam = "addressOrENS"

	// recentProposals is the window voting participation is measured over.
	recentProposals = 10
)

// Service is the delegates handler service.
type Service struct {
	handler.Service
	env       *handler.Env
	validator *validator.Validate
	now       func() time.Time
}

// Handler is the delegates handler.
var Handler = Service{}

// Init registers the delegate routes.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || env == nil || env.DB == nil {
		log.Error().Msg(handler.ErrNilEnvFatalLogMsg)
		return handler.ErrNilEnv
	}

	s.env = env
	s.validator = validator.New()
	s.now = time.Now

	g := router.Group(Path, tenant.RequireToggle(tenant.ToggleDelegates))
	g.Get("/", s.List)
	g.Get("/:"+addressParam, s.Get)
	g.Get("/:"+addressParam+"/votes", s.Votes)
	g.Get("/:"+addressParam+"/delegators", s.Delegators)
	g.Get("/:"+addressParam+"/delegatees", s.Delegatees)
	g.Get("/:"+addressParam+"/statement", s.GetStatement)

	if env.Auth != nil {
		g.Post("/:"+addressParam+"/statement",
			tenant.RequireToggle(tenant.ToggleDelegatesEdit),
			env.Auth.RequireAuth(),
			s.PostStatement,
		)
	}

	return nil
}

// List returns one page of delegates.
func (s *Service) List(c *fiber.Ctx) error {
	t := tenant.Current(c)

	p, err := handler.Page(c)
	if err != nil {
		return err
	}

	sort, err := delegate.ParseSort(c.Query("sort"))
	if err != nil {
		return handler.BadRequest(err)
	}

	var seed uint64
	if raw := c.Query("seed"); raw != "" {
		if seed, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "seed must be a non negative integer")
		}
	} else {
		seed = uint64(s.now().UnixNano())
	}

	page, err := metrics.Time(s.env.Metrics, "delegates.list", func() (pagination.Result[models.Delegate], error) {
		return delegate.List(s.env.DB, t.Namespace, sort, seed, p)
	})
	if err != nil {
		return handler.Fail(err)
	}

	addrs := make([]string, len(page.Data))
	for i, d := range page.Data {
		addrs[i] = d.Address
	}

	statements, err := statement.ByAddresses(s.env.DB, t.Slug, addrs)
	if err != nil {
		return handler.Fail(err)
	}

	citizens, err := citizen.Among(s.env.DB, t.Namespace, addrs)
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(pagination.Map(page, func(d models.Delegate) ListItem {
		item := ListItem{Delegate: d, Citizen: citizens[d.Address]}

		if st, ok := statements[d.Address]; ok {
			payload := statement.ParsePayload(st.Payload)
			item.Statement = &payload
		}

		return item
	}))
}

// ListItem is a delegate in the delegate list.
type ListItem struct {
	models.Delegate
	Citizen   bool               `json:"citizen"`
	Statement *statement.Payload `json:"statement"`
}

// View is the profile of one delegate.
type View struct {
	Address                            string            `json:"address"`
	Citizen                            bool              `json:"citizen"`
	VotingPower                        votingpower.Power `json:"votingPower"`
	VotingPowerRelativeToVotableSupply float64           `json:"votingPowerRelativeToVotableSupply"`
	VotingPowerRelativeToQuorum        float64           `json:"votingPowerRelativeToQuorum"`
	ProposalsCreated                   int64             `json:"proposalsCreated"`
	vote.Stats
	NumOfDelegators int64           `json:"numOfDelegators"`
	Statement       *statement.Form `json:"statement"`
}

// Get returns the profile of a delegate. Addresses without delegated power get an empty profile.
func (s *Service) Get(c *fiber.Ctx) error {
	t := tenant.Current(c)

	addr, err := handler.Address(c, s.env.Chains, addressParam)
	if err != nil {
		return err
	}

	out := View{Address: addr}

	d, err := delegate.Get(s.env.DB, t.Namespace, addr)

	switch {
	case err == nil:
		out.ProposalsCreated = d.ProposalsCreated
		out.NumOfDelegators = d.NumOfDelegators
	case !errors.Is(err, delegate.ErrDelegateNotFound):
		return handler.Fail(err)
	}

	if out.VotingPower, err = votingpower.AtBlock(s.env.DB, t.Namespace, addr, 0); err != nil {
		return handler.Fail(err)
	}

	supply, err := votingpower.VotableSupplyOrZero(s.env.DB, t.Namespace)
	if err != nil {
		return handler.Fail(err)
	}

	out.VotingPowerRelativeToVotableSupply = units.Percent(out.VotingPower.Total, supply) / 100

	if quorum := s.quorum(c.UserContext(), t); quorum.IsPositive() {
		out.VotingPowerRelativeToQuorum = units.Percent(out.VotingPower.Total, quorum) / 100
	}

	recent, err := proposalctrl.Recent(s.env.DB, t.Namespace, recentProposals)
	if err != nil {
		return handler.Fail(err)
	}

	if out.Stats, err = vote.StatsFor(s.env.DB, t.Namespace, addr, recent); err != nil {
		return handler.Fail(err)
	}

	if _, err = citizen.Get(s.env.DB, t.Namespace, addr); err == nil {
		out.Citizen = true
	} else if !errors.Is(err, citizen.ErrCitizenNotFound) {
		return handler.Fail(err)
	}

	st, err := statement.Get(s.env.DB, addr, t.Slug)

	switch {
	case err == nil:
		form := statement.NewForm(st, t.Slug, requirements(t), s.now())
		out.Statement = &form
	case !errors.Is(err, statement.ErrStatementNotFound):
		return handler.Fail(err)
	}

	return c.JSON(out)
}

// quorum reads the current quorum from the governor. It is zero when it cannot be read.
func (s *Service) quorum(ctx context.Context, t *tenant.Tenant) models.Amount {
	if !t.HasGovernor() || s.env.Chains == nil {
		return models.ZeroAmount
	}

	r, err := s.env.Chains.Reader(ctx, t.Chain.ID)
	if err != nil {
		log.Warn().Err(err).Str("tenant", t.Namespace).Msg("no chain reader for quorum")
		return models.ZeroAmount
	}

	head, err := r.LatestBlock(ctx)
	if err != nil || head.Number < 1 {
		log.Warn().Err(err).Str("tenant", t.Namespace).Msg("failed to read latest block for quorum")
		return models.ZeroAmount
	}

	// quorum is only defined for past timepoints
	q, err := r.Quorum(ctx, common.HexToAddress(t.Contracts.Governor), big.NewInt(head.Number-1))
	if err != nil {
		log.Warn().Err(err).Str("tenant", t.Namespace).Msg("failed to read quorum")
		return models.ZeroAmount
	}

	return units.FromBig(q)
}

// Votes returns one page of the votes cast by a delegate.
func (s *Service) Votes(c *fiber.Ctx) error {
	t := tenant.Current(c)

	addr, err := handler.Address(c, s.env.Chains, addressParam)
	if err != nil {
		return err
	}

	p, err := handler.Page(c)
	if err != nil {
		return err
	}

	page, err := vote.ByVoter(s.env.DB, t.Namespace, addr, p)
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(page)
}

// Delegators returns one page of the addresses delegating to a delegate.
func (s *Service) Delegators(c *fiber.Ctx) error {
	return s.delegations(c, delegate.Delegators)
}

// Delegatees returns one page of the delegates an address delegates to.
func (s *Service) Delegatees(c *fiber.Ctx) error {
	return s.delegations(c, delegate.Delegatees)
}

type delegationsFunc func(db *gorm.DB, namespace, address string, p pagination.Params) (pagination.Result[models.Delegation], error)

func (s *Service) delegations(c *fiber.Ctx, fn delegationsFunc) error {
	t := tenant.Current(c)

	addr, err := handler.Address(c, s.env.Chains, addressParam)
	if err != nil {
		return err
	}

	p, err := handler.Page(c)
	if err != nil {
		return err
	}

	page, err := fn(s.env.DB, t.Namespace, addr, p)
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(page)
}

func requirements(t *tenant.Tenant) statement.Requirements {
	return statement.Requirements{
		CodeOfConduct: t.Toggle(tenant.ToggleCodeOfConduct),
		DAOPrinciples: t.Toggle(tenant.ToggleDAOPrinciples),
	}
}
