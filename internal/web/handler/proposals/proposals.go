// Package proposals serves the proposals of the current tenant.
package proposals

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	proposalctrl "github.com/GoAgora/go-agora/internal/db/controller/proposal"
	"github.com/GoAgora/go-agora/internal/db/controller/vote"
	"github.com/GoAgora/go-agora/internal/db/controller/votingpower"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/governance/copeland"
	"github.com/GoAgora/go-agora/internal/governance/proposal"
	"github.com/GoAgora/go-agora/internal/governance/units"
	"github.com/GoAgora/go-agora/internal/metrics"
	"github.com/GoAgora/go-agora/internal/pagination"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

// Path is the path of the proposal routes.
const Path = "/proposals"

// Service is the proposals handler service.
type Service struct {
	handler.Service
	env *handler.Env
}

// Handler is the proposals handler.
var Handler = Service{}

// Init registers the proposal routes.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || env == nil || env.DB == nil {
		log.Error().Msg(handler.ErrNilEnvFatalLogMsg)
		return handler.ErrNilEnv
	}

	s.env = env

	g := router.Group(Path, tenant.RequireToggle(tenant.ToggleProposals))
	g.Get("/", s.List)
	g.Get("/:proposalId", s.Get)
	g.Get("/:proposalId/votes", s.Votes)
	g.Get("/:proposalId/results", s.Results)

	return nil
}

func (s *Service) viewer(c *fiber.Ctx) viewer {
	t := tenant.Current(c)

	supply, err := votingpower.VotableSupplyOrZero(s.env.DB, t.Namespace)
	if err != nil {
		log.Warn().Err(err).Str("tenant", t.Namespace).Msg("failed to read votable supply")
	}

	return viewer{t: t, head: latestHead(c.UserContext(), s.env.Chains, t), supply: supply}
}

// List returns one page of proposals.
func (s *Service) List(c *fiber.Ctx) error {
	t := tenant.Current(c)

	p, err := handler.Page(c)
	if err != nil {
		return err
	}

	filter, err := proposalctrl.ParseFilter(c.Query("filter"))
	if err != nil {
		return handler.BadRequest(err)
	}

	opts := proposalctrl.ListOptions{
		Filter:          filter,
		Type:            c.Query("type"),
		IncludeSnapshot: t.Toggle(tenant.ToggleSnapshot),
	}

	page, err := metrics.Time(s.env.Metrics, "proposals.list", func() (pagination.Result[models.Proposal], error) {
		return proposalctrl.List(s.env.DB, t.Namespace, opts, p)
	})

	switch {
	case errors.Is(err, proposalctrl.ErrInvalidType):
		return handler.BadRequest(err)
	case err != nil:
		return handler.Fail(err)
	}

	v := s.viewer(c)

	return c.JSON(pagination.Map(page, func(m models.Proposal) View { return v.view(&m) }))
}

// Get returns one proposal.
func (s *Service) Get(c *fiber.Ctx) error {
	t := tenant.Current(c)

	p, err := proposalctrl.Get(s.env.DB, t.Namespace, c.Params("proposalId"))
	if err != nil {
		return handler.Fail(err, proposalctrl.ErrProposalNotFound)
	}

	return c.JSON(s.viewer(c).view(p))
}

// Votes returns one page of the votes cast on a proposal.
func (s *Service) Votes(c *fiber.Ctx) error {
	t := tenant.Current(c)

	p, err := handler.Page(c)
	if err != nil {
		return err
	}

	sort, err := vote.ParseSort(c.Query("sort"))
	if err != nil {
		return handler.BadRequest(err)
	}

	page, err := vote.ByProposal(s.env.DB, t.Namespace, c.Params("proposalId"), sort, p)
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(page)
}

// ResultsView is the tally of a proposal.
type ResultsView struct {
	ProposalID      string                     `json:"proposalId"`
	Status          proposal.Status            `json:"status"`
	Results         proposal.Results           `json:"results"`
	Copeland        []copeland.Result          `json:"copeland,omitempty"`
	VetoPercentages map[proposal.House]float64 `json:"vetoPercentages,omitempty"`
	Vetoed          *bool                      `json:"vetoed,omitempty"`
}

// Results returns the tally of a proposal. Ranked choice snapshot votes are counted with the Copeland method.
func (s *Service) Results(c *fiber.Ctx) error {
	t := tenant.Current(c)

	p, err := proposalctrl.Get(s.env.DB, t.Namespace, c.Params("proposalId"))
	if err != nil {
		return handler.Fail(err, proposalctrl.ErrProposalNotFound)
	}

	v := s.viewer(c)
	d, r := v.parse(p)

	out := ResultsView{
		ProposalID: p.ProposalID,
		Status:     v.status(p, d, r),
		Results:    r,
	}

	switch {
	case d.Ranked():
		votes, err := vote.All(s.env.DB, t.Namespace, p.ProposalID)
		if err != nil {
			return handler.Fail(err)
		}

		out.Copeland = copeland.Calculate(rankedVotes(votes, t.Token.Decimals), d.Choices, d.Budget, d.FundingInfo)
	case d.Type == proposal.OffchainOptimistic || d.Type == proposal.OffchainOptimisticTiered:
		out.VetoPercentages = proposal.VetoPercentages(d, r)
		vetoed := proposal.Vetoed(d, r)
		out.Vetoed = &vetoed
	}

	return c.JSON(out)
}

// rankedVotes converts stored ranked choice votes. Votes without a readable choice are skipped.
func rankedVotes(votes []models.Vote, decimals int32) []copeland.Vote {
	out := make([]copeland.Vote, 0, len(votes))

	for _, v := range votes {
		choice, err := copeland.ParseChoice(v.Params)
		if err != nil {
			log.Debug().Err(err).Str("voter", v.Voter).Msg("skipping vote without ranked choice")
			continue
		}

		out = append(out, copeland.Vote{
			Choice:      choice,
			VotingPower: units.TokenAmountToNumber(v.Weight, decimals),
		})
	}

	return out
}
