// Package ballots serves the retro funding ballots of badgeholders.
package ballots

import (
	"errors"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GoAgora/go-agora/internal/auth"
	"github.com/GoAgora/go-agora/internal/db/controller/ballot"
	"github.com/GoAgora/go-agora/internal/db/controller/project"
	"github.com/GoAgora/go-agora/internal/governance/distribution"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

const (
	// Path is the path of the retro funding round routes.
	Path = "/retrofunding/rounds/:roundId"

	addressParam = "addressOrENS"
	ballotPath   = "/ballots/:" + addressParam
)

// Service is the ballots handler service.
type Service struct {
	handler.Service
	env       *handler.Env
	validator *validator.Validate
}

// Handler is the ballots handler.
var Handler = Service{}

// Init registers the round and ballot routes.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || env == nil || env.DB == nil || env.Auth == nil {
		log.Error().Msg(handler.ErrNilEnvFatalLogMsg)
		return handler.ErrNilEnv
	}

	s.env = env
	s.validator = validator.New()

	g := router.Group(Path, tenant.RequireToggle(tenant.ToggleRetroFunding))
	g.Get("/projects", s.Projects)
	g.Get(ballotPath, s.Get)

	edit := []fiber.Handler{env.Auth.RequireAuth(), auth.RequireScope(auth.ScopeBadgeholder)}
	g.Post(ballotPath+"/impact/:projectId", append(edit, s.Impact)...)
	g.Post(ballotPath+"/allocation/:projectId", append(edit, s.Allocation)...)
	g.Post(ballotPath+"/position/:projectId", append(edit, s.Position)...)
	g.Post(ballotPath+"/distribution/:strategy", append(edit, s.Distribute)...)
	g.Post(ballotPath+"/submit", env.Auth.RequireAuth(), s.Submit)

	return nil
}

// Projects returns every project of the round.
func (s *Service) Projects(c *fiber.Ctx) error {
	projects, err := project.InRound(s.env.DB, tenant.Current(c).Namespace, c.Params("roundId"))
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(projects)
}

func (s *Service) key(c *fiber.Ctx) (ballot.Key, error) {
	addr, err := handler.Address(c, s.env.Chains, addressParam)
	if err != nil {
		return ballot.Key{}, err
	}

	return ballot.Key{Namespace: tenant.Current(c).Namespace, Round: c.Params("roundId"), Address: addr}, nil
}

// ownKey is key for the routes that change a ballot, only its owner may call them.
func (s *Service) ownKey(c *fiber.Ctx) (ballot.Key, error) {
	k, err := s.key(c)
	if err != nil {
		return k, err
	}

	return k, auth.ValidateAddressScope(c, k.Address)
}

// Get returns the ballot of an address. Ballots that were never edited are returned pending.
func (s *Service) Get(c *fiber.Ctx) error {
	k, err := s.key(c)
	if err != nil {
		return err
	}

	v, err := ballot.Get(s.env.DB, k)
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(v)
}

// ImpactRequest scores a project.
type ImpactRequest struct {
	Impact int `json:"impact" validate:"min=0,max=5"`
}

// Impact scores a project of the ballot.
func (s *Service) Impact(c *fiber.Ctx) error {
	k, err := s.ownKey(c)
	if err != nil {
		return err
	}

	var req ImpactRequest
	if err = c.BodyParser(&req); err != nil {
		return handler.BadRequest(err)
	}

	if err = s.validator.Struct(req); err != nil {
		return handler.BadRequest(ballot.ErrInvalidImpact)
	}

	v, err := ballot.SetImpact(s.env.DB, k, c.Params("projectId"), req.Impact)
	if err != nil {
		return fail(err)
	}

	return c.JSON(v)
}

// AllocationRequest sets the share of a project in percent.
type AllocationRequest struct {
	Allocation decimal.Decimal `json:"allocation"`
}

// Allocation sets the share of a scored project.
func (s *Service) Allocation(c *fiber.Ctx) error {
	k, err := s.ownKey(c)
	if err != nil {
		return err
	}

	var req AllocationRequest
	if err = c.BodyParser(&req); err != nil {
		return handler.BadRequest(err)
	}

	v, err := ballot.SetAllocation(s.env.DB, k, c.Params("projectId"), req.Allocation)
	if err != nil {
		return fail(err)
	}

	return c.JSON(v)
}

// PositionRequest moves a project, 0 is the top of the ballot.
type PositionRequest struct {
	Position *int `json:"position" validate:"required,min=0"`
}

// Position moves a scored project within the ballot.
func (s *Service) Position(c *fiber.Ctx) error {
	k, err := s.ownKey(c)
	if err != nil {
		return err
	}

	var req PositionRequest
	if err = c.BodyParser(&req); err != nil {
		return handler.BadRequest(err)
	}

	if err = s.validator.Struct(req); err != nil {
		return handler.BadRequest(ballot.ErrInvalidPosition)
	}

	v, err := ballot.SetPosition(s.env.DB, k, c.Params("projectId"), *req.Position)
	if err != nil {
		return fail(err)
	}

	return c.JSON(v)
}

// Distribute spreads the ballot over its scored projects.
func (s *Service) Distribute(c *fiber.Ctx) error {
	k, err := s.ownKey(c)
	if err != nil {
		return err
	}

	strategy, err := distribution.Parse(c.Params("strategy"))
	if err != nil {
		return handler.BadRequest(err)
	}

	v, err := ballot.Distribute(s.env.DB, k, strategy)
	if err != nil {
		return fail(err)
	}

	return c.JSON(v)
}

// SubmitRequest signs off a ballot.
type SubmitRequest struct {
	Signature string        `json:"signature" validate:"required"`
	Votes     []ballot.Vote `json:"votes" validate:"required,dive"`
}

// Submit signs off the ballot of a badgeholder.
func (s *Service) Submit(c *fiber.Ctx) error {
	k, err := s.key(c)
	if err != nil {
		return err
	}

	if slices.Contains(ballot.ClosedRounds, k.Round) {
		return fiber.NewError(fiber.StatusForbidden, ballot.ErrRoundClosed.Error())
	}

	if err = auth.ValidateAddressScope(c, k.Address); err != nil {
		return err
	}

	var req SubmitRequest
	if err = c.BodyParser(&req); err != nil {
		return handler.BadRequest(err)
	}

	if err = s.validator.Struct(req); err != nil {
		return handler.BadRequest(err)
	}

	v, err := ballot.Submit(s.env.DB, k, req.Signature, req.Votes)
	if err != nil {
		return fail(err)
	}

	log.Info().Str("tenant", k.Namespace).Str("round", k.Round).Str("address", k.Address).
		Int("votes", len(req.Votes)).Msg("ballot submitted")

	return c.JSON(v)
}

func fail(err error) error {
	switch {
	case errors.Is(err, ballot.ErrRoundClosed):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ballot.ErrBadgeholderNotFound), errors.Is(err, ballot.ErrAllocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ballot.ErrInvalidSignature), errors.Is(err, ballot.ErrAmountOutOfRange),
		errors.Is(err, ballot.ErrTotalNot100), errors.Is(err, ballot.ErrInvalidImpact), errors.Is(err, ballot.ErrInvalidPosition),
		errors.Is(err, distribution.ErrUnknownStrategy):
		return handler.BadRequest(err)
	}

	return handler.Fail(err)
}
