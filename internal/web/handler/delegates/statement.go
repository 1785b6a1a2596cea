package delegates

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/GoAgora/go-agora/internal/auth"
	"github.com/GoAgora/go-agora/internal/db/controller/statement"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

// StatementRequest is the body of a statement submission.
type StatementRequest struct {
	Signature               string                             `json:"signature" validate:"required,hexadecimal"`
	Message                 string                             `json:"message" validate:"required"`
	DelegateStatement       statement.Payload                  `json:"delegateStatement"`
	Twitter                 string                             `json:"twitter" validate:"max=255"`
	Discord                 string                             `json:"discord" validate:"max=255"`
	Warpcast                string                             `json:"warpcast" validate:"max=255"`
	Email                   string                             `json:"email" validate:"omitempty,email,max=255"`
	AgreeCodeOfConduct      bool                               `json:"agreeCodeConduct"`
	AgreeDAOPrinciples      bool                               `json:"agreeDaoPrinciples"`
	NotificationPreferences *statement.NotificationPreferences `json:"notificationPreferences"`
}

// GetStatement returns the statement form of a delegate. Delegates without a statement get an empty form.
func (s *Service) GetStatement(c *fiber.Ctx) error {
	t := tenant.Current(c)

	addr, err := handler.Address(c, s.env.Chains, addressParam)
	if err != nil {
		return err
	}

	st, err := statement.Get(s.env.DB, addr, t.Slug)
	if err != nil && !errors.Is(err, statement.ErrStatementNotFound) {
		return handler.Fail(err)
	}

	form := statement.NewForm(st, t.Slug, requirements(t), s.now())
	form.Address = addr

	return c.JSON(form)
}

// PostStatement creates or replaces the statement of the authenticated delegate.
func (s *Service) PostStatement(c *fiber.Ctx) error {
	t := tenant.Current(c)

	addr, err := handler.Address(c, s.env.Chains, addressParam)
	if err != nil {
		return err
	}

	if err = auth.ValidateAddressScope(c, addr); err != nil {
		return err
	}

	var req StatementRequest
	if err = c.BodyParser(&req); err != nil {
		return handler.BadRequest(err)
	}

	if err = s.validator.Struct(req); err != nil {
		return handler.BadRequest(err)
	}

	req.DelegateStatement = statement.ParsePayload(mustJSON(req.DelegateStatement))

	reqs := requirements(t)
	if reqs.CodeOfConduct && !req.AgreeCodeOfConduct {
		return fiber.NewError(fiber.StatusBadRequest, "the code of conduct must be accepted")
	}

	if reqs.DAOPrinciples && !req.AgreeDAOPrinciples {
		return fiber.NewError(fiber.StatusBadRequest, "the dao principles must be accepted")
	}

	st := &models.DelegateStatement{
		Address:            addr,
		DAOSlug:            t.Slug,
		Signature:          req.Signature,
		MessageHash:        statement.MessageHash(req.Message),
		Payload:            mustJSON(req.DelegateStatement),
		TwitterHandle:      req.Twitter,
		DiscordHandle:      req.Discord,
		WarpcastHandle:     req.Warpcast,
		Email:              req.Email,
		AgreeCodeOfConduct: req.AgreeCodeOfConduct,
		AgreeDAOPrinciples: req.AgreeDAOPrinciples,
	}

	if req.NotificationPreferences != nil {
		st.NotificationPreferences = mustJSON(req.NotificationPreferences)
	}

	if err = statement.Upsert(s.env.DB, st); err != nil {
		return handler.Fail(err)
	}

	saved, err := statement.Get(s.env.DB, addr, t.Slug)
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(statement.NewForm(saved, t.Slug, reqs, s.now()))
}

// mustJSON encodes values that are known to encode.
func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return string(b)
}
