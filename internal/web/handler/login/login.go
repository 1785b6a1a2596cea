package login

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoAgora/go-agora/internal/auth"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

const (
	// Path is the path of the login routes.
	Path = "/auth"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	auth      *auth.Service
	validator *validator.Validate
}

// Handler is the login handler.
var Handler = Service{}

// Init registers the login routes.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || env == nil || env.Auth == nil {
		log.Error().Msg(handler.ErrNilEnvFatalLogMsg)
		return handler.ErrNilEnv
	}

	s.auth = env.Auth
	s.validator = validator.New()

	router.Route(Path, func(r fiber.Router) {
		r.Get("/nonce", s.Nonce)
		r.Post("/verify", s.Verify)
		r.Get("/me", env.Auth.RequireAuth(), s.Me)
	})

	return nil
}

// NonceResponse carries a fresh SIWE nonce.
type NonceResponse struct {
	Nonce string `json:"nonce"`
}

// Nonce issues a single use nonce for a SIWE message.
func (s *Service) Nonce(c *fiber.Ctx) error {
	n, err := s.auth.Nonce()
	if err != nil {
		log.Error().Err(err).Msg("failed to issue nonce")
		return handler.Internal()
	}

	c.Set(fiber.HeaderCacheControl, "no-store")

	return c.JSON(NonceResponse{Nonce: n})
}

// VerifyRequest is a signed SIWE message.
type VerifyRequest struct {
	Message   string `json:"message" validate:"required"`
	Signature string `json:"signature" validate:"required,hexadecimal"`
}

// Verify exchanges a signed SIWE message for an access token.
func (s *Service) Verify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(ErrInvalidFormData)
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(ErrInvalidFormData)
	}

	t := tenant.Current(c)

	tok, err := s.auth.Login(c.UserContext(), t, c.Hostname(), req.Message, req.Signature)

	switch {
	case errors.Is(err, auth.ErrInvalidMessage):
		return handler.BadRequest(err)
	case errors.Is(err, auth.ErrDomainMismatch), errors.Is(err, auth.ErrInvalidNonce), errors.Is(err, auth.ErrInvalidSignature):
		log.Info().Err(err).Str("tenant", t.Namespace).Msg("login rejected")
		return fiber.NewError(fiber.StatusUnauthorized, ErrInvalidSignature.Error())
	case err != nil:
		return handler.Fail(err)
	}

	c.Set(fiber.HeaderCacheControl, "no-store")

	return c.JSON(tok)
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	Kind    auth.Kind `json:"kind"`
	Subject string    `json:"subject"`
	Scopes  []string  `json:"scopes"`
	Tenant  string    `json:"tenant"`
}

// Me returns the principal of the bearer token.
func (s *Service) Me(c *fiber.Ctx) error {
	p := auth.FromCtx(c)

	return c.JSON(MeResponse{Kind: p.Kind, Subject: p.Subject, Scopes: p.Scopes, Tenant: p.Tenant})
}
