// Package apiusers lets admins manage the api keys of machine clients.
package apiusers

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/auth"
	"github.com/GoAgora/go-agora/internal/db/controller/apiuser"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/pagination"
	"github.com/GoAgora/go-agora/internal/web/handler"
)

// Path is the path of the api user routes below the admin group.
const Path = "/api-users"

// Service is the api users handler service.
type Service struct {
	handler.Service
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the api users handler.
var Handler = Service{}

// Init registers the api user routes.
func (s *Service) Init(router fiber.Router, env *handler.Env) error {
	if router == nil || env == nil || env.DB == nil {
		log.Error().Msg(handler.ErrNilEnvFatalLogMsg)
		return handler.ErrNilEnv
	}

	s.db = env.DB
	s.validator = validator.New()

	router.Get(Path, s.List)
	router.Post(Path, s.Create)
	router.Get(Path+"/:id", s.Get)
	router.Post(Path+"/:id/enable", s.enabled(true))
	router.Post(Path+"/:id/disable", s.enabled(false))

	return nil
}

// User is an api user without its key hash.
type User struct {
	ID         uint64     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Scopes     []string   `json:"scopes"`
	Enabled    bool       `json:"enabled"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func view(u models.APIUser) User {
	return User{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Scopes:     u.Scopes(),
		Enabled:    u.Enabled,
		LastUsedAt: u.LastUsedAt,
		CreatedAt:  u.CreatedAt,
	}
}

// List returns one page of api users.
func (s *Service) List(c *fiber.Ctx) error {
	p, err := handler.Page(c)
	if err != nil {
		return err
	}

	page, err := apiuser.List(s.db, p)
	if err != nil {
		return handler.Fail(err)
	}

	return c.JSON(pagination.Map(page, view))
}

// Get returns one api user.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := s.id(c)
	if err != nil {
		return err
	}

	u, err := apiuser.Get(s.db, id)
	if err != nil {
		return handler.Fail(err, apiuser.ErrAPIUserNotFound)
	}

	return c.JSON(view(*u))
}

// CreateRequest describes a new api user.
type CreateRequest struct {
	Name   string   `json:"name" validate:"required,max=100"`
	Email  string   `json:"email" validate:"omitempty,email,max=255"`
	Scopes []string `json:"scopes" validate:"dive,oneof=badgeholder admin"`
}

// CreateResponse carries the key of a new api user. The key cannot be read again.
type CreateResponse struct {
	User
	Key string `json:"key"`
}

// Create adds an api user and returns its key.
func (s *Service) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(err)
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationError(err)
	}

	u, key, err := apiuser.Create(s.db, req.Name, req.Email, req.Scopes)
	if err != nil {
		return handler.Fail(err)
	}

	log.Info().Uint64("api_user", u.ID).Str("name", u.Name).
		Str("by", auth.FromCtx(c).Subject).Msg("api user created")

	return c.Status(fiber.StatusCreated).JSON(CreateResponse{User: view(*u), Key: key})
}

func (s *Service) enabled(enabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := s.id(c)
		if err != nil {
			return err
		}

		if err = apiuser.SetEnabled(s.db, id, enabled); err != nil {
			return handler.Fail(err, apiuser.ErrAPIUserNotFound)
		}

		log.Info().Uint64("api_user", id).Bool("enabled", enabled).Msg("api user updated")

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func (s *Service) id(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "id must be a positive integer")
	}

	return id, nil
}
