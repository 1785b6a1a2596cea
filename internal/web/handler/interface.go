package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/auth"
	"github.com/GoAgora/go-agora/internal/chain"
	"github.com/GoAgora/go-agora/internal/config"
	"github.com/GoAgora/go-agora/internal/metrics"
)

// Env bundles the dependencies shared by the api handlers.
type Env struct {
	Cfg     *config.Config
	DB      *gorm.DB
	Chains  chain.Source
	Auth    *auth.Service
	Metrics *metrics.Metrics
}

// Service is the interface for an api handler service.
type Service interface {
	Init(router fiber.Router, env *Env) error
}
