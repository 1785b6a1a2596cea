// Package project reads the projects taking part in retro funding rounds.
package project

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/pagination"
	"github.com/GoAgora/go-agora/internal/tenant"
)

var (
	// ErrProjectNotFound is returned when the project does not exist for the tenant.
	ErrProjectNotFound = errors.New("project not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Round    string
	Category string
}

// List returns one page of projects ordered by name.
func List(db *gorm.DB, namespace string, f Filter, p pagination.Params) (pagination.Result[models.Project], error) {
	if db == nil {
		return pagination.Result[models.Project]{}, ErrDBNil
	}

	q := db.Model(&models.Project{}).Scopes(tenant.Scope(namespace))

	if f.Round != "" {
		q = q.Where("round = ?", f.Round)
	}

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	return pagination.Query[models.Project](q.Order("name").Order("project_id"), p)
}

// Get returns the project id of namespace.
func Get(db *gorm.DB, namespace, id string) (*models.Project, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var pr models.Project

	err := db.Scopes(tenant.Scope(namespace)).Where("project_id = ?", id).First(&pr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}

	if err != nil {
		return nil, err
	}

	return &pr, nil
}

// InRound returns every project of round.
func InRound(db *gorm.DB, namespace, round string) ([]models.Project, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	projects := []models.Project{}

	err := db.Scopes(tenant.Scope(namespace)).Where("round = ?", round).Order("name").Find(&projects).Error

	return projects, err
}
