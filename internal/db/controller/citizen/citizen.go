// Package citizen reads the citizens and badgeholders of a tenant.
package citizen

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/pagination"
	"github.com/GoAgora/go-agora/internal/tenant"
)

var (
	// ErrCitizenNotFound is returned when the address is not a citizen of the tenant.
	ErrCitizenNotFound = errors.New("citizen not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List returns one page of citizens, oldest first.
func List(db *gorm.DB, namespace string, p pagination.Params) (pagination.Result[models.Citizen], error) {
	if db == nil {
		return pagination.Result[models.Citizen]{}, ErrDBNil
	}

	q := db.Model(&models.Citizen{}).Scopes(tenant.Scope(namespace)).Order("created_at").Order("id")

	return pagination.Query[models.Citizen](q, p)
}

// Get returns the citizen address of namespace.
func Get(db *gorm.DB, namespace, address string) (*models.Citizen, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var c models.Citizen

	err := db.Scopes(tenant.Scope(namespace)).Where("address = ?", strings.ToLower(address)).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCitizenNotFound
	}

	if err != nil {
		return nil, err
	}

	return &c, nil
}

// Among returns which of addresses are citizens.
func Among(db *gorm.DB, namespace string, addresses []string) (map[string]bool, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := map[string]bool{}
	if len(addresses) == 0 {
		return out, nil
	}

	var found []string

	err := db.Model(&models.Citizen{}).Scopes(tenant.Scope(namespace)).
		Where("address IN ?", addresses).
		Pluck("address", &found).Error
	if err != nil {
		return nil, err
	}

	for _, a := range found {
		out[a] = true
	}

	return out, nil
}
