// Package votingpower reads voting power snapshots and the votable supply.
package votingpower

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/tenant"
)

var (
	// ErrNoVotableSupply is returned when no supply has been indexed for the tenant.
	ErrNoVotableSupply = errors.New("votable supply not indexed")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Power is the voting power of an address.
// Advanced is partially delegated power, which is not indexed and always zero.
type Power struct {
	Direct   models.Amount `json:"directVP"`
	Advanced models.Amount `json:"advancedVP"`
	Total    models.Amount `json:"totalVP"`
}

// AtBlock returns the voting power of address at block from the latest snapshot
// not after it. A block of 0 reads the newest snapshot. Addresses without a snapshot have no power.
func AtBlock(db *gorm.DB, namespace, address string, block int64) (Power, error) {
	if db == nil {
		return Power{}, ErrDBNil
	}

	var snaps []models.VotingPowerSnapshot

	q := db.Scopes(tenant.Scope(namespace)).Where("delegate = ?", strings.ToLower(address))
	if block > 0 {
		q = q.Where("block_number <= ?", block)
	}

	if err := q.Order("block_number DESC").Order("id DESC").Limit(1).Find(&snaps).Error; err != nil {
		return Power{}, err
	}

	p := Power{Direct: models.ZeroAmount, Advanced: models.ZeroAmount, Total: models.ZeroAmount}

	if len(snaps) > 0 {
		p.Direct = snaps[0].VotingPower
		p.Total = snaps[0].VotingPower
	}

	return p, nil
}

// VotableSupply returns the newest votable supply of namespace.
func VotableSupply(db *gorm.DB, namespace string) (*models.VotableSupply, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rows []models.VotableSupply

	err := db.Scopes(tenant.Scope(namespace)).Order("block_number DESC").Order("id DESC").Limit(1).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrNoVotableSupply
	}

	return &rows[0], nil
}

// VotableSupplyOrZero is VotableSupply with a missing supply read as zero.
func VotableSupplyOrZero(db *gorm.DB, namespace string) (models.Amount, error) {
	s, err := VotableSupply(db, namespace)

	switch {
	case errors.Is(err, ErrNoVotableSupply):
		return models.ZeroAmount, nil
	case err != nil:
		return models.ZeroAmount, err
	}

	return s.Amount, nil
}
