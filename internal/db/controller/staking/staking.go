// Package staking reads deposits into the tenant staker contract.
package staking

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/pagination"
	"github.com/GoAgora/go-agora/internal/tenant"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Deposits returns one page of the deposits of depositor, newest first.
func Deposits(db *gorm.DB, namespace, depositor string, p pagination.Params) (pagination.Result[models.StakingDeposit], error) {
	if db == nil {
		return pagination.Result[models.StakingDeposit]{}, ErrDBNil
	}

	q := db.Model(&models.StakingDeposit{}).Scopes(tenant.Scope(namespace)).
		Where("depositor = ?", strings.ToLower(depositor)).
		Order("block_number DESC").Order("id DESC")

	return pagination.Query[models.StakingDeposit](q, p)
}

// TotalStaked sums the deposits of depositor.
func TotalStaked(db *gorm.DB, namespace, depositor string) (models.Amount, error) {
	if db == nil {
		return models.ZeroAmount, ErrDBNil
	}

	var deposits []models.StakingDeposit

	err := db.Scopes(tenant.Scope(namespace)).Where("depositor = ?", strings.ToLower(depositor)).Find(&deposits).Error
	if err != nil {
		return models.ZeroAmount, err
	}

	total := models.ZeroAmount
	for _, d := range deposits {
		total = total.Add(d.Amount)
	}

	return total, nil
}
