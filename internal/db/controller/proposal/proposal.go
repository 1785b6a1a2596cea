// Package proposal provides read access to the indexed proposals of a tenant.
package proposal

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/governance/proposal"
	"github.com/GoAgora/go-agora/internal/pagination"
	"github.com/GoAgora/go-agora/internal/tenant"
)

// Filter selects which proposals are listed.
type Filter string

const (
	// FilterRelevant hides cancelled proposals.
	FilterRelevant Filter = "relevant"
	// FilterEverything lists every proposal.
	FilterEverything Filter = "everything"

	// TypeOffchain matches every offchain proposal type.
	TypeOffchain = "OFFCHAIN"
)

var (
	// ErrProposalNotFound is returned when the proposal does not exist for the tenant.
	ErrProposalNotFound = errors.New("proposal not found")
	// ErrInvalidFilter is returned for an unknown filter.
	ErrInvalidFilter = errors.New("invalid filter, use relevant or everything")
	// ErrInvalidType is returned for an unknown proposal type.
	ErrInvalidType = errors.New("invalid proposal type")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// ParseFilter parses a filter, defaulting to FilterRelevant.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(s)) {
	case "", FilterRelevant:
		return FilterRelevant, nil
	case FilterEverything:
		return FilterEverything, nil
	default:
		return "", ErrInvalidFilter
	}
}

// ListOptions narrows List.
type ListOptions struct {
	Filter Filter
	// Type is a proposal type or TypeOffchain, empty matches all.
	Type string
	// IncludeSnapshot lists SNAPSHOT proposals as well.
	IncludeSnapshot bool
}

func typeScope(typ string) (func(*gorm.DB) *gorm.DB, error) {
	typ = strings.ToUpper(typ)

	switch {
	case typ == "":
		return func(db *gorm.DB) *gorm.DB { return db }, nil
	case typ == TypeOffchain:
		offchain := []string{}

		for _, t := range proposal.Types {
			if t.Offchain() {
				offchain = append(offchain, string(t))
			}
		}

		return func(db *gorm.DB) *gorm.DB {
			return db.Where("proposal_type IN ?", offchain)
		}, nil
	case proposal.Type(typ).Valid():
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("proposal_type = ?", typ)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
}

// List returns one page of proposals of namespace, newest first.
func List(db *gorm.DB, namespace string, opts ListOptions, p pagination.Params) (pagination.Result[models.Proposal], error) {
	if db == nil {
		return pagination.Result[models.Proposal]{}, ErrDBNil
	}

	byType, err := typeScope(opts.Type)
	if err != nil {
		return pagination.Result[models.Proposal]{}, err
	}

	q := db.Model(&models.Proposal{}).Scopes(tenant.Scope(namespace), byType)

	if opts.Filter != FilterEverything {
		q = q.Where("cancelled_block IS NULL")
	}

	if !opts.IncludeSnapshot {
		q = q.Where("proposal_type <> ?", string(proposal.Snapshot))
	}

	return pagination.Query[models.Proposal](q.Order("ordinal DESC").Order("id DESC"), p)
}

// Get returns the proposal id of namespace.
func Get(db *gorm.DB, namespace, id string) (*models.Proposal, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.Proposal

	err := db.Scopes(tenant.Scope(namespace)).Where("proposal_id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProposalNotFound
	}

	if err != nil {
		return nil, err
	}

	return &p, nil
}

// Count returns the number of proposals of namespace.
func Count(db *gorm.DB, namespace string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64

	err := db.Model(&models.Proposal{}).Scopes(tenant.Scope(namespace)).Count(&n).Error

	return n, err
}

// Recent returns the ids of the last n proposals of namespace, newest first.
func Recent(db *gorm.DB, namespace string, n int) ([]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var ids []string

	err := db.Model(&models.Proposal{}).Scopes(tenant.Scope(namespace)).
		Where("cancelled_block IS NULL").
		Order("ordinal DESC").Limit(n).
		Pluck("proposal_id", &ids).Error

	return ids, err
}
