// Package vote provides read access to the votes cast on proposals.
package vote

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/pagination"
	"github.com/GoAgora/go-agora/internal/tenant"
)

// Sort orders the votes of a proposal.
type Sort string

// Vote sort orders.
const (
	SortWeight      Sort = "weight"
	SortBlockNumber Sort = "block_number"
)

// Support values as indexed from the governor.
const (
	SupportAgainst = "0"
	SupportFor     = "1"
	SupportAbstain = "2"
)

var (
	// ErrInvalidSort is returned for an unknown sort order.
	ErrInvalidSort = errors.New("invalid sort, use weight or block_number")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// ParseSort parses a sort order, defaulting to SortWeight.
func ParseSort(s string) (Sort, error) {
	switch Sort(strings.ToLower(s)) {
	case "", SortWeight:
		return SortWeight, nil
	case SortBlockNumber:
		return SortBlockNumber, nil
	default:
		return "", ErrInvalidSort
	}
}

// ByProposal returns one page of the votes cast on proposalID.
func ByProposal(db *gorm.DB, namespace, proposalID string, sort Sort, p pagination.Params) (pagination.Result[models.Vote], error) {
	if db == nil {
		return pagination.Result[models.Vote]{}, ErrDBNil
	}

	q := db.Model(&models.Vote{}).Scopes(tenant.Scope(namespace)).Where("proposal_id = ?", proposalID)

	switch sort {
	case SortBlockNumber:
		q = q.Order("block_number DESC")
	default:
		q = q.Order("weight DESC")
	}

	return pagination.Query[models.Vote](q.Order("id"), p)
}

// ByVoter returns one page of the votes cast by voter, newest first.
func ByVoter(db *gorm.DB, namespace, voter string, p pagination.Params) (pagination.Result[models.Vote], error) {
	if db == nil {
		return pagination.Result[models.Vote]{}, ErrDBNil
	}

	q := db.Model(&models.Vote{}).Scopes(tenant.Scope(namespace)).
		Where("voter = ?", strings.ToLower(voter)).
		Order("block_number DESC").Order("id DESC")

	return pagination.Query[models.Vote](q, p)
}

// All returns every vote cast on proposalID.
func All(db *gorm.DB, namespace, proposalID string) ([]models.Vote, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	votes := []models.Vote{}

	err := db.Scopes(tenant.Scope(namespace)).Where("proposal_id = ?", proposalID).Order("id").Find(&votes).Error

	return votes, err
}

// Stats summarises the voting record of one address.
type Stats struct {
	ProposalsVotedOn int64 `json:"proposalsVotedOn"`
	VotedFor         int64 `json:"votedFor"`
	VotedAgainst     int64 `json:"votedAgainst"`
	VotedAbstain     int64 `json:"votedAbstain"`
	// LastTenProps is how many of recent were voted on.
	LastTenProps int64 `json:"lastTenProps"`
	// Participation is LastTenProps over the number of recent proposals.
	Participation float64 `json:"votingParticipation"`
}

// StatsFor counts the votes of voter. recent are the ids of the latest proposals.
func StatsFor(db *gorm.DB, namespace, voter string, recent []string) (Stats, error) {
	if db == nil {
		return Stats{}, ErrDBNil
	}

	voter = strings.ToLower(voter)

	var rows []struct {
		Support string
		N       int64
	}

	err := db.Model(&models.Vote{}).Scopes(tenant.Scope(namespace)).
		Select("support, COUNT(*) AS n").
		Where("voter = ?", voter).
		Group("support").
		Scan(&rows).Error
	if err != nil {
		return Stats{}, err
	}

	var s Stats

	for _, r := range rows {
		s.ProposalsVotedOn += r.N

		switch r.Support {
		case SupportFor:
			s.VotedFor = r.N
		case SupportAgainst:
			s.VotedAgainst = r.N
		case SupportAbstain:
			s.VotedAbstain = r.N
		}
	}

	if len(recent) == 0 {
		return s, nil
	}

	err = db.Model(&models.Vote{}).Scopes(tenant.Scope(namespace)).
		Where("voter = ? AND proposal_id IN ?", voter, recent).
		Count(&s.LastTenProps).Error
	if err != nil {
		return Stats{}, err
	}

	s.Participation = float64(s.LastTenProps) / float64(len(recent))

	return s, nil
}
