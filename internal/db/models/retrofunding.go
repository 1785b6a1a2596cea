package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BallotStatus is the lifecycle state of a ballot.
type BallotStatus string

const (
	// BallotPending is a ballot that is still being edited.
	BallotPending BallotStatus = "PENDING"
	// BallotSubmitted is a signed and submitted ballot.
	BallotSubmitted BallotStatus = "SUBMITTED"
)

// Project is a project that can receive retro funding in a round.
type Project struct {
	ID          uint64 `gorm:"primaryKey" json:"-"`
	Namespace   string `gorm:"size:32;not null;uniqueIndex:idx_project_ns_id" json:"-"`
	ProjectID   string `gorm:"size:100;not null;uniqueIndex:idx_project_ns_id" json:"id"`
	Round       string `gorm:"size:16;index" json:"round"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Category    string `gorm:"size:100;index" json:"category"`
	Description string `gorm:"type:text" json:"description"`
	Website     string `gorm:"size:255" json:"website"`
	ImageURL    string `gorm:"size:255" json:"profileAvatarUrl"`
}

// Ballot is a badgeholder's ballot for a retro funding round.
type Ballot struct {
	ID                 uint64       `gorm:"primaryKey" json:"-"`
	Namespace          string       `gorm:"size:32;not null;uniqueIndex:idx_ballot_ns_round_address" json:"-"`
	RoundID            string       `gorm:"size:16;not null;uniqueIndex:idx_ballot_ns_round_address" json:"roundId"`
	Address            string       `gorm:"size:42;not null;uniqueIndex:idx_ballot_ns_round_address" json:"address"`
	Status             BallotStatus `gorm:"size:16;not null;default:'PENDING'" json:"status"`
	DistributionMethod string       `gorm:"size:32" json:"distributionMethod,omitempty"`
	Budget             *int64       `json:"budget,omitempty"`
	Signature          string       `gorm:"type:text" json:"-"`
	Payload            string       `gorm:"type:text" json:"-"`
	SubmittedAt        *time.Time   `json:"submittedAt,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// ProjectAllocation is the share of a ballot given to one project.
type ProjectAllocation struct {
	ID         uint64           `gorm:"primaryKey" json:"-"`
	Namespace  string           `gorm:"size:32;not null;uniqueIndex:idx_allocation_ns_round_address_project" json:"-"`
	RoundID    string           `gorm:"size:16;not null;uniqueIndex:idx_allocation_ns_round_address_project" json:"-"`
	Address    string           `gorm:"size:42;not null;uniqueIndex:idx_allocation_ns_round_address_project" json:"-"`
	ProjectID  string           `gorm:"size:100;not null;uniqueIndex:idx_allocation_ns_round_address_project" json:"projectId"`
	Allocation *decimal.Decimal `gorm:"type:numeric(12,4)" json:"allocation"` // percent, nil if unallocated
	Impact     int              `json:"impact"`                               // 0 unscored, 1 to 5
	Rank       int              `json:"rank"`
	Locked     bool             `json:"locked"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// Citizen is an address allowed to vote in citizen houses, badgeholders included.
type Citizen struct {
	ID            uint64    `gorm:"primaryKey" json:"-"`
	Namespace     string    `gorm:"size:32;not null;uniqueIndex:idx_citizen_ns_address" json:"-"`
	Address       string    `gorm:"size:42;not null;uniqueIndex:idx_citizen_ns_address" json:"address"`
	Type          string    `gorm:"size:16;not null;default:'USER'" json:"type"` // USER, CHAIN or APP
	AttestationID string    `gorm:"size:66" json:"attestationId"`
	CreatedAt     time.Time `json:"createdAt"`
}
