package models

import "time"

// Vote is a vote cast on a proposal.
type Vote struct {
	ID              uint64    `gorm:"primaryKey" json:"-"`
	Namespace       string    `gorm:"size:32;not null;uniqueIndex:idx_vote_ns_pid_voter" json:"-"`
	ProposalID      string    `gorm:"size:100;not null;uniqueIndex:idx_vote_ns_pid_voter" json:"proposalId"`
	Voter           string    `gorm:"size:42;not null;uniqueIndex:idx_vote_ns_pid_voter;index" json:"address"`
	Support         string    `gorm:"size:8" json:"support"` // 0 against, 1 for, 2 abstain
	Weight          Amount    `gorm:"type:numeric(65,0)" json:"weight"`
	Reason          string    `gorm:"type:text" json:"reason"`
	Params          string    `gorm:"type:text" json:"params,omitempty"` // json array of option indexes
	BlockNumber     int64     `gorm:"index" json:"blockNumber"`
	TransactionHash string    `gorm:"size:66" json:"transactionHash"`
	CreatedAt       time.Time `json:"timestamp"`
}
