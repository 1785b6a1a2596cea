package models

import "time"

// Delegate is the aggregated view of an address that holds delegated voting power.
type Delegate struct {
	ID               uint64    `gorm:"primaryKey" json:"-"`
	Namespace        string    `gorm:"size:32;not null;uniqueIndex:idx_delegate_ns_address" json:"-"`
	Address          string    `gorm:"size:42;not null;uniqueIndex:idx_delegate_ns_address" json:"address"`
	VotingPower      Amount    `gorm:"type:numeric(65,0);index" json:"votingPower"`
	NumOfDelegators  int64     `gorm:"index" json:"numOfDelegators"`
	ProposalsVotedOn int64     `json:"proposalsVotedOn"`
	ProposalsCreated int64     `json:"proposalsCreated"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Delegation is the assignment of (a share of) a holder's voting power to a delegatee.
type Delegation struct {
	ID              uint64    `gorm:"primaryKey" json:"-"`
	Namespace       string    `gorm:"size:32;not null;uniqueIndex:idx_delegation_ns_from_to" json:"-"`
	Delegator       string    `gorm:"size:42;not null;uniqueIndex:idx_delegation_ns_from_to" json:"from"`
	Delegatee       string    `gorm:"size:42;not null;uniqueIndex:idx_delegation_ns_from_to;index" json:"to"`
	Amount          Amount    `gorm:"type:numeric(65,0)" json:"allowance"`
	BlockNumber     int64     `json:"blockNumber"`
	TransactionHash string    `gorm:"size:66" json:"transactionHash"`
	CreatedAt       time.Time `json:"timestamp"`
}

// VotingPowerSnapshot is the voting power of a delegate at a block.
type VotingPowerSnapshot struct {
	ID          uint64 `gorm:"primaryKey" json:"-"`
	Namespace   string `gorm:"size:32;not null;index:idx_vp_ns_delegate_block" json:"-"`
	Delegate    string `gorm:"size:42;not null;index:idx_vp_ns_delegate_block" json:"address"`
	BlockNumber int64  `gorm:"index:idx_vp_ns_delegate_block" json:"blockNumber"`
	VotingPower Amount `gorm:"type:numeric(65,0)" json:"votingPower"`
}

// VotableSupply is the supply counted toward quorum at a block.
type VotableSupply struct {
	ID          uint64 `gorm:"primaryKey" json:"-"`
	Namespace   string `gorm:"size:32;not null;index:idx_supply_ns_block" json:"-"`
	BlockNumber int64  `gorm:"index:idx_supply_ns_block" json:"blockNumber"`
	Amount      Amount `gorm:"type:numeric(65,0)" json:"votableSupply"`
}
