package models

import "time"

// Proposal is a governance proposal of one tenant, on-chain or off-chain.
type Proposal struct {
	// ID is the row id.
	ID uint64 `gorm:"primaryKey" json:"-"`
	// Namespace is the tenant namespace the proposal belongs to.
	Namespace string `gorm:"size:32;not null;uniqueIndex:idx_proposal_ns_pid;index:idx_proposal_ns_ordinal" json:"-"`
	// ProposalID is the governor proposal id (decimal string) or the snapshot id.
	ProposalID string `gorm:"size:100;not null;uniqueIndex:idx_proposal_ns_pid" json:"id"`
	// Proposer is the lowercase address that created the proposal.
	Proposer string `gorm:"size:42;index" json:"proposer"`
	// Description is the markdown description, the first line is the title.
	Description string `gorm:"type:text" json:"description"`
	// Ordinal orders proposals by creation, newest has the highest value.
	Ordinal int64 `gorm:"index:idx_proposal_ns_ordinal" json:"-"`
	// ProposalType is one of the governance.ProposalType values.
	ProposalType string `gorm:"size:40;not null;default:'STANDARD'" json:"proposalType"`
	// ProposalData is the raw json payload (targets, calldatas, approval options, ...).
	ProposalData string `gorm:"type:text" json:"-"`
	// ProposalResults is the raw json tally as indexed.
	ProposalResults string `gorm:"type:text" json:"-"`
	// SnapshotState is the snapshot.org state for SNAPSHOT proposals.
	SnapshotState string `gorm:"size:20" json:"-"`

	CreatedBlock    int64      `json:"createdBlock"`
	StartBlock      int64      `json:"startBlock"`
	EndBlock        int64      `json:"endBlock"`
	StartTimestamp  *time.Time `json:"startTime,omitempty"`
	EndTimestamp    *time.Time `json:"endTime,omitempty"`
	QueuedBlock     *int64     `json:"queuedBlock,omitempty"`
	QueuedTimestamp *time.Time `json:"queuedTime,omitempty"`
	ExecutedBlock   *int64     `json:"executedBlock,omitempty"`
	CancelledBlock  *int64     `json:"cancelledBlock,omitempty"`

	// Quorum is the number of votes needed, as reported by the governor.
	Quorum Amount `gorm:"type:numeric(65,0)" json:"quorum"`
	// ApprovalThreshold is the required for/(for+against) share in basis points, 0 disables the check.
	ApprovalThreshold int64 `json:"approvalThreshold"`

	CreatedAt time.Time `json:"createdTime"`
	UpdatedAt time.Time `json:"-"`
}
