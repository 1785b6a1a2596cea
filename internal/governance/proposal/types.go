// Package proposal parses indexed proposal payloads and derives proposal status.
package proposal

import "strings"

// Type is the voting module a proposal uses.
type Type string

// Proposal types.
const (
	Standard                 Type = "STANDARD"
	Approval                 Type = "APPROVAL"
	Optimistic               Type = "OPTIMISTIC"
	Snapshot                 Type = "SNAPSHOT"
	OffchainStandard         Type = "OFFCHAIN_STANDARD"
	OffchainApproval         Type = "OFFCHAIN_APPROVAL"
	OffchainOptimistic       Type = "OFFCHAIN_OPTIMISTIC"
	OffchainOptimisticTiered Type = "OFFCHAIN_OPTIMISTIC_TIERED"
)

// Types lists every supported type.
var Types = []Type{
	Standard, Approval, Optimistic, Snapshot,
	OffchainStandard, OffchainApproval, OffchainOptimistic, OffchainOptimisticTiered,
}

// Valid reports whether t is a supported type.
func (t Type) Valid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}

	return false
}

// Offchain reports whether votes are cast as attestations instead of on the governor.
func (t Type) Offchain() bool {
	return strings.HasPrefix(string(t), "OFFCHAIN")
}

// Status is the lifecycle state shown for a proposal.
type Status string

// Proposal statuses.
const (
	StatusCancelled Status = "CANCELLED"
	StatusSucceeded Status = "SUCCEEDED"
	StatusDefeated  Status = "DEFEATED"
	StatusActive    Status = "ACTIVE"
	StatusFailed    Status = "FAILED"
	StatusPending   Status = "PENDING"
	StatusQueued    Status = "QUEUED"
	StatusExecuted  Status = "EXECUTED"
	StatusClosed    Status = "CLOSED"
	StatusPassed    Status = "PASSED"
)

// TypeText returns the display label of a proposal type. A non empty custom label wins.
func TypeText(t Type, customLabel string) string {
	if customLabel != "" {
		return customLabel
	}

	switch t {
	case Optimistic, OffchainOptimistic, OffchainOptimisticTiered:
		return "Optimistic Proposal"
	case Approval, OffchainApproval:
		return "Approval Vote Proposal"
	case Snapshot:
		return "Snapshot Proposal"
	default:
		return "Standard Proposal"
	}
}

// Title returns the first line of a markdown description without heading markers.
func Title(description string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(description), "\n")

	return strings.TrimSpace(strings.TrimLeft(line, "# "))
}
