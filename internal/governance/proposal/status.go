package proposal

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QueuedPassAfter is how long a queued proposal without calldata waits before it shows as passed.
const QueuedPassAfter = 10 * 24 * time.Hour

// QuorumCounting selects which votes count toward quorum.
type QuorumCounting string

// Quorum counting modes.
const (
	QuorumForAbstain QuorumCounting = "for_abstain"
	QuorumFor        QuorumCounting = "for"
	QuorumAll        QuorumCounting = "all"
)

// default veto parameters of offchain optimistic votes
var (
	defaultTiers = map[Type][]float64{
		OffchainOptimistic:       {20},
		OffchainOptimisticTiered: {55, 45, 35},
	}
	defaultEligible = map[House]int64{
		HouseApp:   100,
		HouseUser:  1000,
		HouseChain: 15,
	}
)

// Head is the latest block of the chain.
type Head struct {
	Number int64
	Time   time.Time
}

// Timeline holds the lifecycle blocks and times of a proposal.
type Timeline struct {
	StartBlock     int64
	EndBlock       int64
	StartTime      *time.Time
	EndTime        *time.Time
	QueuedBlock    *int64
	QueuedTime     *time.Time
	ExecutedBlock  *int64
	CancelledBlock *int64
}

// StatusInput is everything Derive looks at.
type StatusInput struct {
	Data     Data
	Results  Results
	Timeline Timeline
	// Latest is nil when the chain head is unknown.
	Latest *Head
	// BlockTime estimates block timestamps when a time was not indexed.
	BlockTime time.Duration
	// Quorum is nil or zero when the proposal has no quorum.
	Quorum        *decimal.Decimal
	VotableSupply decimal.Decimal
	// ApprovalThreshold is in basis points, nil when there is none.
	ApprovalThreshold *int64
	// UseTimestamps makes the tenant schedule proposals by time instead of blocks.
	UseTimestamps  bool
	QuorumCounting QuorumCounting
}

// CurrentQuorum returns the votes counted toward quorum.
func CurrentQuorum(t Tally, counting QuorumCounting, calculationOptions int) decimal.Decimal {
	if calculationOptions == 1 {
		return t.For
	}

	switch counting {
	case QuorumFor:
		return t.For
	case QuorumAll:
		return t.Total()
	default:
		return t.For.Add(t.Abstain)
	}
}

func (in StatusInput) blockTime(block int64) time.Time {
	bt := in.BlockTime
	if bt <= 0 {
		bt = 12 * time.Second
	}

	return in.Latest.Time.Add(-time.Duration(in.Latest.Number-block) * bt)
}

func (in StatusInput) quorumMissed(votes decimal.Decimal) bool {
	return in.Quorum != nil && in.Quorum.IsPositive() && votes.LessThan(*in.Quorum)
}

// Derive returns the status shown for a proposal.
func Derive(in StatusInput) Status {
	tl := in.Timeline

	if in.Data.Type == Snapshot {
		return Status(strings.ToUpper(in.Results.SnapshotState))
	}

	if tl.CancelledBlock != nil || in.Data.CancelledAttestationHash != "" {
		return StatusCancelled
	}

	if tl.ExecutedBlock != nil {
		return StatusExecuted
	}

	if tl.QueuedBlock != nil && in.Latest != nil {
		queuedAt := in.blockTime(*tl.QueuedBlock)
		if tl.QueuedTime != nil {
			queuedAt = *tl.QueuedTime
		}

		if in.Latest.Time.Sub(queuedAt) > QueuedPassAfter && in.Data.NoCalldata() {
			return StatusPassed
		}

		return StatusQueued
	}

	if s, ok := in.schedule(); ok {
		return s
	}

	return in.outcome()
}

// schedule returns PENDING or ACTIVE while voting has not ended.
func (in StatusInput) schedule() (Status, bool) {
	tl := in.Timeline

	if (in.UseTimestamps || in.Data.Type.Offchain()) && tl.StartTime != nil {
		if in.Latest == nil || tl.StartTime.After(in.Latest.Time) {
			return StatusPending, true
		}

		if tl.EndTime == nil || tl.EndTime.After(in.Latest.Time) {
			return StatusActive, true
		}

		return "", false
	}

	if tl.StartBlock > 0 || !in.Data.Type.Offchain() {
		if tl.StartBlock == 0 || in.Latest == nil || tl.StartBlock > in.Latest.Number {
			return StatusPending, true
		}

		if tl.EndBlock == 0 || tl.EndBlock > in.Latest.Number {
			return StatusActive, true
		}
	}

	return "", false
}

// outcome decides a proposal whose voting has ended.
func (in StatusInput) outcome() Status {
	r := in.Results

	switch in.Data.Type {
	case Standard, OffchainStandard:
		votes := r.For.Add(r.Against)
		met := in.ApprovalThreshold == nil
		if !met {
			pct := decimal.Zero
			if votes.IsPositive() {
				pct = r.For.Div(votes).Mul(decimal.NewFromInt(100))
			}

			met = pct.GreaterThanOrEqual(decimal.NewFromInt(*in.ApprovalThreshold).Div(decimal.NewFromInt(100)))
		}

		current := CurrentQuorum(r.Tally, in.QuorumCounting, in.Data.CalculationOptions)
		if in.quorumMissed(current) || r.For.LessThan(r.Against) || !met {
			return StatusDefeated
		}

		if r.For.GreaterThan(r.Against) {
			return StatusSucceeded
		}

		return StatusFailed

	case Optimistic:
		if r.Against.GreaterThan(in.VotableSupply.Div(decimal.NewFromInt(2)).Truncate(0)) {
			return StatusDefeated
		}

		return StatusSucceeded

	case Approval:
		if in.quorumMissed(r.For.Add(r.Abstain)) {
			return StatusDefeated
		}

		if r.Criteria == CriteriaTopChoices {
			return StatusSucceeded
		}

		for _, o := range r.Options {
			if o.Votes.GreaterThan(r.CriteriaValue) {
				return StatusSucceeded
			}
		}

		return StatusDefeated

	case OffchainApproval:
		if in.quorumMissed(r.For.Add(r.Abstain)) {
			return StatusDefeated
		}

		return StatusSucceeded

	case OffchainOptimistic, OffchainOptimisticTiered:
		if Vetoed(in.Data, r) {
			return StatusDefeated
		}

		return StatusSucceeded

	default:
		return StatusFailed
	}
}

// VetoPercentages returns the share (0-100) of eligible citizens of each house that voted against.
func VetoPercentages(d Data, r Results) map[House]float64 {
	out := make(map[House]float64, len(Houses))

	for _, h := range Houses {
		eligible := d.Eligible[h]
		if eligible == 0 {
			eligible = defaultEligible[h]
		}

		against, _ := r.Houses[h].Against.Float64()
		out[h] = against / float64(eligible) * 100
	}

	return out
}

// Vetoed reports whether an offchain optimistic proposal reached its veto threshold.
// The house average is compared with the first tier.
func Vetoed(d Data, r Results) bool {
	tiers := d.Tiers
	if len(tiers) == 0 {
		tiers = defaultTiers[d.Type]
	}

	if len(tiers) == 0 {
		return false
	}

	var sum float64
	for _, v := range VetoPercentages(d, r) {
		sum += v
	}

	return sum/float64(len(Houses)) >= tiers[0]
}
