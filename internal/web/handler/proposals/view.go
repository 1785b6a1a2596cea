package proposals

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GoAgora/go-agora/internal/chain"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/governance/proposal"
	"github.com/GoAgora/go-agora/internal/tenant"
)

// View is a proposal as the api returns it.
type View struct {
	ID                string           `json:"id"`
	Proposer          string           `json:"proposer"`
	Title             string           `json:"markdowntitle"`
	Description       string           `json:"description"`
	ProposalType      proposal.Type    `json:"proposalType"`
	ProposalTypeText  string           `json:"proposalTypeText"`
	Status            proposal.Status  `json:"status"`
	CreatedTime       time.Time        `json:"createdTime"`
	CreatedBlock      int64            `json:"createdBlock"`
	StartBlock        int64            `json:"startBlock"`
	EndBlock          int64            `json:"endBlock"`
	StartTime         *time.Time       `json:"startTime"`
	EndTime           *time.Time       `json:"endTime"`
	QueuedTime        *time.Time       `json:"queuedTime"`
	CancelledBlock    *int64           `json:"cancelledBlock"`
	ExecutedBlock     *int64           `json:"executedBlock"`
	Quorum            *models.Amount   `json:"quorum"`
	ApprovalThreshold *int64           `json:"approvalThreshold"`
	ProposalData      proposal.Data    `json:"proposalData"`
	ProposalResults   proposal.Results `json:"proposalResults"`
}

// viewer turns stored proposals into views for one request.
type viewer struct {
	t      *tenant.Tenant
	head   *proposal.Head
	supply models.Amount
}

// latestHead reads the chain head of t. A failure yields nil, statuses then stay PENDING.
func latestHead(ctx context.Context, src chain.Source, t *tenant.Tenant) *proposal.Head {
	if src == nil {
		return nil
	}

	r, err := src.Reader(ctx, t.Chain.ID)
	if err != nil {
		log.Warn().Err(err).Str("tenant", t.Namespace).Msg("no chain reader for proposal status")
		return nil
	}

	b, err := r.LatestBlock(ctx)
	if err != nil {
		log.Warn().Err(err).Str("tenant", t.Namespace).Msg("failed to read latest block")
		return nil
	}

	return &proposal.Head{Number: b.Number, Time: b.Time}
}

// parse decodes the payloads of p. Malformed payloads are logged and read as empty.
func (v viewer) parse(p *models.Proposal) (proposal.Data, proposal.Results) {
	typ := proposal.Type(p.ProposalType)

	d, err := proposal.ParseData(typ, p.ProposalData)
	if err != nil {
		log.Warn().Err(err).Str("proposal", p.ProposalID).Msg("malformed proposal data")
	}

	r, err := proposal.ParseResults(d, p.ProposalResults, proposal.ResultsOptions{
		StartBlock:          p.StartBlock,
		LegacyApprovalBlock: v.t.Contracts.GovernorV6UpgradeBlock,
	})
	if err != nil {
		log.Warn().Err(err).Str("proposal", p.ProposalID).Msg("malformed proposal results")
	}

	return d, r
}

func (v viewer) status(p *models.Proposal, d proposal.Data, r proposal.Results) proposal.Status {
	in := proposal.StatusInput{
		Data:    d,
		Results: r,
		Timeline: proposal.Timeline{
			StartBlock:     p.StartBlock,
			EndBlock:       p.EndBlock,
			StartTime:      p.StartTimestamp,
			EndTime:        p.EndTimestamp,
			QueuedBlock:    p.QueuedBlock,
			QueuedTime:     p.QueuedTimestamp,
			ExecutedBlock:  p.ExecutedBlock,
			CancelledBlock: p.CancelledBlock,
		},
		Latest:         v.head,
		BlockTime:      v.t.Chain.BlockTime,
		VotableSupply:  v.supply,
		UseTimestamps:  v.t.Toggle(tenant.ToggleUseTimestamps),
		QuorumCounting: v.t.QuorumCounting,
	}

	if p.Quorum.IsPositive() {
		q := p.Quorum
		in.Quorum = &q
	}

	if p.ApprovalThreshold > 0 {
		th := p.ApprovalThreshold
		in.ApprovalThreshold = &th
	}

	return proposal.Derive(in)
}

func (v viewer) view(p *models.Proposal) View {
	d, r := v.parse(p)

	out := View{
		ID:               p.ProposalID,
		Proposer:         p.Proposer,
		Title:            proposal.Title(p.Description),
		Description:      p.Description,
		ProposalType:     d.Type,
		ProposalTypeText: proposal.TypeText(d.Type, ""),
		Status:           v.status(p, d, r),
		CreatedTime:      p.CreatedAt,
		CreatedBlock:     p.CreatedBlock,
		StartBlock:       p.StartBlock,
		EndBlock:         p.EndBlock,
		StartTime:        p.StartTimestamp,
		EndTime:          p.EndTimestamp,
		QueuedTime:       p.QueuedTimestamp,
		CancelledBlock:   p.CancelledBlock,
		ExecutedBlock:    p.ExecutedBlock,
		ProposalData:     d,
		ProposalResults:  r,
	}

	if p.Quorum.IsPositive() {
		q := p.Quorum
		out.Quorum = &q
	}

	if p.ApprovalThreshold > 0 {
		th := p.ApprovalThreshold
		out.ApprovalThreshold = &th
	}

	return out
}
