package proposal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GoAgora/go-agora/internal/governance/copeland"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// ErrMalformedPayload is returned when an indexed json payload cannot be decoded.
var ErrMalformedPayload = errors.New("malformed proposal payload")

// Criteria decides how approval options pass.
type Criteria string

// Approval criteria.
const (
	CriteriaThreshold  Criteria = "THRESHOLD"
	CriteriaTopChoices Criteria = "TOP_CHOICES"
)

// UnmarshalJSON accepts the indexer's numeric form (0 threshold, 1 top choices) and names.
func (c *Criteria) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		if n == 1 {
			*c = CriteriaTopChoices
		} else {
			*c = CriteriaThreshold
		}

		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	*c = Criteria(strings.ToUpper(s))

	return nil
}

// Option is one executable option. Standard proposals have exactly one.
type Option struct {
	Description       string           `json:"description"`
	Targets           []string         `json:"targets"`
	Values            []string         `json:"values"`
	Signatures        []string         `json:"signatures"`
	Calldatas         []string         `json:"calldatas"`
	BudgetTokensSpent *decimal.Decimal `json:"budgetTokensSpent,omitempty"`
}

// Settings are the approval module parameters.
type Settings struct {
	MaxApprovals  int             `json:"maxApprovals"`
	Criteria      Criteria        `json:"criteria"`
	CriteriaValue decimal.Decimal `json:"criteriaValue"`
	BudgetToken   string          `json:"budgetToken"`
	BudgetAmount  decimal.Decimal `json:"budgetAmount"`
}

// Data is the decoded proposal_data of a proposal.
type Data struct {
	Type     Type     `json:"-"`
	Options  []Option `json:"options"`
	Settings Settings `json:"proposalSettings"`
	// CalculationOptions 1 counts only for votes toward quorum.
	CalculationOptions int `json:"calculationOptions"`

	// Snapshot and offchain fields.
	Choices      []string `json:"choices"`
	State        string   `json:"state"`
	VotingSystem string   `json:"type"`

	// Ranked choice (copeland) funding.
	Budget      float64                         `json:"budget"`
	FundingInfo map[string]copeland.FundingInfo `json:"fundingInfo"`

	// Offchain optimistic veto parameters.
	CancelledAttestationHash string          `json:"cancelled_attestation_hash"`
	Tiers                    []float64       `json:"tiers"`
	Eligible                 map[House]int64 `json:"eligible"`
}

type standardOption struct {
	Targets    []string `json:"targets"`
	Values     []string `json:"values"`
	Signatures []string `json:"signatures"`
	Calldatas  []string `json:"calldatas"`
}

// ParseData decodes raw proposal data of type t. An empty payload yields empty data.
func ParseData(t Type, raw string) (Data, error) {
	d := Data{Type: t, Settings: Settings{Criteria: CriteriaThreshold}}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" || raw == "null" {
		return d, nil
	}

	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Data{Type: t, Settings: Settings{Criteria: CriteriaThreshold}}, fmt.Errorf("%w: %s data: %v", ErrMalformedPayload, t, err)
	}

	d.Type = t

	// standard payloads carry the single option at the top level
	if t == Standard && len(d.Options) == 0 {
		var o standardOption
		if err := json.Unmarshal([]byte(raw), &o); err == nil && (len(o.Targets) > 0 || len(o.Calldatas) > 0) {
			d.Options = []Option{{
				Targets:    o.Targets,
				Values:     o.Values,
				Signatures: o.Signatures,
				Calldatas:  o.Calldatas,
			}}
		}
	}

	if d.Settings.Criteria == "" {
		d.Settings.Criteria = CriteriaThreshold
	}

	return d, nil
}

// Ranked reports whether a snapshot proposal is a ranked choice (copeland) vote.
func (d Data) Ranked() bool {
	return d.Type == Snapshot && (d.VotingSystem == "copeland" || d.VotingSystem == "ranked-choice")
}

func (o Option) executes() bool {
	targets := false

	for _, t := range o.Targets {
		if t = strings.TrimSpace(t); t != "" && !strings.EqualFold(t, zeroAddress) {
			targets = true
			break
		}
	}

	calldatas := false

	for _, cd := range o.Calldatas {
		if cd = strings.TrimSpace(cd); cd != "" && !strings.EqualFold(cd, "0x") {
			calldatas = true
			break
		}
	}

	return targets && calldatas
}

// NoCalldata reports whether executing the proposal would do nothing on chain.
func (d Data) NoCalldata() bool {
	switch d.Type {
	case Standard:
		return len(d.Options) == 0 || !d.Options[0].executes()
	case Approval:
		for _, o := range d.Options {
			if o.executes() {
				return false
			}
		}

		return true
	default:
		return true
	}
}
