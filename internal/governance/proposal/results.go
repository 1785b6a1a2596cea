package proposal

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// House is a group of offchain voters.
type House string

// Citizen houses.
const (
	HouseApp   House = "APP"
	HouseUser  House = "USER"
	HouseChain House = "CHAIN"
)

// Houses lists the citizen houses in display order.
var Houses = []House{HouseApp, HouseUser, HouseChain}

// Tally is a for/against/abstain count.
type Tally struct {
	For     decimal.Decimal `json:"for"`
	Against decimal.Decimal `json:"against"`
	Abstain decimal.Decimal `json:"abstain"`
}

// Total is the sum of all three.
func (t Tally) Total() decimal.Decimal {
	return t.For.Add(t.Against).Add(t.Abstain)
}

func (t Tally) add(o Tally) Tally {
	return Tally{For: t.For.Add(o.For), Against: t.Against.Add(o.Against), Abstain: t.Abstain.Add(o.Abstain)}
}

// OptionVotes is the votes of one approval option.
type OptionVotes struct {
	Option string          `json:"option"`
	Votes  decimal.Decimal `json:"votes"`
}

// Results is the decoded tally of a proposal.
type Results struct {
	Type Type `json:"type"`
	Tally
	Options       []OptionVotes   `json:"options,omitempty"`
	Criteria      Criteria        `json:"criteria,omitempty"`
	CriteriaValue decimal.Decimal `json:"criteriaValue"`
	Houses        map[House]Tally `json:"houses,omitempty"`
	Scores        []float64       `json:"scores,omitempty"`
	// SnapshotState is the state reported by snapshot.
	SnapshotState string `json:"-"`
}

type rawResults struct {
	Standard []decimal.Decimal `json:"standard"`
	Approval []struct {
		Param string          `json:"param"`
		Votes decimal.Decimal `json:"votes"`
	} `json:"approval"`
	Scores []float64 `json:"scores"`

	App   json.RawMessage `json:"APP"`
	User  json.RawMessage `json:"USER"`
	Chain json.RawMessage `json:"CHAIN"`
}

// ResultsOptions carries the context some tallies depend on.
type ResultsOptions struct {
	// StartBlock is the proposal start block.
	StartBlock int64
	// LegacyApprovalBlock is the governor upgrade block before which approval
	// tallies were stored as [for, abstain]. Zero disables it.
	LegacyApprovalBlock int64
}

func at(v []decimal.Decimal, i int) decimal.Decimal {
	if i < len(v) {
		return v[i]
	}

	return decimal.Zero
}

// standardTally reads the governor order [against, for, abstain].
func standardTally(v []decimal.Decimal) Tally {
	return Tally{For: at(v, 1), Against: at(v, 0), Abstain: at(v, 2)}
}

// houseTally reads an offchain house keyed by support ("0" against, "1" for, "2" abstain).
func houseTally(raw json.RawMessage) (Tally, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Tally{}, nil
	}

	m := map[string]decimal.Decimal{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return Tally{}, err
	}

	return Tally{For: m["1"], Against: m["0"], Abstain: m["2"]}, nil
}

// houseOptions reads an offchain approval house, either [{param, votes}] or {param: votes}.
func houseOptions(raw json.RawMessage) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}

	var list []struct {
		Param string          `json:"param"`
		Votes decimal.Decimal `json:"votes"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			out[item.Param] = out[item.Param].Add(item.Votes)
		}

		return out, nil
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (r rawResults) house(h House) json.RawMessage {
	switch h {
	case HouseApp:
		return r.App
	case HouseUser:
		return r.User
	default:
		return r.Chain
	}
}

// ParseResults decodes the indexed tally of a proposal described by d.
func ParseResults(d Data, raw string, opts ResultsOptions) (Results, error) {
	res := Results{Type: d.Type, Criteria: d.Settings.Criteria, CriteriaValue: d.Settings.CriteriaValue}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}

	var r rawResults
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return res, fmt.Errorf("%w: %s results: %v", ErrMalformedPayload, d.Type, err)
	}

	switch d.Type {
	case Snapshot:
		res.Scores = r.Scores
		if res.Scores == nil {
			res.Scores = []float64{}
		}

		res.SnapshotState = d.State

	case Standard, Optimistic:
		res.Tally = standardTally(r.Standard)

	case Approval:
		if opts.LegacyApprovalBlock > 0 && opts.StartBlock < opts.LegacyApprovalBlock {
			res.Tally = Tally{For: at(r.Standard, 0), Abstain: at(r.Standard, 1)}
		} else {
			res.Tally = standardTally(r.Standard)
		}

		res.Options = make([]OptionVotes, len(d.Options))
		for i, o := range d.Options {
			res.Options[i] = OptionVotes{Option: o.Description}

			for _, a := range r.Approval {
				if a.Param == strconv.Itoa(i) {
					res.Options[i].Votes = a.Votes
					break
				}
			}
		}

	case OffchainStandard, OffchainOptimistic, OffchainOptimisticTiered:
		if err := res.readHouses(r); err != nil {
			return res, err
		}

		if len(r.Standard) > 0 {
			res.Tally = standardTally(r.Standard)
		}

	case OffchainApproval:
		if err := res.readApprovalHouses(d, r); err != nil {
			return res, err
		}

		res.Criteria = CriteriaThreshold
		res.CriteriaValue = decimal.Zero
	}

	return res, nil
}

func (res *Results) readHouses(r rawResults) error {
	res.Houses = make(map[House]Tally, len(Houses))

	for _, h := range Houses {
		t, err := houseTally(r.house(h))
		if err != nil {
			return fmt.Errorf("%w: %s house: %v", ErrMalformedPayload, h, err)
		}

		res.Houses[h] = t
		res.Tally = res.Tally.add(t)
	}

	return nil
}

func (res *Results) readApprovalHouses(d Data, r rawResults) error {
	names := d.Choices
	if len(names) == 0 {
		for _, o := range d.Options {
			names = append(names, o.Description)
		}
	}

	totals := make([]decimal.Decimal, len(names))

	for _, h := range Houses {
		votes, err := houseOptions(r.house(h))
		if err != nil {
			return fmt.Errorf("%w: %s house: %v", ErrMalformedPayload, h, err)
		}

		for i := range names {
			totals[i] = totals[i].Add(votes[strconv.Itoa(i)])
		}
	}

	res.Options = make([]OptionVotes, len(names))
	for i, n := range names {
		res.Options[i] = OptionVotes{Option: n, Votes: totals[i]}
		res.For = res.For.Add(totals[i])
	}

	return nil
}
