// Package copeland tallies ranked choice snapshot votes with the Copeland method
// and allocates a funding budget to the ranked options.
//
// Every vote lists option numbers (1 based) from most to least preferred. Options a
// voter ranks after "NONE BELOW" lose against everything ranked above it. An option
// named "<name> (Extended)" is the extended budget of the option "<name>": when a voter
// ranks the extended budget above the basic one, the basic one moves directly above it.
package copeland

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
)

const (
	// NoneBelow is the cut-off option. Options ranked after it count as rejected.
	NoneBelow = "NONE BELOW"
	// ExtendedSuffix marks the extended budget variant of an option.
	ExtendedSuffix = " (Extended)"

	rankUnranked  = -1
	rankBelowNone = -2

	// share of the budget reserved for two year extended grants, the rest funds one year grants
	share2Y = 0.333
	share1Y = 0.666
	top2Y   = 10
)

// FundingType is the kind of grant an option receives.
type FundingType string

// Funding types.
const (
	FundingExt2Y FundingType = "EXT2Y"
	FundingExt1Y FundingType = "EXT1Y"
	FundingStd   FundingType = "STD"
	FundingNone  FundingType = "None"
)

// ErrInvalidChoice is returned by ParseChoice for anything but a json array of integers.
var ErrInvalidChoice = errors.New("ranked choice must be a json array of option numbers")

// FundingInfo is the cost of an option. Ext is nil when there is no extended budget.
type FundingInfo struct {
	Ext             *float64 `json:"ext"`
	Std             float64  `json:"std"`
	IsEligibleFor2Y bool     `json:"isEligibleFor2Y"`
}

// Vote is one ranked ballot.
type Vote struct {
	Choice      []int
	VotingPower float64
}

// Comparison is the head to head result of two options.
type Comparison struct {
	Option1            string  `json:"option1"`
	Option2            string  `json:"option2"`
	Winner             string  `json:"winner,omitempty"`
	Option1VotingPower float64 `json:"option1VotingPower"`
	Option2VotingPower float64 `json:"option2VotingPower"`
	// WinMargin is seen from the option the comparison is listed under.
	WinMargin float64 `json:"winMargin"`
}

// Result is the outcome for one option.
type Result struct {
	Option                string       `json:"option"`
	FundingType           FundingType  `json:"fundingType"`
	Comparisons           []Comparison `json:"comparisons"`
	TotalWins             int          `json:"totalWins"`
	TotalLosses           int          `json:"totalLosses"`
	AvgVotingPowerFor     float64      `json:"avgVotingPowerFor"`
	AvgVotingPowerAgainst float64      `json:"avgVotingPowerAgainst"`
	FundingInfo           FundingInfo  `json:"fundingInfo"`
}

// ParseChoice decodes a snapshot ranked choice such as "[2,1,3]".
func ParseChoice(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		return nil, ErrInvalidChoice
	}

	var choice []int
	if err := json.Unmarshal([]byte(s), &choice); err != nil {
		return nil, ErrInvalidChoice
	}

	return choice, nil
}

// IsExtended reports whether option is an extended budget option.
func IsExtended(option string) bool {
	return strings.HasSuffix(option, ExtendedSuffix)
}

// BaseOption returns the basic option of an extended one.
func BaseOption(option string) (string, bool) {
	if !IsExtended(option) {
		return "", false
	}

	return strings.TrimSuffix(option, ExtendedSuffix), true
}

func infoFor(funding map[string]FundingInfo, option string) FundingInfo {
	key := option
	if base, ok := BaseOption(option); ok {
		key = base
	}

	if info, ok := funding[key]; ok {
		return info
	}

	zero := 0.0

	return FundingInfo{Ext: &zero}
}

func indexOf(choice []int, v int) int {
	for i, c := range choice {
		if c == v {
			return i
		}
	}

	return -1
}

type power struct {
	total float64
	count int
}

type tally struct {
	options  []string
	index    map[string]int
	noneIdx  int
	extended [][2]int // extended option index, basic option index
	pairwise [][]power
	scores   []int
	total    float64
}

func newTally(options []string) *tally {
	t := &tally{
		options:  options,
		index:    make(map[string]int, len(options)),
		noneIdx:  -1,
		pairwise: make([][]power, len(options)),
		scores:   make([]int, len(options)),
	}

	for i, o := range options {
		t.index[o] = i
		t.pairwise[i] = make([]power, len(options))

		if o == NoneBelow && t.noneIdx == -1 {
			t.noneIdx = i
		}
	}

	for i, o := range options {
		if base, ok := BaseOption(o); ok {
			if j, found := t.index[base]; found {
				t.extended = append(t.extended, [2]int{i, j})
			}
		}
	}

	return t
}

func (t *tally) noneRank(choice []int) int {
	if t.noneIdx == -1 {
		return -1
	}

	return indexOf(choice, t.noneIdx+1)
}

// ranks returns the effective rank of every option for one ballot, lower is better.
func (t *tally) ranks(choice []int) []int {
	noneRank := t.noneRank(choice)
	ranks := make([]int, len(t.options))

	for i := range t.options {
		rank := indexOf(choice, i+1)

		switch {
		case rank == -1:
			ranks[i] = rankUnranked
		case noneRank != -1 && rank > noneRank:
			ranks[i] = rankBelowNone
		default:
			ranks[i] = rank
		}
	}

	for _, pair := range t.extended {
		ext, std := pair[0], pair[1]
		extRank, stdRank := ranks[ext], ranks[std]

		if extRank < stdRank || (stdRank < 0 && extRank >= 0) {
			ranks[std] = extRank

			for k, r := range ranks {
				if k != std && r >= 0 && r >= extRank && r < stdRank {
					ranks[k]++
				}
			}
		}
	}

	return ranks
}

func (t *tally) add(v Vote) {
	t.total += v.VotingPower
	ranks := t.ranks(v.Choice)

	win := func(winner, loser int) {
		t.pairwise[winner][loser].total += v.VotingPower
		t.pairwise[winner][loser].count++
	}

	for i := range t.options {
		for j := i + 1; j < len(t.options); j++ {
			r1, r2 := ranks[i], ranks[j]

			switch {
			case r1 == rankBelowNone && r2 == rankBelowNone:
			case r1 == rankUnranked || r2 == rankUnranked:
			case r1 == rankBelowNone:
				win(j, i)
			case r2 == rankBelowNone:
				win(i, j)
			case r1 < r2:
				win(i, j)
			case r1 > r2:
				win(j, i)
			default:
				win(i, j)
				win(j, i)
			}
		}
	}
}

func average(p power) float64 {
	if p.count == 0 {
		return 0
	}

	return p.total / float64(p.count)
}

// compare scores every pair once, ordered by option name.
func (t *tally) compare() []Comparison {
	var comparisons []Comparison

	for i, o1 := range t.options {
		for j, o2 := range t.options {
			if o1 >= o2 {
				continue
			}

			p1, p2 := t.pairwise[i][j], t.pairwise[j][i]
			c := Comparison{
				Option1:            o1,
				Option2:            o2,
				Option1VotingPower: p1.total,
				Option2VotingPower: p2.total,
			}

			switch {
			case p1.total > p2.total:
				t.scores[i]++
				c.Winner = o1
			case p2.total > p1.total:
				t.scores[j]++
				c.Winner = o2
			default:
				avg1, avg2 := average(p1), average(p2)

				if avg1 > avg2 {
					t.scores[i]++
				} else if avg2 > avg1 {
					t.scores[j]++
				}

				if p1.count > 0 && p2.count > 0 {
					if avg1 > avg2 {
						c.Winner = o1
					} else if avg2 > avg1 {
						c.Winner = o2
					}
				}
			}

			comparisons = append(comparisons, c)
		}
	}

	return comparisons
}

// supports reports whether a ballot ranks option above the cut-off.
// A basic option also counts when its extended option is above the cut-off.
func (t *tally) supports(choice []int, option int) bool {
	noneRank := t.noneRank(choice)
	above := func(rank int) bool {
		return rank != -1 && (noneRank == -1 || rank < noneRank)
	}

	name := t.options[option]
	if !IsExtended(name) {
		if ext, ok := t.index[name+ExtendedSuffix]; ok && above(indexOf(choice, ext+1)) {
			return true
		}
	}

	return above(indexOf(choice, option+1))
}

func (t *tally) result(votes []Vote, comparisons []Comparison, option int, funding map[string]FundingInfo) Result {
	name := t.options[option]
	r := Result{
		Option:      name,
		FundingType: FundingNone,
		Comparisons: []Comparison{},
		FundingInfo: infoFor(funding, name),
	}

	for _, c := range comparisons {
		switch name {
		case c.Option1:
			c.WinMargin = c.Option1VotingPower - c.Option2VotingPower
		case c.Option2:
			c.WinMargin = c.Option2VotingPower - c.Option1VotingPower
		default:
			continue
		}

		switch {
		case c.WinMargin > 0:
			r.TotalWins++
		case c.WinMargin < 0:
			r.TotalLosses++
		}

		r.Comparisons = append(r.Comparisons, c)
	}

	sort.SliceStable(r.Comparisons, func(a, b int) bool {
		return r.Comparisons[a].WinMargin > r.Comparisons[b].WinMargin
	})

	var (
		validPower float64
		validCount int
	)

	for _, v := range votes {
		if t.supports(v.Choice, option) {
			validPower += v.VotingPower
			validCount++
		}
	}

	if validCount > 0 {
		r.AvgVotingPowerFor = validPower / float64(validCount)
	}

	if invalid := len(votes) - validCount; invalid > 0 {
		r.AvgVotingPowerAgainst = (t.total - validPower) / float64(invalid)
	}

	return r
}

// Calculate ranks options by pairwise wins and assigns funding within budget.
// Results are returned best first.
func Calculate(votes []Vote, options []string, budget float64, funding map[string]FundingInfo) []Result {
	if len(votes) == 0 {
		out := make([]Result, len(options))
		for i, o := range options {
			out[i] = Result{
				Option:      o,
				FundingType: FundingNone,
				Comparisons: []Comparison{},
				FundingInfo: infoFor(funding, o),
			}
		}

		return out
	}

	t := newTally(options)
	for _, v := range votes {
		t.add(v)
	}

	comparisons := t.compare()

	results := make([]Result, len(options))
	for i := range options {
		results[i] = t.result(votes, comparisons, i, funding)
	}

	order := make([]int, len(options))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if t.scores[ia] != t.scores[ib] {
			return t.scores[ia] > t.scores[ib]
		}

		return results[ia].AvgVotingPowerFor > results[ib].AvgVotingPowerFor
	})

	ranked := make([]Result, len(order))
	for i, idx := range order {
		ranked[i] = results[idx]
	}

	allocate(ranked, budget)

	return ranked
}

// allocate assigns funding types to ranked results in place.
func allocate(ranked []Result, budget float64) {
	remaining2Y := budget * share2Y
	remaining1Y := budget * share1Y

	pos := make(map[string]int, len(ranked))
	noneBelowPos := -1

	for i, r := range ranked {
		pos[r.Option] = i

		if r.Option == NoneBelow && noneBelowPos == -1 {
			noneBelowPos = i
		}
	}

	aboveCutoff := func(i int) bool {
		return noneBelowPos == -1 || i < noneBelowPos
	}

	basicFunded := func(option string) bool {
		base := option
		if b, ok := BaseOption(option); ok {
			base = b
		}

		i, ok := pos[base]

		return ok && ranked[i].FundingType == FundingStd
	}

	// basic options above the cut-off, in rank order
	for i := range ranked {
		r := &ranked[i]
		if r.Option == NoneBelow || !aboveCutoff(i) || IsExtended(r.Option) {
			continue
		}

		if remaining1Y >= r.FundingInfo.Std {
			r.FundingType = FundingStd
			remaining1Y -= r.FundingInfo.Std
		}
	}

	// extended options whose basic option is funded
	for i := range ranked {
		r := &ranked[i]
		if !IsExtended(r.Option) || !basicFunded(r.Option) || r.FundingInfo.Ext == nil {
			continue
		}

		ext := *r.FundingInfo.Ext
		can2Y := r.FundingInfo.IsEligibleFor2Y && i < top2Y

		switch {
		case can2Y && remaining2Y >= ext:
			r.FundingType = FundingExt2Y
			remaining2Y -= ext
		case remaining1Y >= ext:
			r.FundingType = FundingExt1Y
			remaining1Y -= ext
		}
	}

	// unused two year budget moves to the one year bucket once nobody can claim it
	more2Y := false

	for i, r := range ranked {
		if aboveCutoff(i) && basicFunded(r.Option) && r.FundingType == FundingNone &&
			r.FundingInfo.IsEligibleFor2Y && i < top2Y &&
			r.FundingInfo.Ext != nil && *r.FundingInfo.Ext <= remaining2Y {
			more2Y = true
			break
		}
	}

	if !more2Y && remaining2Y > 0 {
		remaining1Y += remaining2Y
	}

	// remaining one year budget goes by total wins
	var pending []int

	for i, r := range ranked {
		if r.FundingType == FundingNone && r.Option != NoneBelow && aboveCutoff(i) {
			pending = append(pending, i)
		}
	}

	sort.SliceStable(pending, func(a, b int) bool {
		ra, rb := ranked[pending[a]], ranked[pending[b]]
		if ra.TotalWins != rb.TotalWins {
			return ra.TotalWins > rb.TotalWins
		}

		return ra.AvgVotingPowerFor > rb.AvgVotingPowerFor
	})

	for _, i := range pending {
		r := &ranked[i]

		if !IsExtended(r.Option) {
			if remaining1Y >= r.FundingInfo.Std {
				r.FundingType = FundingStd
				remaining1Y -= r.FundingInfo.Std
			}

			continue
		}

		if basicFunded(r.Option) && r.FundingInfo.Ext != nil && remaining1Y >= *r.FundingInfo.Ext {
			r.FundingType = FundingExt1Y
			remaining1Y -= *r.FundingInfo.Ext
		}
	}
}
