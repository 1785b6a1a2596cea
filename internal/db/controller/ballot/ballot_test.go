package ballot

import (
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAgora/go-agora/internal/db/dbtest"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/governance/distribution"
)

const badgeholder = "0x00000000000000000000000000000000000000B1"

func ptr(v int) *int { return &v }

func TestEstimateRank(t *testing.T) {
	tests := []struct {
		name         string
		impact       int
		lowest       *int
		highestBelow *int
		want         int
	}{
		{name: "unscored", impact: 0, lowest: ptr(5), want: 0},
		{name: "empty group", impact: 3, want: 300000},
		{name: "group with zero rank", impact: 2, lowest: ptr(0), want: 200000},
		{name: "no group below", impact: 3, lowest: ptr(300000), want: 357143},
		{name: "group below", impact: 3, lowest: ptr(300000), highestBelow: ptr(250000), want: 392857},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateRank(tt.impact, tt.lowest, tt.highestBelow))
		})
	}
}

func TestGetUntouched(t *testing.T) {
	db := dbtest.Open(t)

	v, err := Get(db, Key{Namespace: "optimism", Round: "6", Address: badgeholder})
	require.NoError(t, err)
	assert.Equal(t, models.BallotPending, v.Status)
	assert.Equal(t, "0x00000000000000000000000000000000000000b1", v.Address)
	assert.Empty(t, v.Allocations)
	assert.NotNil(t, v.Allocations)

	var n int64
	require.NoError(t, db.Model(&models.Ballot{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestImpactAndAllocation(t *testing.T) {
	db := dbtest.Open(t)
	k := Key{Namespace: "optimism", Round: "6", Address: badgeholder}

	_, err := SetImpact(db, k, "p1", 5)
	require.NoError(t, err)

	_, err = SetImpact(db, k, "p2", 5)
	require.NoError(t, err)

	v, err := SetImpact(db, k, "p3", 0)
	require.NoError(t, err)

	require.Len(t, v.Allocations, 3)
	assert.Equal(t, "p2", v.Allocations[0].ProjectID)
	assert.Equal(t, 642857, v.Allocations[0].Rank)
	assert.Equal(t, "p1", v.Allocations[1].ProjectID)
	assert.Equal(t, 500000, v.Allocations[1].Rank)
	assert.Equal(t, "p3", v.Allocations[2].ProjectID)

	_, err = SetImpact(db, k, "p1", 6)
	require.ErrorIs(t, err, ErrInvalidImpact)

	v, err = SetAllocation(db, k, "p1", decimal.NewFromInt(30))
	require.NoError(t, err)
	require.NotNil(t, v.Allocations[1].Allocation)
	assert.Equal(t, "30", v.Allocations[1].Allocation.String())

	_, err = SetAllocation(db, k, "p9", decimal.NewFromInt(30))
	require.ErrorIs(t, err, ErrAllocationNotFound)

	_, err = SetAllocation(db, k, "p1", decimal.NewFromInt(101))
	require.ErrorIs(t, err, ErrAmountOutOfRange)

	v, err = Distribute(db, k, distribution.ImpactGroups)
	require.NoError(t, err)
	assert.Equal(t, string(distribution.ImpactGroups), v.DistributionMethod)

	total := decimal.Zero
	for _, a := range v.Allocations {
		if a.Impact == 0 {
			assert.Nil(t, a.Allocation)
			continue
		}

		require.NotNil(t, a.Allocation)
		total = total.Add(*a.Allocation)
	}

	assert.InDelta(t, 100, total.InexactFloat64(), 0.01)

	var ballots int64
	require.NoError(t, db.Model(&models.Ballot{}).Count(&ballots).Error)
	assert.Equal(t, int64(1), ballots)
}

func TestSubmit(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.Seed(t, db, models.Citizen{Namespace: "optimism", Address: "0x00000000000000000000000000000000000000b1"})

	full := []Vote{{ProjectID: "p1", Amount: 60}, {ProjectID: "p2", Amount: 40}}

	tests := []struct {
		name      string
		round     string
		address   string
		signature string
		votes     []Vote
		wantErr   error
	}{
		{name: "closed round", round: "4", address: badgeholder, signature: "0xab", votes: full, wantErr: ErrRoundClosed},
		{name: "closed round 5", round: "5", address: badgeholder, signature: "0xab", votes: full, wantErr: ErrRoundClosed},
		{name: "bad signature", round: "6", address: badgeholder, signature: "signed", votes: full, wantErr: ErrInvalidSignature},
		{name: "not a badgeholder", round: "6", address: "0x01", signature: "0xab", votes: full, wantErr: ErrBadgeholderNotFound},
		{name: "total below 100", round: "6", address: badgeholder, signature: "0xab", votes: full[:1], wantErr: ErrTotalNot100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Submit(db, Key{Namespace: "optimism", Round: tt.round, Address: tt.address}, tt.signature, tt.votes)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	v, err := Submit(db, Key{Namespace: "optimism", Round: "6", Address: badgeholder}, "0xabcdef", full)
	require.NoError(t, err)
	assert.Equal(t, models.BallotSubmitted, v.Status)
	assert.Equal(t, "0xabcdef", v.Signature)
	assert.JSONEq(t, `[{"projectId":"p1","amount":60},{"projectId":"p2","amount":40}]`, v.Payload)
	assert.NotNil(t, v.SubmittedAt)
}

func TestCheckAmountsMetricsRound(t *testing.T) {
	require.NoError(t, checkAmounts("4", []Vote{{ProjectID: "m1", Amount: 0}, {ProjectID: "m2", Amount: 100}}))
	require.ErrorIs(t, checkAmounts("4", []Vote{{ProjectID: "m1", Amount: 100.5}}), ErrAmountOutOfRange)
	require.ErrorIs(t, checkAmounts("4", []Vote{{ProjectID: "m1", Amount: -1}}), ErrAmountOutOfRange)
	require.NoError(t, checkAmounts("7", []Vote{{ProjectID: "p1", Amount: 1}}))
}

func TestReposition(t *testing.T) {
	tests := []struct {
		name       string
		rank       int
		impact     int
		above      *Neighbour
		below      *Neighbour
		wantRank   int
		wantImpact int
	}{
		{name: "between", rank: 10, impact: 4, above: &Neighbour{Rank: 500, Impact: 5}, below: &Neighbour{Rank: 300, Impact: 3}, wantRank: 400, wantImpact: 4},
		{name: "clamped down", rank: 10, impact: 5, above: &Neighbour{Rank: 400, Impact: 3}, below: &Neighbour{Rank: 300, Impact: 2}, wantRank: 350, wantImpact: 3},
		{name: "top", rank: 10, impact: 1, below: &Neighbour{Rank: 300, Impact: 3}, wantRank: 1300, wantImpact: 3},
		{name: "bottom", rank: 10, impact: 5, above: &Neighbour{Rank: 300, Impact: 3}, wantRank: 214, wantImpact: 3},
		{name: "alone", rank: 42, impact: 0, wantRank: 42, wantImpact: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank, impact := Reposition(tt.rank, tt.impact, tt.above, tt.below)
			assert.Equal(t, tt.wantRank, rank)
			assert.Equal(t, tt.wantImpact, impact)
		})
	}
}

func TestSetPosition(t *testing.T) {
	db := dbtest.Open(t)
	k := Key{Namespace: "optimism", Round: "6", Address: badgeholder}

	for id, impact := range map[string]int{"p1": 5, "p2": 3, "p3": 1} {
		_, err := SetImpact(db, k, id, impact)
		require.NoError(t, err)
	}

	order := func(v *View) []string {
		ids := make([]string, len(v.Allocations))
		for i, a := range v.Allocations {
			ids[i] = a.ProjectID
		}

		return ids
	}

	tests := []struct {
		name       string
		project    string
		position   int
		wantOrder  []string
		wantRank   int
		wantImpact int
	}{
		{name: "to the top", project: "p3", position: 0, wantOrder: []string{"p3", "p1", "p2"}, wantRank: 501000, wantImpact: 5},
		{name: "past the end", project: "p1", position: 99, wantOrder: []string{"p3", "p2", "p1"}, wantRank: 214286, wantImpact: 3},
		{name: "between", project: "p1", position: 1, wantOrder: []string{"p3", "p1", "p2"}, wantRank: 400500, wantImpact: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := SetPosition(db, k, tt.project, tt.position)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrder, order(v))

			i := slices.Index(order(v), tt.project)
			assert.Equal(t, tt.wantRank, v.Allocations[i].Rank)
			assert.Equal(t, tt.wantImpact, v.Allocations[i].Impact)
		})
	}

	_, err := SetPosition(db, k, "p9", 0)
	require.ErrorIs(t, err, ErrAllocationNotFound)

	_, err = SetPosition(db, k, "p1", -1)
	require.ErrorIs(t, err, ErrInvalidPosition)
}
