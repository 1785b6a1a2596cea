package proposal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAgora/go-agora/internal/db/dbtest"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/pagination"
)

func seedProposals(t *testing.T) []models.Proposal {
	t.Helper()

	cancelled := int64(90)

	rows := []models.Proposal{
		{Namespace: "optimism", ProposalID: "1", Ordinal: 1, ProposalType: "STANDARD"},
		{Namespace: "optimism", ProposalID: "2", Ordinal: 2, ProposalType: "APPROVAL", CancelledBlock: &cancelled},
		{Namespace: "optimism", ProposalID: "3", Ordinal: 3, ProposalType: "OFFCHAIN_STANDARD"},
		{Namespace: "optimism", ProposalID: "4", Ordinal: 4, ProposalType: "SNAPSHOT"},
		{Namespace: "optimism", ProposalID: "5", Ordinal: 5, ProposalType: "OFFCHAIN_OPTIMISTIC"},
		{Namespace: "ens", ProposalID: "1", Ordinal: 1, ProposalType: "STANDARD"},
	}

	return rows
}

func ids(ps []models.Proposal) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ProposalID
	}

	return out
}

func TestList(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.Seed(t, db, seedProposals(t)...)

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{name: "relevant hides cancelled and snapshot", opts: ListOptions{Filter: FilterRelevant}, want: []string{"5", "3", "1"}},
		{name: "everything", opts: ListOptions{Filter: FilterEverything}, want: []string{"5", "3", "2", "1"}},
		{name: "with snapshot", opts: ListOptions{Filter: FilterEverything, IncludeSnapshot: true}, want: []string{"5", "4", "3", "2", "1"}},
		{name: "offchain", opts: ListOptions{Filter: FilterRelevant, Type: "offchain"}, want: []string{"5", "3"}},
		{name: "single type", opts: ListOptions{Filter: FilterEverything, Type: "APPROVAL"}, want: []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := List(db, "optimism", tt.opts, pagination.New(10, 0))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res.Data))
			assert.False(t, res.Meta.HasNext)
		})
	}
}

func TestListPaging(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.Seed(t, db, seedProposals(t)...)

	res, err := List(db, "optimism", ListOptions{Filter: FilterEverything}, pagination.New(2, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "3"}, ids(res.Data))
	assert.Equal(t, pagination.Meta{HasNext: true, TotalReturned: 2, NextOffset: 2}, res.Meta)

	res, err = List(db, "optimism", ListOptions{Filter: FilterEverything}, pagination.New(2, 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, ids(res.Data))
	assert.False(t, res.Meta.HasNext)
}

func TestListErrors(t *testing.T) {
	_, err := List(nil, "optimism", ListOptions{}, pagination.New(1, 0))
	require.ErrorIs(t, err, ErrDBNil)

	_, err = List(dbtest.Open(t), "optimism", ListOptions{Type: "BOGUS"}, pagination.New(1, 0))
	require.ErrorIs(t, err, ErrInvalidType)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterRelevant, f)

	f, err = ParseFilter("Everything")
	require.NoError(t, err)
	assert.Equal(t, FilterEverything, f)

	_, err = ParseFilter("mine")
	require.ErrorIs(t, err, ErrInvalidFilter)
}

func TestGetCountRecent(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.Seed(t, db, seedProposals(t)...)

	p, err := Get(db, "ens", "1")
	require.NoError(t, err)
	assert.Equal(t, "ens", p.Namespace)

	_, err = Get(db, "ens", "2")
	require.ErrorIs(t, err, ErrProposalNotFound)

	n, err := Count(db, "optimism")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	recent, err := Recent(db, "optimism", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "4"}, recent)
}
