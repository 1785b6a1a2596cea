package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAgora/go-agora/internal/db/dbtest"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/pagination"
)

func TestListAndGet(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.Seed(t, db,
		models.Project{Namespace: "optimism", ProjectID: "p1", Round: "5", Name: "Beta", Category: "ETHEREUM_CORE_CONTRIBUTIONS"},
		models.Project{Namespace: "optimism", ProjectID: "p2", Round: "5", Name: "Alpha", Category: "OP_STACK_TOOLING"},
		models.Project{Namespace: "optimism", ProjectID: "p3", Round: "6", Name: "Gamma", Category: "GOVERNANCE_INFRA_AND_TOOLING"},
		models.Project{Namespace: "ens", ProjectID: "p4", Round: "5", Name: "Delta"},
	)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "all", filter: Filter{}, want: []string{"p2", "p1", "p3"}},
		{name: "round", filter: Filter{Round: "5"}, want: []string{"p2", "p1"}},
		{name: "category", filter: Filter{Round: "5", Category: "OP_STACK_TOOLING"}, want: []string{"p2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := List(db, "optimism", tt.filter, pagination.New(10, 0))
			require.NoError(t, err)

			got := []string{}
			for _, p := range res.Data {
				got = append(got, p.ProjectID)
			}

			assert.Equal(t, tt.want, got)
		})
	}

	p, err := Get(db, "optimism", "p3")
	require.NoError(t, err)
	assert.Equal(t, "Gamma", p.Name)

	_, err = Get(db, "optimism", "p4")
	require.ErrorIs(t, err, ErrProjectNotFound)

	round, err := InRound(db, "optimism", "6")
	require.NoError(t, err)
	assert.Len(t, round, 1)
}
