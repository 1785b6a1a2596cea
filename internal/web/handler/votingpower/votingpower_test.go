package votingpower_test

import (
	"math/big"
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAgora/go-agora/internal/db/dbtest"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/tenant"
	"github.com/GoAgora/go-agora/internal/web/handler/handlertest"
	"github.com/GoAgora/go-agora/internal/web/handler/votingpower"
)

const alice = "0x00000000000000000000000000000000000a11ce"

func ether(n int64) decimal.Decimal {
	return decimal.NewFromInt(n).Shift(18)
}

func TestIndexed(t *testing.T) {
	a := handlertest.New(t, &votingpower.Service{})

	dbtest.Seed(t, a.Env.DB,
		models.VotingPowerSnapshot{Namespace: tenant.Optimism, Delegate: alice, BlockNumber: 10, VotingPower: ether(5)},
		models.VotingPowerSnapshot{Namespace: tenant.Optimism, Delegate: alice, BlockNumber: 20, VotingPower: ether(7).Add(decimal.New(5, 17))},
	)

	tests := []struct {
		name      string
		query     string
		status    int
		total     string
		formatted string
	}{
		{name: "latest", status: http.StatusOK, total: ether(7).Add(decimal.New(5, 17)).String(), formatted: "7.50"},
		{name: "at block", query: "?block=15", status: http.StatusOK, total: ether(5).String(), formatted: "5"},
		{name: "before first snapshot", query: "?block=5", status: http.StatusOK, total: "0", formatted: "0"},
		{name: "negative block", query: "?block=-1", status: http.StatusBadRequest},
		{name: "garbage block", query: "?block=abc", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := a.Get("/voting-power/" + alice + tt.query)
			require.Equal(t, tt.status, status, string(body))

			if status != http.StatusOK {
				return
			}

			got := handlertest.Decode[votingpower.PowerView](t, body)
			assert.Equal(t, alice, got.Address)
			assert.Equal(t, tt.total, got.Total.String())
			assert.True(t, got.Advanced.IsZero())
			assert.Equal(t, tt.formatted, got.Formatted)
		})
	}
}

func TestOnchain(t *testing.T) {
	a := handlertest.New(t, &votingpower.Service{})

	account := common.HexToAddress(alice)
	a.OP.Votes[account] = big.NewInt(40)
	a.OP.SetBalance(common.HexToAddress("0x4200000000000000000000000000000000000042"), account, 90)

	status, body := a.Get("/voting-power/" + alice + "/onchain")
	require.Equal(t, http.StatusOK, status, string(body))

	got := handlertest.Decode[votingpower.PowerView](t, body)
	assert.Equal(t, "90", got.Total.String(), "balance exceeds delegated votes")

	t.Run("unreachable chain reads zero", func(t *testing.T) {
		status, body := a.Do(handlertest.Request{Path: "/voting-power/" + alice + "/onchain", Tenant: tenant.Cyber})
		require.Equal(t, http.StatusOK, status, string(body))
		assert.True(t, handlertest.Decode[votingpower.PowerView](t, body).Total.IsZero())
	})
}

func TestVotableSupply(t *testing.T) {
	a := handlertest.New(t, &votingpower.Service{})

	status, _ := a.Get("/votable-supply")
	assert.Equal(t, http.StatusNotFound, status)

	dbtest.Seed(t, a.Env.DB, models.VotableSupply{Namespace: tenant.Optimism, BlockNumber: 99, Amount: ether(1000)})

	status, body := a.Get("/votable-supply")
	require.Equal(t, http.StatusOK, status, string(body))

	got := handlertest.Decode[votingpower.SupplyView](t, body)
	assert.EqualValues(t, 99, got.BlockNumber)
	assert.Equal(t, "1000", got.Formatted)
}
