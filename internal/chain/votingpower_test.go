package chain_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAgora/go-agora/internal/chain"
	"github.com/GoAgora/go-agora/internal/chain/chaintest"
	"github.com/GoAgora/go-agora/internal/tenant"
)

var (
	token   = common.HexToAddress("0x4200000000000000000000000000000000000042")
	bridged = common.HexToAddress("0x5555555555555555555555555555555555555555")
	account = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

func TestOnchainVotingPower(t *testing.T) {
	single := &tenant.Tenant{
		Namespace: "test",
		Chain:     tenant.Chain{ID: 10},
		Contracts: tenant.Contracts{Token: token.Hex()},
	}

	multi := &tenant.Tenant{
		Namespace: "multi",
		Chain:     tenant.Chain{ID: 10},
		Contracts: tenant.Contracts{
			Token: token.Hex(),
			TokenDeployments: []tenant.Deployment{
				{ChainID: 10, Address: token.Hex()},
				{ChainID: 8453, Address: bridged.Hex()},
			},
		},
	}

	tests := []struct {
		name   string
		tenant *tenant.Tenant
		setup  func(op, base *chaintest.Reader)
		want   int64
	}{
		{
			name:   "votes above balance",
			tenant: single,
			setup: func(op, _ *chaintest.Reader) {
				op.Votes[account] = big.NewInt(100)
				op.SetBalance(token, account, 40)
			},
			want: 100,
		},
		{
			name:   "balance above votes",
			tenant: single,
			setup: func(op, _ *chaintest.Reader) {
				op.Votes[account] = big.NewInt(10)
				op.SetBalance(token, account, 40)
			},
			want: 40,
		},
		{
			name:   "failed getVotes counts as zero",
			tenant: single,
			setup: func(op, _ *chaintest.Reader) {
				op.SetBalance(token, account, 40)
			},
			want: 40,
		},
		{
			name:   "balances summed across deployments",
			tenant: multi,
			setup: func(op, base *chaintest.Reader) {
				op.Votes[account] = big.NewInt(50)
				op.SetBalance(token, account, 30)
				base.SetBalance(bridged, account, 25)
			},
			want: 55,
		},
		{
			name:   "unreachable deployment is skipped",
			tenant: multi,
			setup: func(op, base *chaintest.Reader) {
				op.SetBalance(token, account, 30)
				base.Err = errors.New("down")
			},
			want: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, base := chaintest.New(10), chaintest.New(8453)
			tt.setup(op, base)

			got := chain.OnchainVotingPower(context.Background(), chaintest.Source{10: op, 8453: base}, tt.tenant, account)
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestOnchainVotingPowerNoReader(t *testing.T) {
	tn := &tenant.Tenant{Chain: tenant.Chain{ID: 999}, Contracts: tenant.Contracts{Token: token.Hex()}}

	got := chain.OnchainVotingPower(context.Background(), chaintest.Source{}, tn, account)
	assert.Zero(t, got.Sign())
}

func TestAddressOrENS(t *testing.T) {
	mainnet := chaintest.New(chain.MainnetID)
	mainnet.Names["vitalik.eth"] = common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	src := chaintest.Source{chain.MainnetID: mainnet}

	got, err := chain.AddressOrENS(context.Background(), src, "0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045")
	require.NoError(t, err)
	assert.Equal(t, "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", got)
	assert.Zero(t, mainnet.Calls)

	got, err = chain.AddressOrENS(context.Background(), src, "Vitalik.eth")
	require.NoError(t, err)
	assert.Equal(t, "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", got)

	_, err = chain.AddressOrENS(context.Background(), src, "nobody.eth")
	require.ErrorIs(t, err, chain.ErrENSNotFound)

	_, err = chain.AddressOrENS(context.Background(), src, "not-an-address")
	require.ErrorIs(t, err, chain.ErrInvalidAddress)
}
