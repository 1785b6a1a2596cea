package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/GoAgora/go-agora/internal/tenant"
)

// OnchainVotingPower reads the live voting power of account: the larger of its
// delegated votes and its token balance. With bridged token deployments the
// balance is summed over every chain. Failing calls count as zero.
func OnchainVotingPower(ctx context.Context, src Source, t *tenant.Tenant, account common.Address) *big.Int {
	token := common.HexToAddress(t.Contracts.Token)

	votes := new(big.Int)
	balance := new(big.Int)

	r, err := src.Reader(ctx, t.Chain.ID)
	if err != nil {
		log.Warn().Err(err).Str("tenant", t.Namespace).Msg("no reader for tenant chain")
	} else {
		if v, err := r.TokenVotes(ctx, token, account, nil); err == nil {
			votes = v
		} else {
			log.Debug().Err(err).Str("account", account.Hex()).Msg("getVotes failed")
		}
	}

	switch {
	case len(t.Contracts.TokenDeployments) > 1:
		for _, d := range t.Contracts.TokenDeployments {
			dr, err := src.Reader(ctx, d.ChainID)
			if err != nil {
				log.Warn().Err(err).Int64("chain", d.ChainID).Msg("no reader for token deployment")
				continue
			}

			b, err := dr.TokenBalance(ctx, common.HexToAddress(d.Address), account, nil)
			if err != nil {
				log.Debug().Err(err).Int64("chain", d.ChainID).Msg("balanceOf failed")
				continue
			}

			balance.Add(balance, b)
		}
	case r != nil:
		if b, err := r.TokenBalance(ctx, token, account, nil); err == nil {
			balance = b
		} else {
			log.Debug().Err(err).Str("account", account.Hex()).Msg("balanceOf failed")
		}
	}

	if votes.Cmp(balance) >= 0 {
		return votes
	}

	return balance
}
