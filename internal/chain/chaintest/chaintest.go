// Package chaintest provides an in-memory chain.Reader for tests.
package chaintest

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/GoAgora/go-agora/internal/chain"
)

// Reader is a programmable chain.Reader. Missing entries read as errors.
type Reader struct {
	mu sync.Mutex

	ID     int64
	Head   chain.Block
	Votes  map[common.Address]*big.Int
	Supply *big.Int
	// Balances are keyed by token then account.
	Balances map[common.Address]map[common.Address]*big.Int
	QuorumAt *big.Int
	Code     map[common.Address][]byte
	// Signers accept any signature over the listed hashes.
	Signers map[common.Address]map[common.Hash]bool
	Names   map[string]common.Address
	Err     error
	Calls   int
}

var _ chain.Reader = (*Reader)(nil)

// New returns an empty reader for chainID.
func New(chainID int64) *Reader {
	return &Reader{
		ID:       chainID,
		Votes:    map[common.Address]*big.Int{},
		Balances: map[common.Address]map[common.Address]*big.Int{},
		Code:     map[common.Address][]byte{},
		Signers:  map[common.Address]map[common.Hash]bool{},
		Names:    map[string]common.Address{},
	}
}

// SetBalance records the balance of account in token.
func (r *Reader) SetBalance(token, account common.Address, v int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Balances[token] == nil {
		r.Balances[token] = map[common.Address]*big.Int{}
	}

	r.Balances[token][account] = big.NewInt(v)
}

func (r *Reader) touch() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Calls++

	return r.Err
}

func (r *Reader) ChainID() int64 { return r.ID }

func (r *Reader) LatestBlock(context.Context) (chain.Block, error) {
	if err := r.touch(); err != nil {
		return chain.Block{}, err
	}

	return r.Head, nil
}

func (r *Reader) TokenVotes(_ context.Context, _, account common.Address, _ *big.Int) (*big.Int, error) {
	if err := r.touch(); err != nil {
		return nil, err
	}

	v, ok := r.Votes[account]
	if !ok {
		return nil, fmt.Errorf("getVotes: %w", chain.ErrNoContract)
	}

	return new(big.Int).Set(v), nil
}

func (r *Reader) TokenBalance(_ context.Context, token, account common.Address, _ *big.Int) (*big.Int, error) {
	if err := r.touch(); err != nil {
		return nil, err
	}

	v, ok := r.Balances[token][account]
	if !ok {
		return big.NewInt(0), nil
	}

	return new(big.Int).Set(v), nil
}

func (r *Reader) TotalSupply(context.Context, common.Address, *big.Int) (*big.Int, error) {
	if err := r.touch(); err != nil {
		return nil, err
	}

	if r.Supply == nil {
		return nil, fmt.Errorf("totalSupply: %w", chain.ErrNoContract)
	}

	return new(big.Int).Set(r.Supply), nil
}

func (r *Reader) Quorum(context.Context, common.Address, *big.Int) (*big.Int, error) {
	if err := r.touch(); err != nil {
		return nil, err
	}

	if r.QuorumAt == nil {
		return nil, fmt.Errorf("quorum: %w", chain.ErrNoContract)
	}

	return new(big.Int).Set(r.QuorumAt), nil
}

func (r *Reader) CodeAt(_ context.Context, account common.Address) ([]byte, error) {
	if err := r.touch(); err != nil {
		return nil, err
	}

	return r.Code[account], nil
}

func (r *Reader) IsValidSignature(_ context.Context, account common.Address, hash common.Hash, _ []byte) (bool, error) {
	if err := r.touch(); err != nil {
		return false, err
	}

	if len(r.Code[account]) == 0 {
		return false, fmt.Errorf("isValidSignature: %w", chain.ErrNoContract)
	}

	return r.Signers[account][hash], nil
}

func (r *Reader) ResolveENS(_ context.Context, name string) (common.Address, error) {
	if err := r.touch(); err != nil {
		return common.Address{}, err
	}

	addr, ok := r.Names[strings.ToLower(name)]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s", chain.ErrENSNotFound, name)
	}

	return addr, nil
}

// Source serves Readers by chain id.
type Source map[int64]*Reader

var _ chain.Source = Source(nil)

// Reader implements chain.Source.
func (s Source) Reader(_ context.Context, chainID int64) (chain.Reader, error) {
	r, ok := s[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", chain.ErrUnknownChain, chainID)
	}

	return r, nil
}
