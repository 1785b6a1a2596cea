// Package chain reads governance state from EVM chains.
package chain

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidAddress is returned for input that is neither a hex address nor an ENS name.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrENSNotFound is returned when an ENS name has no resolver or no address.
	ErrENSNotFound = errors.New("ens name not found")
	// ErrUnknownChain is returned for a chain without a configured RPC endpoint.
	ErrUnknownChain = errors.New("no rpc endpoint for chain")
	// ErrNoContract is returned when a call hits an address without code.
	ErrNoContract = errors.New("no contract code at address")
)

// EIP1271MagicValue is returned by isValidSignature for a valid contract signature.
var EIP1271MagicValue = [4]byte{0x16, 0x26, 0xba, 0x7e}

// Block is a chain head.
type Block struct {
	Number int64
	Time   time.Time
}

// Reader is the read-only view of one chain.
// A nil block reads the latest state.
type Reader interface {
	ChainID() int64
	LatestBlock(ctx context.Context) (Block, error)
	TokenVotes(ctx context.Context, token, account common.Address, block *big.Int) (*big.Int, error)
	TokenBalance(ctx context.Context, token, account common.Address, block *big.Int) (*big.Int, error)
	TotalSupply(ctx context.Context, token common.Address, block *big.Int) (*big.Int, error)
	Quorum(ctx context.Context, governor common.Address, timepoint *big.Int) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address) ([]byte, error)
	IsValidSignature(ctx context.Context, account common.Address, hash common.Hash, sig []byte) (bool, error)
	ResolveENS(ctx context.Context, name string) (common.Address, error)
}

// Source hands out readers by chain id.
type Source interface {
	Reader(ctx context.Context, chainID int64) (Reader, error)
}

// MainnetID is the chain ENS lives on.
const MainnetID = 1
