package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/GoAgora/go-agora/internal/metrics"
)

// backend is the part of ethclient.Client the reader uses.
type backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

type ethReader struct {
	backend backend
	chainID int64
	name    string
	timeout time.Duration
	metrics *metrics.Metrics
}

var _ Reader = (*ethReader)(nil)

func (r *ethReader) ChainID() int64 { return r.chainID }

func (r *ethReader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, r.timeout)
}

func (r *ethReader) LatestBlock(ctx context.Context) (Block, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	h, err := r.backend.HeaderByNumber(ctx, nil)
	r.metrics.ObserveRPC(r.name, "eth_getBlockByNumber", err)

	if err != nil {
		return Block{}, fmt.Errorf("latest block on %s: %w", r.name, err)
	}

	return Block{
		Number: h.Number.Int64(),
		Time:   time.Unix(int64(h.Time), 0).UTC(), //nolint:gosec // block timestamps fit into int64
	}, nil
}

func (r *ethReader) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	code, err := r.backend.CodeAt(ctx, account, nil)
	r.metrics.ObserveRPC(r.name, "eth_getCode", err)

	if err != nil {
		return nil, fmt.Errorf("code at %s: %w", account.Hex(), err)
	}

	return code, nil
}

func (r *ethReader) TokenVotes(ctx context.Context, token, account common.Address, block *big.Int) (*big.Int, error) {
	return r.callUint(ctx, "getVotes", token, block, account)
}

func (r *ethReader) TokenBalance(ctx context.Context, token, account common.Address, block *big.Int) (*big.Int, error) {
	return r.callUint(ctx, "balanceOf", token, block, account)
}

func (r *ethReader) TotalSupply(ctx context.Context, token common.Address, block *big.Int) (*big.Int, error) {
	return r.callUint(ctx, "totalSupply", token, block)
}

func (r *ethReader) Quorum(ctx context.Context, governor common.Address, timepoint *big.Int) (*big.Int, error) {
	return r.callUint(ctx, "quorum", governor, nil, timepoint)
}

func (r *ethReader) IsValidSignature(ctx context.Context, account common.Address, hash common.Hash, sig []byte) (bool, error) {
	out, err := r.call(ctx, "isValidSignature", account, nil, hash, sig)
	if err != nil {
		return false, err
	}

	magic, ok := out[0].([4]byte)
	if !ok {
		return false, fmt.Errorf("isValidSignature: unexpected result %T", out[0])
	}

	return magic == EIP1271MagicValue, nil
}

func (r *ethReader) ResolveENS(ctx context.Context, name string) (common.Address, error) {
	node := NameHash(name)

	out, err := r.call(ctx, "resolver", ensRegistry, nil, node)
	if err != nil {
		return common.Address{}, err
	}

	resolver, _ := out[0].(common.Address)
	if resolver == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrENSNotFound, name)
	}

	out, err = r.call(ctx, "addr", resolver, nil, node)
	if err != nil {
		return common.Address{}, err
	}

	addr, _ := out[0].(common.Address)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrENSNotFound, name)
	}

	return addr, nil
}

func (r *ethReader) callUint(ctx context.Context, method string, to common.Address, block *big.Int, args ...any) (*big.Int, error) {
	out, err := r.call(ctx, method, to, block, args...)
	if err != nil {
		return nil, err
	}

	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result %T", method, out[0])
	}

	return v, nil
}

func (r *ethReader) call(ctx context.Context, method string, to common.Address, block *big.Int, args ...any) ([]any, error) {
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	raw, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, block)
	r.metrics.ObserveRPC(r.name, method, err)

	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", method, to.Hex(), err)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%s on %s: %w", method, to.Hex(), ErrNoContract)
	}

	out, err := parsedABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty result", method)
	}

	return out, nil
}
