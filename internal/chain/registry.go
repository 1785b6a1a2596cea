package chain

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"

	"github.com/GoAgora/go-agora/internal/config"
	"github.com/GoAgora/go-agora/internal/metrics"
	"github.com/GoAgora/go-agora/internal/tenant"
)

type endpoint struct {
	name string
	url  string
}

type dialFunc func(ctx context.Context, url string) (backend, func(), error)

// Registry keeps one rpc client per chain id. Clients are dialed on first use.
type Registry struct {
	mu        sync.Mutex
	endpoints map[int64]endpoint
	readers   map[int64]*ethReader
	closers   []func()
	timeout   time.Duration
	metrics   *metrics.Metrics
	dial      dialFunc
}

var _ Source = (*Registry)(nil)

// NewRegistry collects the endpoints of all tenants plus the [Chain.RPC] entries.
func NewRegistry(tenants []*tenant.Tenant, cfg config.Chain, m *metrics.Metrics) *Registry {
	r := &Registry{
		endpoints: map[int64]endpoint{},
		readers:   map[int64]*ethReader{},
		timeout:   cfg.Timeout,
		metrics:   m,
		dial:      dialEthclient,
	}

	for _, t := range tenants {
		if t.Chain.RPCURL == "" {
			continue
		}

		r.endpoints[t.Chain.ID] = endpoint{name: t.Chain.Name, url: t.Chain.RPCURL}
	}

	for id, url := range cfg.RPC {
		chainID, err := strconv.ParseInt(id, 10, 64)
		if err != nil || url == "" {
			log.Warn().Str("chain", id).Msg("ignoring rpc endpoint with invalid chain id")
			continue
		}

		name := id
		if e, ok := r.endpoints[chainID]; ok {
			name = e.name
		}

		r.endpoints[chainID] = endpoint{name: name, url: url}
	}

	return r
}

func dialEthclient(ctx context.Context, url string) (backend, func(), error) {
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	return c, c.Close, nil
}

// Reader returns the reader of chainID.
func (r *Registry) Reader(ctx context.Context, chainID int64) (Reader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rd, ok := r.readers[chainID]; ok {
		return rd, nil
	}

	e, ok := r.endpoints[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChain, chainID)
	}

	b, closer, err := r.dial(ctx, e.url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", e.name, err)
	}

	rd := &ethReader{
		backend: b,
		chainID: chainID,
		name:    e.name,
		timeout: r.timeout,
		metrics: r.metrics,
	}

	r.readers[chainID] = rd
	r.closers = append(r.closers, closer)

	log.Debug().Str("chain", e.name).Int64("id", chainID).Msg("rpc client connected")

	return rd, nil
}

// For returns the reader of the chain t's governor lives on.
func (r *Registry) For(ctx context.Context, t *tenant.Tenant) (Reader, error) {
	return r.Reader(ctx, t.Chain.ID)
}

// Close closes all dialed clients.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.closers {
		c()
	}

	r.closers = nil
	r.readers = map[int64]*ethReader{}
}
