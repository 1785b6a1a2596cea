package tenant

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/GoAgora/go-agora/internal/config"
)

// Registry holds the configured tenants.
type Registry struct {
	tenants map[string]*Tenant
	hosts   map[string]string
	def     string
}

// NewRegistry overlays the built-in tenants with cfg.
// RPC endpoints ending in an alchemy path get the alchemy id appended.
func NewRegistry(cfg config.Tenants, chain config.Chain) (*Registry, error) {
	r := &Registry{
		tenants: map[string]*Tenant{},
		hosts:   map[string]string{},
		def:     cfg.Default,
	}

	for _, t := range builtins() {
		r.tenants[t.Namespace] = t
	}

	for ns, o := range cfg.Overrides {
		t, ok := r.tenants[ns]
		if !ok {
			return nil, fmt.Errorf("%w: override for %q", ErrUnknownTenant, ns)
		}

		t.Hosts = append(t.Hosts, o.Hosts...)

		if o.RPCURL != "" {
			t.Chain.RPCURL = o.RPCURL
		}

		for name, enabled := range o.Toggles {
			t.Toggles[name] = enabled
		}
	}

	for _, t := range r.tenants {
		if url, ok := chain.RPC[strconv.FormatInt(t.Chain.ID, 10)]; ok && url != "" {
			t.Chain.RPCURL = url
		}

		if strings.HasSuffix(t.Chain.RPCURL, "/v2/") {
			t.Chain.RPCURL += chain.AlchemyID
		}

		for _, h := range t.Hosts {
			host := normalizeHost(h)
			if other, dup := r.hosts[host]; dup && other != t.Namespace {
				return nil, fmt.Errorf("host %q is configured for %s and %s", host, other, t.Namespace)
			}

			r.hosts[host] = t.Namespace
		}
	}

	if r.def == "" {
		r.def = Optimism
	}

	if _, ok := r.tenants[r.def]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownTenant, r.def)
	}

	return r, nil
}

// Get returns the tenant of namespace.
func (r *Registry) Get(namespace string) (*Tenant, error) {
	t, ok := r.tenants[strings.ToLower(namespace)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTenant, namespace)
	}

	return t, nil
}

// Default returns the tenant used for unknown hosts.
func (r *Registry) Default() *Tenant {
	return r.tenants[r.def]
}

// Resolve maps a request host to its tenant, falling back to the default tenant.
func (r *Registry) Resolve(host string) *Tenant {
	if ns, ok := r.hosts[normalizeHost(host)]; ok {
		return r.tenants[ns]
	}

	return r.Default()
}

// All returns every tenant ordered by namespace.
func (r *Registry) All() []*Tenant {
	out := make([]*Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Namespace < out[j].Namespace
	})

	return out
}
