// Package tenant resolves which DAO a request is served for.
//
// A tenant bundles the chain, the contracts and the feature toggles of one DAO.
// The built-in tenants are overlaid with the [Tenants] configuration, toggles
// can additionally be overridden at runtime through the settings table.
package tenant

import (
	"errors"
	"maps"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/governance/proposal"
)

// ErrUnknownTenant is returned for a namespace that is not configured.
var ErrUnknownTenant = errors.New("unknown tenant")

// DelegationModel tells whether voting power can be split between delegates.
type DelegationModel string

// Delegation models.
const (
	DelegationFull    DelegationModel = "FULL"
	DelegationPartial DelegationModel = "PARTIAL"
)

// Chain is the chain the governor lives on.
type Chain struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	RPCURL    string        `json:"-"`
	BlockTime time.Duration `json:"-"`
}

// Token describes the governance token.
type Token struct {
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

// Deployment is the governance token on another chain.
type Deployment struct {
	ChainID int64  `json:"chainId"`
	Address string `json:"address"`
}

// Contracts are the contract addresses of a tenant. Empty means not deployed.
type Contracts struct {
	Token          string `json:"token"`
	Governor       string `json:"governor,omitempty"`
	Timelock       string `json:"timelock,omitempty"`
	Staker         string `json:"staker,omitempty"`
	ApprovalModule string `json:"approvalModule,omitempty"`
	ProposalTypes  string `json:"proposalTypes,omitempty"`
	// TokenDeployments are bridged copies of the token whose balances count as voting power.
	TokenDeployments []Deployment `json:"tokenDeployments,omitempty"`
	// GovernorV6UpgradeBlock is the block the approval tally layout changed at.
	GovernorV6UpgradeBlock int64 `json:"-"`
}

// Tenant is the configuration of one DAO.
type Tenant struct {
	Namespace       string                  `json:"namespace"`
	Slug            string                  `json:"slug"`
	Title           string                  `json:"title"`
	Hosts           []string                `json:"-"`
	Chain           Chain                   `json:"chain"`
	Token           Token                   `json:"token"`
	Contracts       Contracts               `json:"contracts"`
	DelegationModel DelegationModel         `json:"delegationModel"`
	QuorumCounting  proposal.QuorumCounting `json:"-"`
	Toggles         map[string]bool         `json:"toggles"`
}

// Toggle returns whether the feature name is enabled. Unknown toggles are disabled.
func (t *Tenant) Toggle(name string) bool {
	return t.Toggles[name]
}

// HasGovernor reports whether the tenant votes on chain.
func (t *Tenant) HasGovernor() bool {
	return t.Contracts.Governor != ""
}

// Clone returns a copy whose toggles can be changed independently.
func (t *Tenant) Clone() *Tenant {
	c := *t
	c.Hosts = append([]string(nil), t.Hosts...)
	c.Toggles = maps.Clone(t.Toggles)
	c.Contracts.TokenDeployments = append([]Deployment(nil), t.Contracts.TokenDeployments...)

	if c.Toggles == nil {
		c.Toggles = map[string]bool{}
	}

	return &c
}

// WithToggles returns a copy with overrides applied.
func (t *Tenant) WithToggles(overrides map[string]bool) *Tenant {
	c := t.Clone()
	maps.Copy(c.Toggles, overrides)

	return c
}

// Scope restricts a query to the tenant.
func (t *Tenant) Scope(db *gorm.DB) *gorm.DB {
	return Scope(t.Namespace)(db)
}

// Scope returns a gorm scope restricting a query to namespace.
func Scope(namespace string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("namespace = ?", namespace)
	}
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}

	return strings.TrimSuffix(host, ".")
}
