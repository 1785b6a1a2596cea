// Package delegate provides read access to delegates and their delegations.
package delegate

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/pagination"
	"github.com/GoAgora/go-agora/internal/tenant"
)

// Sort orders the delegate list.
type Sort string

// Delegate sort orders.
const (
	SortMostVotingPower  Sort = "most_voting_power"
	SortLeastVotingPower Sort = "least_voting_power"
	SortMostDelegators   Sort = "most_delegators"
	SortWeightedRandom   Sort = "weighted_random"
)

var (
	// ErrDelegateNotFound is returned when the address is not a delegate of the tenant.
	ErrDelegateNotFound = errors.New("delegate not found")
	// ErrInvalidSort is returned for an unknown sort order.
	ErrInvalidSort = errors.New("invalid sort order")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// ParseSort parses a sort order, defaulting to SortWeightedRandom.
func ParseSort(s string) (Sort, error) {
	switch v := Sort(strings.ToLower(s)); v {
	case "":
		return SortWeightedRandom, nil
	case SortMostVotingPower, SortLeastVotingPower, SortMostDelegators, SortWeightedRandom:
		return v, nil
	default:
		return "", ErrInvalidSort
	}
}

// List returns one page of delegates of namespace. seed makes SortWeightedRandom repeatable.
func List(db *gorm.DB, namespace string, s Sort, seed uint64, p pagination.Params) (pagination.Result[models.Delegate], error) {
	if db == nil {
		return pagination.Result[models.Delegate]{}, ErrDBNil
	}

	q := db.Model(&models.Delegate{}).Scopes(tenant.Scope(namespace))

	switch s {
	case SortWeightedRandom:
		all := []models.Delegate{}
		if err := q.Order("address").Find(&all).Error; err != nil {
			return pagination.Result[models.Delegate]{}, err
		}

		return pagination.Slice(p, WeightedShuffle(all, seed)), nil
	case SortLeastVotingPower:
		q = q.Order("voting_power ASC")
	case SortMostDelegators:
		q = q.Order("num_of_delegators DESC").Order("voting_power DESC")
	default:
		q = q.Order("voting_power DESC")
	}

	return pagination.Query[models.Delegate](q.Order("address"), p)
}

// WeightedShuffle orders delegates randomly, weighted by voting power.
// Each delegate gets the key -ln(u)/votingPower and the smallest key comes first,
// so a delegate with twice the power is twice as likely to precede another one.
// Delegates without voting power come last.
func WeightedShuffle(delegates []models.Delegate, seed uint64) []models.Delegate {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // ordering, not security

	keys := make([]float64, len(delegates))
	for i, d := range delegates {
		vp := d.VotingPower.InexactFloat64()
		u := r.Float64()

		if vp <= 0 || u == 0 {
			keys[i] = math.Inf(1)
			continue
		}

		keys[i] = -math.Log(u) / vp
	}

	idx := make([]int, len(delegates))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]] < keys[idx[b]]
	})

	out := make([]models.Delegate, len(delegates))
	for i, j := range idx {
		out[i] = delegates[j]
	}

	return out
}

// Get returns the delegate address of namespace.
func Get(db *gorm.DB, namespace, address string) (*models.Delegate, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var d models.Delegate

	err := db.Scopes(tenant.Scope(namespace)).Where("address = ?", strings.ToLower(address)).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDelegateNotFound
	}

	if err != nil {
		return nil, err
	}

	return &d, nil
}

// Delegators returns one page of the delegations made to address, largest first.
func Delegators(db *gorm.DB, namespace, address string, p pagination.Params) (pagination.Result[models.Delegation], error) {
	return delegations(db, namespace, "delegatee = ?", address, p)
}

// Delegatees returns one page of the delegations made by address, largest first.
func Delegatees(db *gorm.DB, namespace, address string, p pagination.Params) (pagination.Result[models.Delegation], error) {
	return delegations(db, namespace, "delegator = ?", address, p)
}

func delegations(db *gorm.DB, namespace, where, address string, p pagination.Params) (pagination.Result[models.Delegation], error) {
	if db == nil {
		return pagination.Result[models.Delegation]{}, ErrDBNil
	}

	q := db.Model(&models.Delegation{}).Scopes(tenant.Scope(namespace)).
		Where(where, strings.ToLower(address)).
		Where("amount > 0").
		Order("amount DESC").Order("block_number DESC")

	return pagination.Query[models.Delegation](q, p)
}

// Count returns the number of delegates of namespace.
func Count(db *gorm.DB, namespace string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64

	err := db.Model(&models.Delegate{}).Scopes(tenant.Scope(namespace)).Count(&n).Error

	return n, err
}

// CountDelegators returns the number of addresses delegating to address.
func CountDelegators(db *gorm.DB, namespace, address string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64

	err := db.Model(&models.Delegation{}).Scopes(tenant.Scope(namespace)).
		Where("delegatee = ? AND amount > 0", strings.ToLower(address)).
		Count(&n).Error

	return n, err
}
