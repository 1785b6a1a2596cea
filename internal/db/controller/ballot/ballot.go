// Package ballot stores the retro funding ballots of badgeholders.
package ballot

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoAgora/go-agora/internal/db/controller/citizen"
	"github.com/GoAgora/go-agora/internal/db/models"
	"github.com/GoAgora/go-agora/internal/governance/distribution"
	"github.com/GoAgora/go-agora/internal/tenant"
)

const (
	// MaxImpact is the highest impact score.
	MaxImpact = 5
	// rankStep separates the rank ranges of neighbouring impact groups.
	rankStep = 100000
	// rankSqueeze moves a new entry above the current top of its impact group.
	rankSqueeze = 1.4
	// topGap is added to the top rank when a project is moved above it.
	topGap = 1000
)

var (
	// MetricsRounds are scored per metric, every amount lies in [0, 100].
	MetricsRounds = []string{"4"}
	// ProjectRounds are scored per project, amounts sum up to 100.
	ProjectRounds = []string{"5", "6"}
	// ClosedRounds no longer accept submissions.
	ClosedRounds = []string{"4", "5"}
)

var (
	// ErrRoundClosed is returned when submitting to a closed round.
	ErrRoundClosed = errors.New("ballot submission for this round is closed")
	// ErrBadgeholderNotFound is returned when the ballot caster is not a citizen.
	ErrBadgeholderNotFound = errors.New("badgeholder not found")
	// ErrInvalidSignature is returned when the signature is not a 0x prefixed hex string.
	ErrInvalidSignature = errors.New("signature must be a 0x prefixed hex string")
	// ErrAmountOutOfRange is returned for a metrics vote outside [0, 100].
	ErrAmountOutOfRange = errors.New("vote amount must be between 0 and 100")
	// ErrTotalNot100 is returned when project votes do not sum up to 100.
	ErrTotalNot100 = errors.New("total votes must sum to 100")
	// ErrInvalidImpact is returned for an impact outside [0, 5].
	ErrInvalidImpact = errors.New("impact must be between 0 and 5")
	// ErrAllocationNotFound is returned when allocating to a project that has not been scored.
	ErrAllocationNotFound = errors.New("allocation cannot be updated for this project")
	// ErrInvalidPosition is returned for a negative position.
	ErrInvalidPosition = errors.New("position must not be negative")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

var hexSignature = regexp.MustCompile(`^0x[a-fA-F0-9]+$`)

// Key identifies a ballot.
type Key struct {
	Namespace string
	Round     string
	Address   string
}

func (k Key) normalized() Key {
	k.Address = strings.ToLower(k.Address)
	return k
}

func (k Key) scope(db *gorm.DB) *gorm.DB {
	return db.Scopes(tenant.Scope(k.Namespace)).Where("round_id = ? AND address = ?", k.Round, k.Address)
}

// View is a ballot with its project allocations.
type View struct {
	models.Ballot
	Allocations []models.ProjectAllocation `json:"allocations"`
}

// Vote is one submitted amount.
type Vote struct {
	ProjectID string  `json:"projectId" validate:"required"`
	Amount    float64 `json:"amount"`
}

// Get returns the ballot of k. A ballot that was never touched is returned pending and unsaved.
func Get(db *gorm.DB, k Key) (*View, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	k = k.normalized()

	var rows []models.Ballot
	if err := k.scope(db).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}

	v := &View{Allocations: []models.ProjectAllocation{}}

	if len(rows) == 0 {
		v.Ballot = models.Ballot{Namespace: k.Namespace, RoundID: k.Round, Address: k.Address, Status: models.BallotPending}
		return v, nil
	}

	v.Ballot = rows[0]

	err := k.scope(db).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "rank"}, Desc: true}).
		Order("project_id").
		Find(&v.Allocations).Error
	if err != nil {
		return nil, err
	}

	return v, nil
}

func ensure(tx *gorm.DB, k Key) error {
	b := models.Ballot{Namespace: k.Namespace, RoundID: k.Round, Address: k.Address, Status: models.BallotPending}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "round_id"}, {Name: "address"}},
		DoUpdates: clause.Assignments(map[string]any{"updated_at": time.Now()}),
	}).Create(&b).Error
}

// EstimateRank places a project newly scored with impact on top of its impact group.
// lowest is the lowest rank already in the group, highestBelow the highest rank of the group below.
func EstimateRank(impact int, lowest, highestBelow *int) int {
	if impact == 0 {
		return 0
	}

	if lowest == nil || *lowest == 0 {
		return rankStep * impact
	}

	below := rankStep * (impact - 1)
	if highestBelow != nil {
		below = *highestBelow
	}

	return int(math.Round(float64(*lowest+below) / rankSqueeze))
}

// SetImpact scores projectID and returns the updated ballot.
func SetImpact(db *gorm.DB, k Key, projectID string, impact int) (*View, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if impact < 0 || impact > MaxImpact {
		return nil, ErrInvalidImpact
	}

	k = k.normalized()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensure(tx, k); err != nil {
			return err
		}

		lowest, err := rankBound(tx, k, "MIN", impact)
		if err != nil {
			return err
		}

		highestBelow, err := rankBound(tx, k, "MAX", impact-1)
		if err != nil {
			return err
		}

		a := models.ProjectAllocation{
			Namespace: k.Namespace,
			RoundID:   k.Round,
			Address:   k.Address,
			ProjectID: projectID,
			Impact:    impact,
			Rank:      EstimateRank(impact, lowest, highestBelow),
			UpdatedAt: time.Now(),
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "round_id"}, {Name: "address"}, {Name: "project_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"impact", "rank", "updated_at"}),
		}).Create(&a).Error
	})
	if err != nil {
		return nil, err
	}

	return Get(db, k)
}

func rankBound(tx *gorm.DB, k Key, fn string, impact int) (*int, error) {
	var out struct{ V *int }

	err := k.scope(tx.Model(&models.ProjectAllocation{})).
		Select(fn+"("+tx.Statement.Quote("rank")+") AS v").
		Where("impact = ?", impact).
		Scan(&out).Error

	return out.V, err
}

// SetAllocation sets the share of projectID in percent. The project must have been scored.
func SetAllocation(db *gorm.DB, k Key, projectID string, allocation decimal.Decimal) (*View, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if allocation.IsNegative() || allocation.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrAmountOutOfRange
	}

	k = k.normalized()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensure(tx, k); err != nil {
			return err
		}

		res := k.scope(tx.Model(&models.ProjectAllocation{})).
			Where("project_id = ?", projectID).
			Updates(map[string]any{"allocation": allocation, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrAllocationNotFound
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return Get(db, k)
}

// Neighbour is a project next to the target slot of a moved project.
type Neighbour struct {
	Rank   int
	Impact int
}

// Reposition returns rank and impact of a project moved between above and below.
// A nil neighbour marks the top or the bottom of the ballot. The impact is clamped
// to the impacts of the neighbours.
func Reposition(rank, impact int, above, below *Neighbour) (int, int) {
	switch {
	case above != nil && below != nil:
		rank = int(math.Round(float64(above.Rank+below.Rank) / 2))
	case below != nil:
		rank = below.Rank + topGap
	case above != nil:
		rank = int(math.Round(float64(above.Rank) / rankSqueeze))
	}

	highest, lowest := MaxImpact, 1
	if above != nil {
		highest = above.Impact
	}

	if below != nil {
		lowest = below.Impact
	}

	return rank, min(highest, max(impact, lowest))
}

// SetPosition moves projectID to position in the ballot order, 0 being the top,
// and returns the updated ballot. Positions past the end move the project to the bottom.
func SetPosition(db *gorm.DB, k Key, projectID string, position int) (*View, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if position < 0 {
		return nil, ErrInvalidPosition
	}

	k = k.normalized()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensure(tx, k); err != nil {
			return err
		}

		var rows []models.ProjectAllocation

		err := k.scope(tx).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "rank"}, Desc: true}).
			Order("project_id").
			Find(&rows).Error
		if err != nil {
			return err
		}

		i := slices.IndexFunc(rows, func(a models.ProjectAllocation) bool { return a.ProjectID == projectID })
		if i < 0 {
			return ErrAllocationNotFound
		}

		moved := rows[i]
		others := slices.Delete(rows, i, i+1)
		position = min(position, len(others))

		var above, below *Neighbour
		if position > 0 {
			above = &Neighbour{Rank: others[position-1].Rank, Impact: others[position-1].Impact}
		}

		if position < len(others) {
			below = &Neighbour{Rank: others[position].Rank, Impact: others[position].Impact}
		}

		rank, impact := Reposition(moved.Rank, moved.Impact, above, below)

		return k.scope(tx.Model(&models.ProjectAllocation{})).
			Where("project_id = ?", projectID).
			Updates(map[string]any{"rank": rank, "impact": impact, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return nil, err
	}

	return Get(db, k)
}

// Distribute spreads 100 percent over the scored projects of the ballot with strategy.
func Distribute(db *gorm.DB, k Key, strategy distribution.Strategy) (*View, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	k = k.normalized()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensure(tx, k); err != nil {
			return err
		}

		var rows []models.ProjectAllocation
		if err := k.scope(tx).Find(&rows).Error; err != nil {
			return err
		}

		projects := make([]distribution.Project, len(rows))
		for i, r := range rows {
			projects[i] = distribution.Project{ProjectID: r.ProjectID, Impact: r.Impact, Rank: r.Rank}
		}

		allocations, err := distribution.Apply(strategy, projects)
		if err != nil {
			return err
		}

		now := time.Now()

		for _, a := range allocations {
			var value any
			if a.Allocation != nil {
				value = decimal.NewFromFloat(*a.Allocation).Round(4)
			}

			err = k.scope(tx.Model(&models.ProjectAllocation{})).
				Where("project_id = ?", a.ProjectID).
				Updates(map[string]any{"allocation": value, "updated_at": now}).Error
			if err != nil {
				return err
			}
		}

		return k.scope(tx.Model(&models.Ballot{})).
			Updates(map[string]any{"distribution_method": string(strategy), "updated_at": now}).Error
	})
	if err != nil {
		return nil, err
	}

	return Get(db, k)
}

// ValidateSubmission applies the round rules to a submission.
func ValidateSubmission(round, signature string, votes []Vote) error {
	if err := checkRequest(round, signature); err != nil {
		return err
	}

	return checkAmounts(round, votes)
}

func checkRequest(round, signature string) error {
	if slices.Contains(ClosedRounds, round) {
		return ErrRoundClosed
	}

	if !hexSignature.MatchString(signature) {
		return ErrInvalidSignature
	}

	return nil
}

func checkAmounts(round string, votes []Vote) error {
	switch {
	case slices.Contains(MetricsRounds, round):
		for _, v := range votes {
			if v.Amount < 0 || v.Amount > 100 {
				return ErrAmountOutOfRange
			}
		}
	case slices.Contains(ProjectRounds, round):
		var total float64
		for _, v := range votes {
			total += v.Amount
		}

		if math.Abs(total-100) > 1e-9 {
			return ErrTotalNot100
		}
	}

	return nil
}

// Submit signs off the ballot of a badgeholder. The caster must be a citizen of the tenant.
func Submit(db *gorm.DB, k Key, signature string, votes []Vote) (*View, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	k = k.normalized()

	if err := checkRequest(k.Round, signature); err != nil {
		return nil, err
	}

	if _, err := citizen.Get(db, k.Namespace, k.Address); err != nil {
		if errors.Is(err, citizen.ErrCitizenNotFound) {
			return nil, ErrBadgeholderNotFound
		}

		return nil, err
	}

	if err := checkAmounts(k.Round, votes); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(votes)
	if err != nil {
		return nil, fmt.Errorf("encode votes: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := ensure(tx, k); err != nil {
			return err
		}

		now := time.Now()

		return k.scope(tx.Model(&models.Ballot{})).Updates(map[string]any{
			"status":       models.BallotSubmitted,
			"signature":    signature,
			"payload":      string(payload),
			"submitted_at": now,
			"updated_at":   now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return Get(db, k)
}
