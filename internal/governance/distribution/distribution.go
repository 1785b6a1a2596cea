// Package distribution spreads a ballot's 100% over its scored projects.
package distribution

import (
	"errors"
	"sort"
	"strings"
)

// Strategy names a distribution curve.
type Strategy string

// Strategies.
const (
	ImpactGroups Strategy = "IMPACT_GROUPS"
	TopToBottom  Strategy = "TOP_TO_BOTTOM"
	TopWeighted  Strategy = "TOP_WEIGHTED"
)

const (
	// Total is the share distributed, in percent.
	Total = 100.0
	// Min is the share of the last project with TOP_TO_BOTTOM.
	Min = 0.125
	// TopWeightedMax caps the top project with TOP_WEIGHTED.
	TopWeightedMax = 6.25

	initialC = 0.9
	minC     = 1e-9
)

// ErrUnknownStrategy is returned for a strategy name that is not supported.
var ErrUnknownStrategy = errors.New("unknown distribution strategy")

// Project is a project of a ballot. Impact 0 means unscored, otherwise 1 to 5.
// A higher rank is a better project.
type Project struct {
	ProjectID string
	Impact    int
	Rank      int
}

// Allocation is the computed share of a project, nil for unscored projects.
type Allocation struct {
	ProjectID  string
	Allocation *float64
}

// Parse validates a strategy name case insensitively.
func Parse(s string) (Strategy, error) {
	switch st := Strategy(strings.ToUpper(s)); st {
	case ImpactGroups, TopToBottom, TopWeighted:
		return st, nil
	default:
		return "", ErrUnknownStrategy
	}
}

// Apply computes the allocation of every project.
// Results follow rank order, best project first.
func Apply(strategy Strategy, projects []Project) ([]Allocation, error) {
	sorted := make([]Project, len(projects))
	copy(sorted, projects)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank > sorted[j].Rank
	})

	n := 0
	for _, p := range sorted {
		if p.Impact > 0 {
			n++
		}
	}

	var share func(p Project, scored int) float64

	switch strategy {
	case TopToBottom:
		y := topToBottom(Min, Total, n)
		// the curve grows from the worst project
		share = func(_ Project, scored int) float64 { return y(n - 1 - scored) }
	case TopWeighted:
		y := topWeighted(TopWeightedMax, Total, n)
		share = func(_ Project, scored int) float64 { return y(scored) }
	case ImpactGroups:
		var nk [5]int
		for _, p := range sorted {
			if p.Impact >= 1 && p.Impact <= 5 {
				nk[p.Impact-1]++
			}
		}

		y := impactGroups(Total, nk)
		share = func(p Project, _ int) float64 { return y(p.Impact - 1) }
	default:
		return nil, ErrUnknownStrategy
	}

	out := make([]Allocation, len(sorted))
	scored := 0

	for i, p := range sorted {
		out[i] = Allocation{ProjectID: p.ProjectID}

		if p.Impact < 1 || p.Impact > 5 {
			continue
		}

		v := share(p, scored)
		out[i].Allocation = &v
		scored++
	}

	return out, nil
}

// topToBottom grows linearly from min so that n projects sum to total.
func topToBottom(lowest, total float64, n int) func(i int) float64 {
	if n <= 1 {
		return func(int) float64 { return total }
	}

	a := 2 * (total - float64(n)*lowest) / float64(n*(n-1))

	return func(i int) float64 { return lowest + a*float64(i) }
}

func weight(i int, c float64) float64 {
	return 1 / (float64(i)*c + 1)
}

func totalWeight(n int, c float64) float64 {
	var w float64
	for i := 0; i < n; i++ {
		w += weight(i, c)
	}

	return w
}

// findC flattens the curve until the top project stays at or below highest.
// Too few projects can never get below highest, they end up with an even split.
func findC(highest, total float64, n int) float64 {
	c := initialC
	for c > minC && weight(0, c)*total/totalWeight(n, c) > highest {
		c *= 0.9
	}

	if c <= minC {
		return 0
	}

	return c
}

// topWeighted decays as 1/(i*c+1) from the best project.
func topWeighted(highest, total float64, n int) func(i int) float64 {
	if n == 0 {
		return func(int) float64 { return 0 }
	}

	c := findC(highest, total, n)
	w := totalWeight(n, c)

	return func(i int) float64 { return total * weight(i, c) / w }
}

// impactGroups gives every project of impact group k a share proportional to k+1.
func impactGroups(total float64, nk [5]int) func(k int) float64 {
	var w float64
	for i, n := range nk {
		w += float64(n * (i + 1))
	}

	return func(k int) float64 {
		if w == 0 {
			return 0
		}

		return total * float64(k+1) / w
	}
}
