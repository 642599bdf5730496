// Package engine selects which cards a learner studies next and
// reschedules them from grading outcomes.
package engine

import (
	"math"
	"sort"
	"time"

	"github.com/Tangorin-AP/genius-next-sub000/internal/domain"
)

// Sampling weight constants. 0.60 fixes where never-studied cards
// rank among scored ones; the sigma sets how sharply the bell curve
// falls off around the m-value.
const (
	UnseenWeight = 0.60
	WeightSigma  = 1.2
)

// Plan is the output of session planning: the cards already due for
// review, in due order, and a weighted candidate pool for the rest
// of the session.
type Plan struct {
	Due  []*domain.SessionCard // ascending by due time
	Pool []*domain.SessionCard // descending by sampling weight

	Available int // due + pool candidates before truncation
	Requested int
}

// PoolWeight is the sampling weight of a not-yet-due card. Unseen
// cards get the fixed boost; scored cards get a gaussian centered on
// mValue, so the dial shifts between introducing new material and
// reviewing well-known material without a hard cutoff.
func PoolWeight(s domain.Score, mValue float64) float64 {
	if !s.Valid {
		return UnseenWeight
	}
	d := float64(s.Value) - mValue
	return math.Exp(-(d * d) / (2 * WeightSigma * WeightSigma))
}

// PlanSession partitions a deck's cards into due and candidate-pool
// lists and assembles a session of at most count cards. The due list
// is always included in full; the pool is filled from the highest
// weighted candidates. Planning is fully deterministic: no random
// source is consumed.
//
// A count below one is clamped to one. A negative minimumScore
// includes unseen cards (their score compares as -1); zero or above
// restricts the session to already-reviewed cards.
func PlanSession(cards []*domain.SessionCard, count int, minimumScore, mValue float64, now time.Time) Plan {
	if count < 1 {
		count = 1
	}

	var due []*domain.SessionCard
	var candidates []*domain.SessionCard
	for _, c := range cards {
		if float64(c.Score.OrElse(-1)) < minimumScore {
			continue
		}
		if c.DueAt != nil && !c.DueAt.After(now) {
			due = append(due, c)
		} else {
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DueAt.Before(*due[j].DueAt)
	})

	weights := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		weights[c.ID] = PoolWeight(c.Score, mValue)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return weights[candidates[i].ID] > weights[candidates[j].ID]
	})

	plan := Plan{
		Due:       due,
		Available: len(due) + len(candidates),
		Requested: count,
	}
	seen := make(map[string]bool, len(due))
	for _, c := range due {
		seen[c.ID] = true
	}
	for _, c := range candidates {
		if len(plan.Due)+len(plan.Pool) >= count {
			break
		}
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		plan.Pool = append(plan.Pool, c)
	}
	return plan
}
