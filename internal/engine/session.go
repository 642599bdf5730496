package engine

import (
	"strings"
	"time"

	"github.com/Tangorin-AP/genius-next-sub000/internal/domain"
)

// Session serves the cards of one Plan one at a time, due cards
// first, and reschedules them as the learner answers. A Session is
// owned by a single consumer; it is not safe for concurrent use.
//
// Mutations stay in memory. The caller persists card state (or
// reverts it via a snapshot) as it sees fit.
type Session struct {
	due   []*domain.SessionCard // ascending by due time, nil due first
	pool  []*domain.SessionCard
	seen  int
	total int
}

// NewSession takes ownership of a plan's card lists.
func NewSession(plan Plan) *Session {
	due := make([]*domain.SessionCard, len(plan.Due))
	copy(due, plan.Due)
	pool := make([]*domain.SessionCard, len(plan.Pool))
	copy(pool, plan.Pool)
	return &Session{due: due, pool: pool, total: len(due) + len(pool)}
}

// Next returns the next card to present, or nil when nothing is
// currently servable. The head of the due queue wins whenever it is
// eligible at now; otherwise the pool is drained in its weighted
// order. Cards with blank response text are silently reset to the
// unseen state and never surfaced.
func (s *Session) Next(now time.Time) *domain.SessionCard {
	for {
		var card *domain.SessionCard
		switch {
		case len(s.due) > 0 && dueEligible(s.due[0], now):
			card = s.due[0]
			s.due = s.due[1:]
			s.removeFromPool(card.ID)
		case len(s.pool) > 0:
			card = s.pool[0]
			s.pool = s.pool[1:]
		default:
			return nil
		}

		if strings.TrimSpace(card.Response) == "" {
			card.Score, card.DueAt, card.FirstTime = transition(card.Score, domain.Skip, now)
			s.removeFromDue(card.ID)
			continue
		}

		s.seen++
		return card
	}
}

// Right records a correct answer: the score climbs by one and the
// card is requeued with an exponentially longer delay.
func (s *Session) Right(card *domain.SessionCard, now time.Time) {
	card.Score, card.DueAt, card.FirstTime = transition(card.Score, domain.Right, now)
	s.requeue(card)
}

// Wrong records an incorrect answer: the score resets and the card
// resurfaces one second from now rather than being purged.
func (s *Session) Wrong(card *domain.SessionCard, now time.Time) {
	card.Score, card.DueAt, card.FirstTime = transition(card.Score, domain.Wrong, now)
	s.requeue(card)
}

// Skip returns the card to the unseen classification. It leaves the
// session entirely; a future planning pass may pick it up again.
func (s *Session) Skip(card *domain.SessionCard) {
	card.Score, card.DueAt, card.FirstTime = transition(card.Score, domain.Skip, time.Time{})
	s.removeFromPool(card.ID)
	s.removeFromDue(card.ID)
}

// Progress returns how many cards have been presented and the fixed
// session size snapshotted at start.
func (s *Session) Progress() (seen, total int) {
	return s.seen, s.total
}

// Remaining returns how many cards are still queued or pooled.
func (s *Session) Remaining() int {
	return len(s.due) + len(s.pool)
}

func (s *Session) requeue(card *domain.SessionCard) {
	s.removeFromPool(card.ID)
	s.removeFromDue(card.ID)
	s.insertDue(card)
}

// insertDue places the card at the position preserving ascending due
// order. Cards with equal due times keep their insertion order.
func (s *Session) insertDue(card *domain.SessionCard) {
	at := len(s.due)
	for i, c := range s.due {
		if dueLess(card, c) {
			at = i
			break
		}
	}
	s.due = append(s.due, nil)
	copy(s.due[at+1:], s.due[at:])
	s.due[at] = card
}

func (s *Session) removeFromDue(id string) {
	for i, c := range s.due {
		if c.ID == id {
			s.due = append(s.due[:i], s.due[i+1:]...)
			return
		}
	}
}

func (s *Session) removeFromPool(id string) {
	for i, c := range s.pool {
		if c.ID == id {
			s.pool = append(s.pool[:i], s.pool[i+1:]...)
			return
		}
	}
}

// dueEligible reports whether a queued card may be served at now. A
// nil due time means always eligible.
func dueEligible(c *domain.SessionCard, now time.Time) bool {
	return c.DueAt == nil || !c.DueAt.After(now)
}

// dueLess orders the due queue: unscheduled cards count as most
// overdue and sort first.
func dueLess(a, b *domain.SessionCard) bool {
	if a.DueAt == nil {
		return b.DueAt != nil
	}
	if b.DueAt == nil {
		return false
	}
	return a.DueAt.Before(*b.DueAt)
}
