package engine

import (
	"time"

	"github.com/Tangorin-AP/genius-next-sub000/internal/domain"
)

const backoffBase = 5

// maxBackoff caps the review delay so the 5^score growth cannot
// overflow time.Duration.
const maxBackoff = 100 * 365 * 24 * time.Hour

// Backoff returns the delay until the next review for a score:
// 5^score seconds. Score 0 reviews after one second; each further
// consecutive success multiplies the delay by five.
func Backoff(score int) time.Duration {
	secs := int64(1)
	for i := 0; i < score; i++ {
		secs *= backoffBase
		if time.Duration(secs)*time.Second > maxBackoff {
			return maxBackoff
		}
	}
	return time.Duration(secs) * time.Second
}

// transition applies a grading decision to scheduling state. Both the
// in-memory session scheduler and the direct-to-storage path go
// through this one function, so the two can never drift apart.
func transition(prev domain.Score, d domain.Decision, now time.Time) (score domain.Score, dueAt *time.Time, firstTime bool) {
	switch d {
	case domain.Right:
		next := prev.OrElse(-1) + 1
		if next < 0 {
			next = 0
		}
		due := now.Add(Backoff(next))
		return domain.NewScore(next), &due, false
	case domain.Wrong:
		due := now.Add(Backoff(0))
		return domain.NewScore(0), &due, false
	default: // domain.Skip: back to the unseen classification
		return domain.Unset(), nil, true
	}
}
