package domain

import "time"

// Direction tells which side of a pair is shown as the cue.
type Direction string

const (
	// DirectionAB presents the question and expects the answer.
	DirectionAB Direction = "AB"
	// DirectionBA presents the answer and expects the question.
	DirectionBA Direction = "BA"
)

// Pair is a question/answer entry belonging to a deck.
// Hash is the normalized content hash used to deduplicate imports.
type Pair struct {
	ID       string
	DeckID   string
	Question string
	Answer   string
	Hash     string
}

// Score is an optional review score. An unset score means the
// association has never been studied.
type Score struct {
	Value int
	Valid bool
}

// NewScore returns a set score.
func NewScore(v int) Score { return Score{Value: v, Valid: true} }

// Unset returns the unset score.
func Unset() Score { return Score{} }

// OrElse returns the score value, or def when the score is unset.
func (s Score) OrElse(def int) int {
	if !s.Valid {
		return def
	}
	return s.Value
}

// Association is one directional study record derived from a Pair.
//
// Invariant: a set score always has a scheduled DueAt; an association
// with FirstTime true has an unset score and a nil DueAt.
type Association struct {
	ID        string
	PairID    string
	Direction Direction
	Score     Score
	DueAt     *time.Time // nil means not scheduled
	FirstTime bool
}

// Snapshot captures the mutable scheduling state of an association,
// for undo.
type Snapshot struct {
	Score     Score
	DueAt     *time.Time
	FirstTime bool
}

// Snapshot returns a copy of the association's scheduling state.
func (a *Association) Snapshot() Snapshot {
	return Snapshot{Score: a.Score, DueAt: copyTime(a.DueAt), FirstTime: a.FirstTime}
}

// Decision is a grading outcome for a single presented card.
type Decision int

const (
	Right Decision = iota
	Wrong
	Skip
)

func (d Decision) String() string {
	switch d {
	case Right:
		return "RIGHT"
	case Wrong:
		return "WRONG"
	case Skip:
		return "SKIP"
	}
	return "UNKNOWN"
}

// SessionCard is a detached snapshot of one association plus the
// pair text resolved for its direction. It carries its own mutable
// score/dueAt/firstTime copy for the lifetime of one study session;
// changes are written back to storage only when the caller persists
// them.
type SessionCard struct {
	Association
	DeckID   string
	Cue      string
	Response string
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
