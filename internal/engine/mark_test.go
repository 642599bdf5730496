package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Tangorin-AP/genius-next-sub000/internal/domain"
)

type fakeStore struct {
	assocs  map[string]*domain.Association
	deckIDs map[string]string
	failOn  string // method name to fail, for fault injection
	updates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		assocs:  map[string]*domain.Association{},
		deckIDs: map[string]string{},
	}
}

func (f *fakeStore) put(a *domain.Association, deckID string) {
	f.assocs[a.ID] = a
	f.deckIDs[a.ID] = deckID
}

func (f *fakeStore) Association(_ context.Context, id string) (*domain.Association, string, error) {
	if f.failOn == "Association" {
		return nil, "", errors.New("store down")
	}
	a, ok := f.assocs[id]
	if !ok {
		return nil, "", nil
	}
	cp := *a
	return &cp, f.deckIDs[id], nil
}

func (f *fakeStore) UpdateAssociationState(_ context.Context, id string, score domain.Score, dueAt *time.Time, firstTime bool) error {
	if f.failOn == "UpdateAssociationState" {
		return errors.New("store down")
	}
	a, ok := f.assocs[id]
	if !ok {
		return errors.New("missing association")
	}
	a.Score = score
	a.DueAt = dueAt
	a.FirstTime = firstTime
	f.updates++
	return nil
}

func storedAssoc(id string, score domain.Score, dueAt *time.Time, firstTime bool) *domain.Association {
	return &domain.Association{
		ID:        id,
		PairID:    "pair-" + id,
		Direction: domain.DirectionAB,
		Score:     score,
		DueAt:     dueAt,
		FirstTime: firstTime,
	}
}

func TestApplyDecisionRight(t *testing.T) {
	store := newFakeStore()
	store.put(storedAssoc("x", domain.NewScore(2), at(-time.Minute), false), "deck-1")

	deckID, err := ApplyDecision(context.Background(), store, "x", domain.Right, t0)
	if err != nil {
		t.Fatalf("ApplyDecision: %v", err)
	}
	if deckID != "deck-1" {
		t.Errorf("deckID = %q, want deck-1", deckID)
	}
	got := store.assocs["x"]
	if got.Score.OrElse(-1) != 3 {
		t.Errorf("score = %d, want 3", got.Score.OrElse(-1))
	}
	want := t0.Add(125 * time.Second)
	if got.DueAt == nil || !got.DueAt.Equal(want) {
		t.Errorf("dueAt = %v, want %v", got.DueAt, want)
	}
}

// The one-shot path and the in-memory session must apply the exact
// same transition arithmetic; any divergence is a correctness bug.
func TestApplyDecisionMatchesSession(t *testing.T) {
	starts := []domain.Score{
		domain.Unset(),
		domain.NewScore(0),
		domain.NewScore(1),
		domain.NewScore(4),
	}
	for _, d := range []domain.Decision{domain.Right, domain.Wrong, domain.Skip} {
		for _, start := range starts {
			store := newFakeStore()
			store.put(storedAssoc("x", start, nil, !start.Valid), "deck-1")
			if _, err := ApplyDecision(context.Background(), store, "x", d, t0); err != nil {
				t.Fatalf("%s from %+v: %v", d, start, err)
			}
			viaStore := store.assocs["x"]

			card := &domain.SessionCard{
				Association: *storedAssoc("x", start, nil, !start.Valid),
				Response:    "something",
			}
			s := NewSession(Plan{Pool: []*domain.SessionCard{card}})
			s.Next(t0)
			switch d {
			case domain.Right:
				s.Right(card, t0)
			case domain.Wrong:
				s.Wrong(card, t0)
			case domain.Skip:
				s.Skip(card)
			}

			if viaStore.Score != card.Score {
				t.Errorf("%s from %+v: score %+v vs session %+v", d, start, viaStore.Score, card.Score)
			}
			if (viaStore.DueAt == nil) != (card.DueAt == nil) {
				t.Errorf("%s from %+v: dueAt nil-ness differs", d, start)
			} else if viaStore.DueAt != nil && !viaStore.DueAt.Equal(*card.DueAt) {
				t.Errorf("%s from %+v: dueAt %v vs session %v", d, start, viaStore.DueAt, card.DueAt)
			}
			if viaStore.FirstTime != card.FirstTime {
				t.Errorf("%s from %+v: firstTime %v vs session %v", d, start, viaStore.FirstTime, card.FirstTime)
			}
		}
	}
}

func TestApplyDecisionNotFound(t *testing.T) {
	store := newFakeStore()
	_, err := ApplyDecision(context.Background(), store, "ghost", domain.Right, t0)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestApplyDecisionStoreFault(t *testing.T) {
	store := newFakeStore()
	store.put(storedAssoc("x", domain.NewScore(1), at(-time.Minute), false), "deck-1")
	store.failOn = "UpdateAssociationState"

	_, err := ApplyDecision(context.Background(), store, "x", domain.Right, t0)
	if err == nil {
		t.Fatal("want persistence error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("store fault must not masquerade as not-found")
	}
	if store.updates != 0 {
		t.Error("no update should be recorded on failure")
	}
}

func TestRestore(t *testing.T) {
	store := newFakeStore()
	store.put(storedAssoc("x", domain.NewScore(5), at(time.Hour), false), "deck-1")

	snap := domain.Snapshot{Score: domain.NewScore(2), DueAt: at(-time.Minute), FirstTime: false}
	deckID, err := Restore(context.Background(), store, "x", snap)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if deckID != "deck-1" {
		t.Errorf("deckID = %q, want deck-1", deckID)
	}
	got := store.assocs["x"]
	if got.Score != snap.Score || !got.DueAt.Equal(*snap.DueAt) || got.FirstTime {
		t.Errorf("restored state = %+v, want snapshot %+v", got, snap)
	}

	if _, err := Restore(context.Background(), store, "ghost", snap); !errors.Is(err, ErrNotFound) {
		t.Errorf("restore of missing id = %v, want ErrNotFound", err)
	}
}
