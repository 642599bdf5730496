package engine

import (
	"testing"
	"time"

	"github.com/Tangorin-AP/genius-next-sub000/internal/domain"
)

func TestBackoff(t *testing.T) {
	cases := []struct {
		score int
		want  time.Duration
	}{
		{0, time.Second},
		{1, 5 * time.Second},
		{2, 25 * time.Second},
		{3, 125 * time.Second},
		{6, 15625 * time.Second},
	}
	for _, c := range cases {
		if got := Backoff(c.score); got != c.want {
			t.Errorf("Backoff(%d) = %v, want %v", c.score, got, c.want)
		}
	}
	if got := Backoff(-3); got != time.Second {
		t.Errorf("negative score = %v, want 1s", got)
	}
	if got := Backoff(50); got != maxBackoff {
		t.Errorf("huge score = %v, want cap %v", got, maxBackoff)
	}
}

func TestSessionDueFirst(t *testing.T) {
	plan := Plan{
		Due: []*domain.SessionCard{
			scoredCard("t1", 1, at(-2*time.Minute)),
			scoredCard("t2", 1, at(-time.Minute)),
		},
		Pool: []*domain.SessionCard{unseenCard("pooled")},
	}
	s := NewSession(plan)

	if got := s.Next(t0); got == nil || got.ID != "t1" {
		t.Fatalf("first Next = %v, want t1", got)
	}
	if got := s.Next(t0); got == nil || got.ID != "t2" {
		t.Fatalf("second Next = %v, want t2", got)
	}
	if got := s.Next(t0); got == nil || got.ID != "pooled" {
		t.Fatalf("third Next = %v, want pooled", got)
	}
}

func TestSessionPoolWhenHeadNotDue(t *testing.T) {
	plan := Plan{
		Due:  []*domain.SessionCard{scoredCard("later", 1, at(time.Hour))},
		Pool: []*domain.SessionCard{unseenCard("pooled")},
	}
	s := NewSession(plan)
	if got := s.Next(t0); got == nil || got.ID != "pooled" {
		t.Fatalf("Next = %v, want pooled while due head is in the future", got)
	}
	// Pool drained, head still in the future: nothing servable.
	if got := s.Next(t0); got != nil {
		t.Fatalf("Next = %v, want nil", got.ID)
	}
	if s.Remaining() != 1 {
		t.Errorf("Remaining = %d, want 1", s.Remaining())
	}
}

func TestSessionBackoffLaw(t *testing.T) {
	for score := 0; score <= 6; score++ {
		card := scoredCard("c", score, at(-time.Minute))
		s := NewSession(Plan{Due: []*domain.SessionCard{card}})
		if got := s.Next(t0); got != card {
			t.Fatalf("score %d: Next did not return the card", score)
		}
		s.Right(card, t0)

		if card.Score.OrElse(-1) != score+1 {
			t.Errorf("score %d: Right -> %d, want %d", score, card.Score.OrElse(-1), score+1)
		}
		want := t0.Add(Backoff(score + 1))
		if card.DueAt == nil || !card.DueAt.Equal(want) {
			t.Errorf("score %d: dueAt = %v, want %v", score, card.DueAt, want)
		}
		if card.FirstTime {
			t.Errorf("score %d: FirstTime still set after Right", score)
		}
	}
}

func TestSessionRightFromUnseen(t *testing.T) {
	card := unseenCard("new")
	s := NewSession(Plan{Pool: []*domain.SessionCard{card}})
	s.Next(t0)
	s.Right(card, t0)

	if card.Score.OrElse(-1) != 0 {
		t.Errorf("score = %d, want 0", card.Score.OrElse(-1))
	}
	want := t0.Add(time.Second)
	if card.DueAt == nil || !card.DueAt.Equal(want) {
		t.Errorf("dueAt = %v, want %v", card.DueAt, want)
	}
}

func TestSessionWrongResetsScore(t *testing.T) {
	card := scoredCard("c", 4, at(-time.Minute))
	s := NewSession(Plan{Due: []*domain.SessionCard{card}})
	s.Next(t0)
	s.Wrong(card, t0)

	if card.Score.OrElse(-1) != 0 {
		t.Errorf("score = %d, want 0", card.Score.OrElse(-1))
	}
	want := t0.Add(time.Second)
	if card.DueAt == nil || !card.DueAt.Equal(want) {
		t.Errorf("dueAt = %v, want %v (wrong answers resurface immediately)", card.DueAt, want)
	}
	// The card is requeued, so it comes back once its second passes.
	if got := s.Next(t0.Add(2 * time.Second)); got != card {
		t.Error("wrong card should resurface in the same session")
	}
}

func TestSessionSkipIdempotent(t *testing.T) {
	card := scoredCard("c", 3, at(-time.Minute))
	s := NewSession(Plan{Due: []*domain.SessionCard{card}})
	s.Next(t0)

	for i := 0; i < 2; i++ {
		s.Skip(card)
		if card.Score.Valid {
			t.Fatalf("skip %d: score still set", i+1)
		}
		if card.DueAt != nil {
			t.Fatalf("skip %d: dueAt = %v, want nil", i+1, card.DueAt)
		}
		if !card.FirstTime {
			t.Fatalf("skip %d: FirstTime = false, want true", i+1)
		}
	}
	if got := s.Next(t0); got != nil {
		t.Errorf("skipped card must not resurface, got %v", got.ID)
	}
}

func TestSessionBlankResponseNeverServed(t *testing.T) {
	blank := unseenCard("blank")
	blank.Response = "   "
	real := unseenCard("real")
	s := NewSession(Plan{Pool: []*domain.SessionCard{blank, real}})

	got := s.Next(t0)
	if got == nil || got.ID != "real" {
		t.Fatalf("Next = %v, want real", got)
	}
	if !blank.FirstTime || blank.Score.Valid || blank.DueAt != nil {
		t.Error("blank card should be converted to skipped state")
	}
	seen, _ := s.Progress()
	if seen != 1 {
		t.Errorf("seen = %d, want 1 (blank card must not count)", seen)
	}
}

func TestSessionProgress(t *testing.T) {
	s := NewSession(Plan{
		Due:  []*domain.SessionCard{scoredCard("a", 1, at(-time.Minute))},
		Pool: []*domain.SessionCard{unseenCard("b"), unseenCard("c")},
	})
	if seen, total := s.Progress(); seen != 0 || total != 3 {
		t.Errorf("Progress = %d/%d, want 0/3", seen, total)
	}
	s.Next(t0)
	s.Next(t0)
	if seen, total := s.Progress(); seen != 2 || total != 3 {
		t.Errorf("Progress = %d/%d, want 2/3", seen, total)
	}
	if s.Remaining() != 1 {
		t.Errorf("Remaining = %d, want 1", s.Remaining())
	}
}

func TestSessionEndToEnd(t *testing.T) {
	a := scoredCard("a", 2, at(-5*time.Second))
	b := unseenCard("b")
	s := NewSession(Plan{
		Due:  []*domain.SessionCard{a},
		Pool: []*domain.SessionCard{b},
	})

	first := s.Next(t0)
	if first != a {
		t.Fatalf("first Next = %v, want the overdue card", first)
	}
	s.Right(a, t0)
	if a.Score.OrElse(-1) != 3 {
		t.Errorf("score after Right = %d, want 3", a.Score.OrElse(-1))
	}
	want := t0.Add(125 * time.Second)
	if a.DueAt == nil || !a.DueAt.Equal(want) {
		t.Errorf("dueAt = %v, want %v", a.DueAt, want)
	}

	second := s.Next(t0)
	if second != b {
		t.Fatalf("second Next = %v, want the unseen card", second)
	}
	s.Skip(b)
	if b.Score.Valid || b.DueAt != nil || !b.FirstTime {
		t.Error("skip should reset b to the unseen state")
	}

	if third := s.Next(t0); third != nil {
		t.Fatalf("third Next = %v, want nil (a is 125s out, b skipped)", third.ID)
	}
}
