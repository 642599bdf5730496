package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Tangorin-AP/genius-next-sub000/internal/domain"
)

// AssociationStore is the persistence port for the one-shot grading
// path. Implementations return a nil association, without error, for
// ids that no longer exist.
type AssociationStore interface {
	// Association loads one association and its owning deck id.
	Association(ctx context.Context, id string) (*domain.Association, string, error)
	// UpdateAssociationState writes back the scheduling fields of
	// one association.
	UpdateAssociationState(ctx context.Context, id string, score domain.Score, dueAt *time.Time, firstTime bool) error
}

// ApplyDecision grades one association directly against storage,
// for callers that commit one decision at a time instead of running
// an in-memory session. The score/dueAt/firstTime transition is the
// same one a Session applies. Returns the owning deck id, or
// ErrNotFound when the association vanished.
func ApplyDecision(ctx context.Context, store AssociationStore, associationID string, d domain.Decision, now time.Time) (string, error) {
	assoc, deckID, err := store.Association(ctx, associationID)
	if err != nil {
		return "", fmt.Errorf("load association %s: %w", associationID, err)
	}
	if assoc == nil {
		return "", ErrNotFound
	}

	score, dueAt, firstTime := transition(assoc.Score, d, now)
	if err := store.UpdateAssociationState(ctx, associationID, score, dueAt, firstTime); err != nil {
		return "", fmt.Errorf("persist decision %s for %s: %w", d, associationID, err)
	}
	return deckID, nil
}

// Restore writes a previously captured snapshot back onto an
// association, undoing a decision. It is a plain write-through, not
// a scheduling computation.
func Restore(ctx context.Context, store AssociationStore, associationID string, snap domain.Snapshot) (string, error) {
	assoc, deckID, err := store.Association(ctx, associationID)
	if err != nil {
		return "", fmt.Errorf("load association %s: %w", associationID, err)
	}
	if assoc == nil {
		return "", ErrNotFound
	}

	if err := store.UpdateAssociationState(ctx, associationID, snap.Score, snap.DueAt, snap.FirstTime); err != nil {
		return "", fmt.Errorf("restore association %s: %w", associationID, err)
	}
	return deckID, nil
}
