package engine

import "errors"

// ErrNotFound reports that a referenced association no longer exists
// in storage. Check with errors.Is; callers treat it as a no-op
// rather than a fatal fault, since a card can be deleted mid-session.
var ErrNotFound = errors.New("engine: association not found")
