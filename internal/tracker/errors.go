package tracker

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the tracker.
// Use errors.Is to check: errors.Is(err, tracker.ErrNoActionToUndo)
var (
	ErrInvalidInput      = errors.New("tracker: invalid input")
	ErrNoActionToUndo    = errors.New("tracker: no action to undo")
	ErrStoreUnavailable  = errors.New("tracker: store unavailable")
	ErrNoChange          = errors.New("tracker: nothing to change")
	ErrAllPagesMemorized = fmt.Errorf("%w: all pages are already memorized", ErrInvalidInput)
)

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
