package graph

import (
	"errors"
	"fmt"
)

// ErrState is matched by every StateError.
var ErrState = errors.New("invalid track state")

// StateError reports a mutation that would break the append-only endpoint
// rules of a track section. Retrying the same call never succeeds.
type StateError struct {
	Op     string
	Track  ID
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: track %s: %s", e.Op, e.Track, e.Reason)
}

func (e *StateError) Unwrap() error {
	return ErrState
}

func stateErr(op string, t *TrackSection, reason string) error {
	return &StateError{Op: op, Track: t.id, Reason: reason}
}
