package scheduling

import (
	"errors"
	"fmt"
)

// ErrCalendarUnavailable signals that the external calendar could not be
// read. Conflict checks fail closed on it: no result means no placement.
var ErrCalendarUnavailable = errors.New("external calendar unavailable")

// ErrCapacityExhausted signals that no eligible worker or route slot exists.
var ErrCapacityExhausted = errors.New("no eligible worker capacity")

// ValidationError marks a single malformed request. The batch continues for
// the remaining items.
type ValidationError struct {
	RequestID string
	Reason    string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid booking request %s: %s", e.RequestID, e.Reason)
}

// BlockingConflictError signals a blocking overlap found at commit time.
type BlockingConflictError struct {
	WorkerID   string
	EventID    string
	EventTitle string
}

func (e BlockingConflictError) Error() string {
	return fmt.Sprintf("blocking calendar conflict for worker %s with event %q (%s)", e.WorkerID, e.EventTitle, e.EventID)
}
