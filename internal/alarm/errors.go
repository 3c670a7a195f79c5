package alarm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidQuery indicates a query with no camera or a non-positive count.
	ErrInvalidQuery = errors.New("invalid alarm query")
	// ErrNoAlarms marks the empty-result outcome. The engine itself returns an empty
	// slice with a nil error; callers use this sentinel when they need to report it.
	ErrNoAlarms = errors.New("no alarms found")
)

// StoreQueryError reports a failed round trip to the alarm-frames table.
// Records accumulated before the failure are discarded.
type StoreQueryError struct {
	Camera string
	Err    error
}

func (e *StoreQueryError) Error() string {
	return fmt.Sprintf("cannot query alarms for camera %q: %v", e.Camera, e.Err)
}

func (e *StoreQueryError) Unwrap() error {
	return e.Err
}

// TimeoutError reports a page request that exceeded its round-trip budget.
type TimeoutError struct {
	Camera  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("alarm query for camera %q timed out after %s", e.Camera, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}
