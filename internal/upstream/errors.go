package upstream

import (
	"context"
	"fmt"
	"time"
)

// Error is a non-success HTTP answer from an upstream service.
type Error struct {
	Service string
	Status  int
	Body    string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Body == "" {
		return fmt.Sprintf("%s %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s %d: %s", e.Service, e.Status, e.Body)
}

// HTTPStatusCode exposes the upstream status to callers that only need the code.
func (e *Error) HTTPStatusCode() int { return e.Status }

// TimeoutError is returned when the per-call deadline elapsed before the
// exchange completed.
type TimeoutError struct {
	Service string
	After   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timeout after %s", e.Service, e.After)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }
