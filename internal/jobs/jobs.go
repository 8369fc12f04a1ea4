package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// State is the lifecycle state of one background job.
type State string

const (
	StateEnqueued  State = "enqueued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

var allStates = []State{StateEnqueued, StateRunning, StateSucceeded, StateFailed, StateCancelled}

// Active reports whether the job may still produce output.
func (s State) Active() bool {
	return s == StateEnqueued || s == StateRunning
}

// ParseState converts user or database text into a State.
func ParseState(raw string) (State, error) {
	candidate := State(strings.ToLower(strings.TrimSpace(raw)))
	for _, state := range allStates {
		if candidate == state {
			return state, nil
		}
	}
	return "", fmt.Errorf("unknown job state %q", raw)
}

// Job is one unit of background work tagged with the kind of work it does.
type Job struct {
	ID        string
	Tag       string
	State     State
	UpdatedAt time.Time
}

// StatusQuery lists the jobs currently known for a tag.
type StatusQuery interface {
	Query(ctx context.Context, tag string) ([]Job, error)
}

// AnyActive reports whether any job in list is enqueued or running.
func AnyActive(list []Job) bool {
	for _, job := range list {
		if job.State.Active() {
			return true
		}
	}
	return false
}
