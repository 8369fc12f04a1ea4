package jobs

import (
	"context"
	"sync"
)

// Static is an in-memory StatusQuery.
type Static struct {
	mu    sync.Mutex
	jobs  map[string][]Job
	errs  map[string]error
	calls map[string]int
}

// NewStatic returns a Static seeded with jobs grouped by their Tag.
func NewStatic(seed ...Job) *Static {
	s := &Static{
		jobs:  make(map[string][]Job),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
	for _, job := range seed {
		s.jobs[job.Tag] = append(s.jobs[job.Tag], job)
	}
	return s
}

// Put appends job under its tag.
func (s *Static) Put(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Tag] = append(s.jobs[job.Tag], job)
}

// Fail makes every Query for tag return err.
func (s *Static) Fail(tag string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[tag] = err
}

// Calls reports how many times tag was queried.
func (s *Static) Calls(tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[tag]
}

func (s *Static) Query(_ context.Context, tag string) ([]Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[tag]++
	if err := s.errs[tag]; err != nil {
		return nil, err
	}
	out := make([]Job, len(s.jobs[tag]))
	copy(out, s.jobs[tag])
	return out, nil
}
