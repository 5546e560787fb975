package di

import (
	"sync"
	"time"
)

// ColdStartTracker reports whether an invocation is the first one served by
// this process.
type ColdStartTracker struct {
	startedAt time.Time
	once      sync.Once
}

// NewColdStartTracker records the process start.
func NewColdStartTracker() *ColdStartTracker {
	return &ColdStartTracker{startedAt: time.Now()}
}

// Observe returns true exactly once, for the first invocation.
func (t *ColdStartTracker) Observe() bool {
	cold := false
	t.once.Do(func() { cold = true })
	return cold
}

// SinceStart returns the time since the process started.
func (t *ColdStartTracker) SinceStart() time.Duration {
	return time.Since(t.startedAt)
}

// ProvideColdStartTracker creates a cold start tracker for Wire.
func ProvideColdStartTracker() *ColdStartTracker {
	return NewColdStartTracker()
}
