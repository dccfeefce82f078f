package pipeline

// limiter.go caps the number of pipeline runs executing at once.
//
// Runs hold a slot for their whole duration. When every slot is taken a new
// run waits up to maxWait and then fails with ErrTooManyRuns. WaitForDrain
// lets shutdown block until in-flight runs finish.

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrTooManyRuns is returned when all run slots are occupied and the wait
// timeout expires.
var ErrTooManyRuns = errors.New("too many concurrent runs, please try again later")

// DefaultMaxConcurrentRuns is the default limit for parallel runs.
const DefaultMaxConcurrentRuns = 1

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// RunLimiter is a semaphore over pipeline runs, keyed by run ID.
type RunLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active map[string]time.Time
}

// NewRunLimiter creates a limiter admitting at most maxConcurrent runs.
func NewRunLimiter(maxConcurrent int, maxWait time.Duration) *RunLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentRuns
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &RunLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		active:  make(map[string]time.Time),
	}
}

// Acquire takes a slot for runID. It returns ErrTooManyRuns when no slot
// frees up within the wait time, or the context error if ctx ends first.
// The caller must call Release with the same runID.
func (l *RunLimiter) Acquire(ctx context.Context, runID string) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active[runID] = time.Now()
		l.mu.Unlock()
		return nil
	case <-timer.C:
		return ErrTooManyRuns
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the slot held by runID. Releasing an unknown run is a no-op.
func (l *RunLimiter) Release(runID string) {
	l.mu.Lock()
	_, ok := l.active[runID]
	delete(l.active, runID)
	l.mu.Unlock()

	if ok {
		<-l.slots
	}
}

// Do runs fn while holding a slot for runID.
func (l *RunLimiter) Do(ctx context.Context, runID string, fn func(context.Context)) error {
	if err := l.Acquire(ctx, runID); err != nil {
		return err
	}
	defer l.Release(runID)

	fn(ctx)
	return nil
}

// ActiveCount returns the number of runs holding a slot.
func (l *RunLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.active)
}

// MaxConcurrent returns the slot count.
func (l *RunLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no run holds a slot or ctx is cancelled.
func (l *RunLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ActiveRun describes one run holding a slot.
type ActiveRun struct {
	RunID   string    `json:"run_id"`
	Started time.Time `json:"started"`
}

// LimiterStatus is a snapshot of the limiter for monitoring.
type LimiterStatus struct {
	Active        int         `json:"active"`
	Available     int         `json:"available"`
	MaxConcurrent int         `json:"max_concurrent"`
	Runs          []ActiveRun `json:"runs"`
}

// Status returns the current limiter state, runs ordered by start time.
func (l *RunLimiter) Status() LimiterStatus {
	l.mu.Lock()
	runs := make([]ActiveRun, 0, len(l.active))
	for id, started := range l.active {
		runs = append(runs, ActiveRun{RunID: id, Started: started})
	}
	l.mu.Unlock()

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].Started.Equal(runs[j].Started) {
			return runs[i].Started.Before(runs[j].Started)
		}
		return runs[i].RunID < runs[j].RunID
	})

	return LimiterStatus{
		Active:        len(runs),
		Available:     cap(l.slots) - len(runs),
		MaxConcurrent: cap(l.slots),
		Runs:          runs,
	}
}
