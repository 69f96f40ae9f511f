// Package tracking remembers gateway correlation ids across a
// submit/poll exchange so repeated polls can default to the most recent
// submission.
package tracking

import (
	"fmt"
	"sync"
	"time"
)

// Status is the lifecycle position of a tracked submission.
type Status int

const (
	StatusSubmitted    Status = iota // submitted, awaiting acknowledgement
	StatusAcknowledged               // acknowledged, poll for the result
	StatusPending                    // polled, result not ready yet
	StatusFinal                      // terminal response retrieved
	StatusFailed                     // gateway reported errors
)

// Submission is one tracked submission.
type Submission struct {
	CorrelationID string
	Endpoint      string
	Interval      string
	Status        Status
	SubmittedAt   time.Time
	UpdatedAt     time.Time
}

// Tracker tracks submissions by correlation id. It is safe for
// concurrent use; independent submissions may share one tracker.
type Tracker struct {
	mu          sync.RWMutex
	submissions map[string]*Submission
	last        string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		submissions: make(map[string]*Submission),
	}
}

// Track records an acknowledged submission and makes its correlation id
// the polling default.
func (t *Tracker) Track(correlationID, endpoint, interval string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.submissions[correlationID] = &Submission{
		CorrelationID: correlationID,
		Endpoint:      endpoint,
		Interval:      interval,
		Status:        StatusAcknowledged,
		SubmittedAt:   now,
		UpdatedAt:     now,
	}
	t.last = correlationID
}

// SetStatus advances a tracked submission to a new status.
func (t *Tracker) SetStatus(correlationID string, status Status) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sub, exists := t.submissions[correlationID]
	if !exists {
		return fmt.Errorf("tracking: correlation id %s not tracked", correlationID)
	}
	sub.Status = status
	sub.UpdatedAt = time.Now()
	return nil
}

// Get returns a copy of a tracked submission.
func (t *Tracker) Get(correlationID string) (Submission, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	sub, exists := t.submissions[correlationID]
	if !exists {
		return Submission{}, false
	}
	return *sub, true
}

// LastCorrelationID returns the most recently tracked correlation id,
// empty when nothing has been tracked.
func (t *Tracker) LastCorrelationID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// Remove forgets a submission once the caller has its final result.
func (t *Tracker) Remove(correlationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.submissions, correlationID)
	if t.last == correlationID {
		t.last = ""
	}
}
