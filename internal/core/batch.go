package core

import (
	"fmt"
	"sync"
	"time"
)

// BatchState is where an import batch is in its lifecycle.
type BatchState string

const (
	StateIdle       BatchState = "idle"
	StatePreviewing BatchState = "previewing"
	StatePreviewed  BatchState = "previewed"
	StateCommitting BatchState = "committing"
	StateCommitted  BatchState = "committed"
	StateFailed     BatchState = "failed"
)

// batchTransitions lists the legal moves. Anything else is
// ErrInvalidTransition.
var batchTransitions = map[BatchState][]BatchState{
	StateIdle:       {StatePreviewing},
	StatePreviewing: {StatePreviewed, StateIdle},
	StatePreviewed:  {StateCommitting, StateIdle},
	StateCommitting: {StateCommitted, StateFailed},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to BatchState) bool {
	for _, s := range batchTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Batch is one vendor upload moving from preview to commit.
type Batch struct {
	ID          string
	VendorID    string
	ProductType ProductType
	FileName    string
	CreatedAt   time.Time
	ExpiresAt   time.Time

	mu        sync.Mutex
	state     BatchState
	cancelled bool
	result    *ImportBatchResult
	commit    *CommitResult
	err       error
}

func newBatch(id, vendorID string, productType ProductType, fileName string, now time.Time, ttl time.Duration) *Batch {
	return &Batch{
		ID:          id,
		VendorID:    vendorID,
		ProductType: productType,
		FileName:    fileName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
		state:       StateIdle,
	}
}

// transition moves the batch to next, or fails with ErrInvalidTransition.
// Callers hold b.mu.
func (b *Batch) transition(next BatchState) error {
	if !CanTransition(b.state, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.state, next)
	}
	b.state = next
	return nil
}

// State returns the current state.
func (b *Batch) State() BatchState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Result returns the preview, or nil before the batch is previewed.
func (b *Batch) Result() *ImportBatchResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result
}

// CommitResult returns the outcome of confirm, or nil before it ran.
func (b *Batch) CommitResult() *CommitResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commit
}

// Expired reports whether the batch's preview is too old to confirm.
func (b *Batch) Expired(now time.Time) bool {
	return now.After(b.ExpiresAt)
}

// BatchSnapshot is a JSON view of a batch.
type BatchSnapshot struct {
	ID          string             `json:"id"`
	VendorID    string             `json:"vendorId"`
	ProductType ProductType        `json:"productType"`
	FileName    string             `json:"fileName,omitempty"`
	State       BatchState         `json:"state"`
	Cancelled   bool               `json:"cancelled,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	ExpiresAt   time.Time          `json:"expiresAt"`
	Preview     *ImportBatchResult `json:"preview,omitempty"`
	Commit      *CommitResult      `json:"commit,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// Snapshot returns a consistent view of the batch.
func (b *Batch) Snapshot() BatchSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := BatchSnapshot{
		ID:          b.ID,
		VendorID:    b.VendorID,
		ProductType: b.ProductType,
		FileName:    b.FileName,
		State:       b.state,
		Cancelled:   b.cancelled,
		CreatedAt:   b.CreatedAt,
		ExpiresAt:   b.ExpiresAt,
		Preview:     b.result,
		Commit:      b.commit,
	}
	if b.err != nil {
		snap.Error = FormatUserError(b.err)
	}
	return snap
}
