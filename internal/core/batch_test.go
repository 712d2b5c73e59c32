package core

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to BatchState
		want     bool
	}{
		{StateIdle, StatePreviewing, true},
		{StatePreviewing, StatePreviewed, true},
		{StatePreviewing, StateIdle, true},
		{StatePreviewed, StateCommitting, true},
		{StatePreviewed, StateIdle, true},
		{StateCommitting, StateCommitted, true},
		{StateCommitting, StateFailed, true},

		{StateIdle, StateCommitting, false},
		{StatePreviewed, StateCommitted, false},
		{StateCommitted, StateCommitting, false},
		{StateCommitted, StateIdle, false},
		{StateFailed, StateCommitting, false},
		{StateCommitting, StateIdle, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestBatch_TransitionErrors(t *testing.T) {
	b := newBatch("b1", "v1", ProductTypeDiamond, "f.xlsx", time.Now(), time.Minute)

	if b.State() != StateIdle {
		t.Fatalf("new batch state = %s, want idle", b.State())
	}

	err := b.transition(StateCommitted)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("transition(idle->committed) = %v, want ErrInvalidTransition", err)
	}
	if b.State() != StateIdle {
		t.Errorf("failed transition changed state to %s", b.State())
	}
}

func TestBatch_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := newBatch("b1", "v1", ProductTypeDiamond, "", now, 10*time.Minute)

	if b.Expired(now.Add(5 * time.Minute)) {
		t.Error("batch expired too early")
	}
	if !b.Expired(now.Add(11 * time.Minute)) {
		t.Error("batch should be expired")
	}
}
