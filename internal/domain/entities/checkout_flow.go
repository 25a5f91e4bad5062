package entities

import "time"

// FlowState is the orchestrator state of one user-initiated payment attempt.
//
//	idle -> validating -> creating -> {complete | awaiting_poll | failed}
//	awaiting_poll -> polling -> {complete | timed_out | failed}
type FlowState string

const (
	FlowStateIdle         FlowState = "idle"
	FlowStateValidating   FlowState = "validating"
	FlowStateCreating     FlowState = "creating"
	FlowStateAwaitingPoll FlowState = "awaiting_poll"
	FlowStatePolling      FlowState = "polling"
	FlowStateComplete     FlowState = "complete"
	FlowStateTimedOut     FlowState = "timed_out"
	FlowStateFailed       FlowState = "failed"
)

var flowTransitions = map[FlowState][]FlowState{
	FlowStateIdle:         {FlowStateValidating},
	FlowStateValidating:   {FlowStateCreating, FlowStateFailed},
	FlowStateCreating:     {FlowStateComplete, FlowStateAwaitingPoll, FlowStateFailed},
	FlowStateAwaitingPoll: {FlowStatePolling, FlowStateFailed},
	FlowStatePolling:      {FlowStateComplete, FlowStateTimedOut, FlowStateFailed},
}

// CanTransition reports whether from -> to is an edge of the state machine.
func (from FlowState) CanTransition(to FlowState) bool {
	for _, next := range flowTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal states accept no further transitions; a new attempt is required.
func (s FlowState) Terminal() bool {
	switch s {
	case FlowStateComplete, FlowStateTimedOut, FlowStateFailed:
		return true
	}
	return false
}

// InFlight is true while a creating/polling cycle owns the session.
func (s FlowState) InFlight() bool {
	switch s {
	case FlowStateValidating, FlowStateCreating, FlowStateAwaitingPoll, FlowStatePolling:
		return true
	}
	return false
}

// PollState tracks the status polling of a pending transaction. It exists
// only between awaiting_poll and a terminal state.
type PollState struct {
	TransactionID string    `json:"transaction_id"`
	Attempt       int       `json:"attempt"`
	MaxAttempts   int       `json:"max_attempts"`
	LastPolledAt  time.Time `json:"last_polled_at"`
}

// PixCodeValidity is how long a generated PIX code is shown as payable.
const PixCodeValidity = 30 * time.Minute

// CheckoutAttempt is a point-in-time view of the attempt bound to a session.
type CheckoutAttempt struct {
	ID          string             `json:"id"`
	SessionID   string             `json:"session_id"`
	State       FlowState          `json:"state"`
	Result      *TransactionResult `json:"result,omitempty"`
	Err         error              `json:"-"`
	Poll        *PollState         `json:"poll,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

// ExpiresAt is when the generated code stops being shown as payable. Zero
// unless the attempt completed.
func (a CheckoutAttempt) ExpiresAt() time.Time {
	if a.State != FlowStateComplete || a.CompletedAt == nil {
		return time.Time{}
	}
	return a.CompletedAt.Add(PixCodeValidity)
}
