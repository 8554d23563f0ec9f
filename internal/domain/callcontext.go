package domain

import (
	"context"
	"errors"
	"time"
)

// ConversationState tracks where an active call sits in the IVR flow.
type ConversationState string

const (
	StateInitial       ConversationState = "initial"
	StateAwaitingInput ConversationState = "awaiting_input"
	StateTerminated    ConversationState = "terminated"
)

// CallContext is the ephemeral per-call record keyed by the telephony
// provider's call identifier. It is created at call placement, consulted
// and mutated on each inbound IVR webhook event, and deleted when the
// provider reports a terminal call status. Access for a single call must
// be serialized by the owner; the context itself is a plain value.
type CallContext struct {
	CallID        string            `json:"call_id"`
	ProfileID     string            `json:"profile_id"`
	Profile       EmergencyProfile  `json:"profile"`
	EmergencyType EmergencyType     `json:"emergency_type"`
	Transcript    string            `json:"transcript"`
	State         ConversationState `json:"state"`
	Turn          int               `json:"turn"`
	StartedAt     time.Time         `json:"started_at"`
}

// NewCallContext snapshots a profile into a fresh call context. The
// snapshot is immutable for the duration of the call except through the
// conversation state machine.
func NewCallContext(callID string, profile EmergencyProfile, emergencyType EmergencyType, transcript string) CallContext {
	return CallContext{
		CallID:        callID,
		ProfileID:     profile.ID,
		Profile:       profile,
		EmergencyType: emergencyType,
		Transcript:    transcript,
		State:         StateInitial,
		StartedAt:     clock.Now(),
	}
}

// ErrCallNotFound is returned by ContextStore.Get for unknown call IDs.
var ErrCallNotFound = errors.New("call context not found")

// ContextStore holds active call contexts keyed by call ID. An
// in-process map suffices for single-instance deployments; a distributed
// keyed store is required once webhook traffic can land on more than one
// instance. The choice is configuration, not a module-level singleton.
type ContextStore interface {
	Put(ctx context.Context, call CallContext) error
	Get(ctx context.Context, callID string) (CallContext, error)
	Delete(ctx context.Context, callID string) error
}
