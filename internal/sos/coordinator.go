// Package sos coordinates outbound emergency calls: it assembles the
// call script from a stored profile, places the call through the
// telephony provider, and drives the scripted IVR conversation across
// webhook events until the call ends.
package sos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/evac-response/internal/adapter/kafka"
	"github.com/couchcryptid/evac-response/internal/adapter/telephony"
	"github.com/couchcryptid/evac-response/internal/config"
	"github.com/couchcryptid/evac-response/internal/domain"
	"github.com/couchcryptid/evac-response/internal/observability"
)

// ErrTelephonyDisabled is returned by PlaceCall when no provider
// credentials are configured.
var ErrTelephonyDisabled = errors.New("telephony is not configured")

// Dialer places an outbound call speaking a TwiML document and returns
// the provider call ID.
type Dialer interface {
	PlaceCall(ctx context.Context, twiml, targetNumber string) (string, error)
}

// PlacedCall reports a successful call placement to the API layer.
type PlacedCall struct {
	CallID    string               `json:"call_id"`
	Emergency domain.EmergencyType `json:"emergency"`
	Mode      domain.ScriptMode    `json:"mode"`
}

// Coordinator owns the lifecycle of outbound emergency calls.
type Coordinator struct {
	profiles     domain.ProfileStore
	calls        domain.ContextStore
	dialer       Dialer
	conversation *domain.Conversation
	publisher    *kafka.Publisher
	targetNumber string
	baseURL      string
	logger       *slog.Logger
	metrics      *observability.Metrics

	// Webhook events for one call must be handled in order; the
	// provider retries and can deliver concurrently.
	mu        sync.Mutex
	callLocks map[string]*sync.Mutex
}

// NewCoordinator wires the call coordinator. dialer may be nil, which
// disables call placement but keeps webhook handling alive for calls
// placed before a credential rotation.
func NewCoordinator(cfg *config.Config, profiles domain.ProfileStore, calls domain.ContextStore, dialer Dialer, publisher *kafka.Publisher, logger *slog.Logger, metrics *observability.Metrics) *Coordinator {
	return &Coordinator{
		profiles:     profiles,
		calls:        calls,
		dialer:       dialer,
		conversation: domain.NewConversation(cfg.MaxConversationTurns, cfg.MaxCallDuration),
		publisher:    publisher,
		targetNumber: cfg.TargetNumber,
		baseURL:      cfg.PublicBaseURL,
		logger:       logger,
		metrics:      metrics,
		callLocks:    make(map[string]*sync.Mutex),
	}
}

// PlaceCall loads the caller's profile, classifies the transcript,
// builds and renders the call script, and places the outbound call.
// With a public base URL configured the call runs the scripted IVR
// flow; without one it degrades to a one-way announcement.
func (c *Coordinator) PlaceCall(ctx context.Context, profileID, transcript string) (PlacedCall, error) {
	if c.dialer == nil {
		return PlacedCall{}, ErrTelephonyDisabled
	}

	profile, err := c.profiles.Get(ctx, profileID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return PlacedCall{}, err
		}
		return PlacedCall{}, fmt.Errorf("load profile: %w", err)
	}

	emergency := domain.ClassifyEmergency(transcript)
	c.metrics.Classifications.WithLabelValues(string(emergency)).Inc()

	mode := domain.ModeInlineAnnouncement
	if c.baseURL != "" {
		mode = domain.ModeScriptedIVR
	}

	script := domain.BuildCallScript(profile, emergency, transcript, mode)
	twiml := telephony.RenderScript(script, c.baseURL+"/api/conversation")

	callID, err := c.dialer.PlaceCall(ctx, twiml, c.targetNumber)
	if err != nil {
		c.metrics.CallFailures.WithLabelValues(failureReason(err)).Inc()
		return PlacedCall{}, err
	}

	if mode == domain.ModeScriptedIVR {
		call := domain.NewCallContext(callID, profile, emergency, domain.SanitizeTranscript(transcript))
		if err := c.calls.Put(ctx, call); err != nil {
			// The call is already ringing. A missing context makes the
			// IVR fall back to generic replies, so log and continue.
			c.logger.Error("store call context failed", "call_id", callID, "error", err)
		} else {
			c.metrics.ActiveCalls.Inc()
		}
	}

	c.metrics.CallsPlaced.Inc()
	c.logger.Info("emergency call placed",
		"call_id", callID,
		"profile_id", profileID,
		"emergency", emergency,
		"mode", mode,
	)
	c.publisher.Publish(ctx, kafka.Event{
		Type:       "call_placed",
		CallID:     callID,
		ProfileID:  profileID,
		Emergency:  string(emergency),
		OccurredAt: time.Now().UTC(),
	})

	return PlacedCall{CallID: callID, Emergency: emergency, Mode: mode}, nil
}

// HandleConversation processes one IVR webhook event and returns the
// TwiML reply. Events for the same call are serialized. A call whose
// context is missing (lost on a failed Put, or expired) still gets a
// spoken reply: an error page read out by the provider mid emergency
// call is never acceptable.
func (c *Coordinator) HandleConversation(ctx context.Context, callID string, input domain.OperatorInput) (string, error) {
	lock := c.lockFor(callID)
	lock.Lock()
	defer lock.Unlock()

	call, err := c.calls.Get(ctx, callID)
	if err != nil {
		if errors.Is(err, domain.ErrCallNotFound) {
			c.logger.Warn("no context for call, speaking generic reply", "call_id", callID)
			_, reply := domain.CallContext{}.ReplyTo(input.Utterance)
			instr := domain.Instruction{Say: []string{reply}, Hangup: true}
			return telephony.RenderInstruction(instr, ""), nil
		}
		return "", err
	}

	intent := domain.ClassifyOperatorIntent(input.Utterance)
	c.metrics.ConversationTurns.WithLabelValues(string(intent)).Inc()

	instr, updated := c.conversation.Advance(call, input)

	if updated.State == domain.StateTerminated {
		reason := c.conversation.TerminationReason(updated, input)
		c.endCall(ctx, updated, string(reason))
	} else if err := c.calls.Put(ctx, updated); err != nil {
		c.logger.Error("update call context failed", "call_id", callID, "error", err)
	}

	c.logger.Info("conversation turn",
		"call_id", callID,
		"turn", updated.Turn,
		"intent", intent,
		"state", updated.State,
	)
	return telephony.RenderInstruction(instr, telephony.WebhookURL(c.baseURL, callID)), nil
}

// Terminal provider call statuses. Any of these releases the call
// context regardless of conversation state.
var terminalStatuses = map[string]bool{
	"completed": true,
	"failed":    true,
	"busy":      true,
	"no-answer": true,
	"canceled":  true,
}

// HandleStatus processes a provider status callback. Non-terminal
// statuses are ignored; terminal ones release the call context.
func (c *Coordinator) HandleStatus(ctx context.Context, callID, status string) error {
	if !terminalStatuses[status] {
		return nil
	}

	lock := c.lockFor(callID)
	lock.Lock()
	defer lock.Unlock()

	call, err := c.calls.Get(ctx, callID)
	if err != nil {
		if errors.Is(err, domain.ErrCallNotFound) {
			return nil
		}
		return err
	}

	c.endCall(ctx, call, "provider_status")
	c.logger.Info("call ended by provider", "call_id", callID, "status", status)
	return nil
}

func (c *Coordinator) endCall(ctx context.Context, call domain.CallContext, reason string) {
	if err := c.calls.Delete(ctx, call.CallID); err != nil {
		c.logger.Warn("delete call context failed", "call_id", call.CallID, "error", err)
	}
	c.metrics.ActiveCalls.Dec()
	c.metrics.CallsTerminated.WithLabelValues(reason).Inc()
	c.publisher.Publish(ctx, kafka.Event{
		Type:       "call_terminated",
		CallID:     call.CallID,
		ProfileID:  call.ProfileID,
		Emergency:  string(call.EmergencyType),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})

	c.mu.Lock()
	delete(c.callLocks, call.CallID)
	c.mu.Unlock()
}

func (c *Coordinator) lockFor(callID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.callLocks[callID]
	if !ok {
		lock = &sync.Mutex{}
		c.callLocks[callID] = lock
	}
	return lock
}

func failureReason(err error) string {
	var callErr *telephony.CallError
	if errors.As(err, &callErr) {
		return string(callErr.Reason)
	}
	return string(telephony.ReasonProvider)
}
