package domain

import (
	"fmt"
	"strings"
	"time"
)

// OperatorIntent is the question category detected in an operator
// utterance during a scripted IVR conversation.
type OperatorIntent string

const (
	IntentServiceType OperatorIntent = "service_type"
	IntentLocation    OperatorIntent = "location"
	IntentIdentity    OperatorIntent = "identity"
	IntentContact     OperatorIntent = "contact"
	IntentMedical     OperatorIntent = "medical"
	IntentStatus      OperatorIntent = "status"
	IntentUnknown     OperatorIntent = "unknown"
)

// OperatorInput is one inbound IVR event: transcribed operator speech
// and/or DTMF digits.
type OperatorInput struct {
	Utterance string
	Digits    string
}

// Instruction is the outbound directive for the telephony layer after a
// state transition. It is the machine's only observable side effect.
type Instruction struct {
	Say []string

	// Gather solicits further operator input with GatherPrompt; when the
	// gather times out the provider speaks NoInputClosing and hangs up.
	Gather         bool
	GatherPrompt   string
	NoInputClosing string

	Hangup bool
}

// TerminationReason explains why a conversation reached StateTerminated.
type TerminationReason string

const (
	ReasonOperatorSignoff TerminationReason = "operator_signoff"
	ReasonTurnBudget      TerminationReason = "turn_budget"
	ReasonDurationBudget  TerminationReason = "duration_budget"
	ReasonNone            TerminationReason = ""
)

const (
	continuePrompt = "Do you need any additional information? Press 1 or say yes to continue, or press 9 to end the call."
	finalClosing   = "Thank you for your assistance. Emergency services have been notified. Goodbye."
	signoffDigit   = "9"
)

// Conversation drives IVR turn-taking for an active call. It is a pure
// function from (CallContext, operator input) to (instruction, next
// CallContext): it holds no network connection and no per-call state of
// its own. Both budgets are mandatory so a call can never run unbounded.
type Conversation struct {
	maxTurns    int
	maxDuration time.Duration
}

// DefaultMaxTurns and DefaultMaxCallDuration bound conversations whose
// configuration does not say otherwise.
const (
	DefaultMaxTurns        = 10
	DefaultMaxCallDuration = 10 * time.Minute
)

// NewConversation creates a conversation policy with the given budgets.
// Non-positive values fall back to the defaults.
func NewConversation(maxTurns int, maxDuration time.Duration) *Conversation {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if maxDuration <= 0 {
		maxDuration = DefaultMaxCallDuration
	}
	return &Conversation{maxTurns: maxTurns, maxDuration: maxDuration}
}

// Advance processes one inbound operator event and returns the outbound
// instruction plus the updated call context. Malformed or unrecognized
// input is never an error: it degrades to repeating the original
// transcript so the call always produces a coherent utterance.
func (c *Conversation) Advance(call CallContext, input OperatorInput) (Instruction, CallContext) {
	if call.State == StateTerminated {
		return Instruction{Say: []string{finalClosing}, Hangup: true}, call
	}

	if isSignoff(input) {
		return c.terminate(call)
	}

	call.Turn++
	if call.Turn >= c.maxTurns || clock.Since(call.StartedAt) >= c.maxDuration {
		_, reply := call.ReplyTo(input.Utterance)
		instr, call := c.terminate(call)
		instr.Say = append([]string{reply}, instr.Say...)
		return instr, call
	}

	_, reply := call.ReplyTo(input.Utterance)
	call.State = StateAwaitingInput
	return Instruction{
		Say:            []string{reply},
		Gather:         true,
		GatherPrompt:   continuePrompt,
		NoInputClosing: "Thank you. Help is being dispatched. Goodbye.",
	}, call
}

// TerminationReason reports why a call context was terminated, judged
// against this conversation's budgets. ReasonNone for live calls.
func (c *Conversation) TerminationReason(call CallContext, input OperatorInput) TerminationReason {
	switch {
	case call.State != StateTerminated:
		return ReasonNone
	case isSignoff(input):
		return ReasonOperatorSignoff
	case clock.Since(call.StartedAt) >= c.maxDuration:
		return ReasonDurationBudget
	default:
		return ReasonTurnBudget
	}
}

func (c *Conversation) terminate(call CallContext) (Instruction, CallContext) {
	call.State = StateTerminated
	return Instruction{Say: []string{finalClosing}, Hangup: true}, call
}

func isSignoff(input OperatorInput) bool {
	if strings.Contains(input.Digits, signoffDigit) {
		return true
	}
	u := strings.ToLower(input.Utterance)
	for _, phrase := range []string{"goodbye", "that's all", "no more", "end the call"} {
		if strings.Contains(u, phrase) {
			return true
		}
	}
	return false
}

// ClassifyOperatorIntent matches an operator question against the six
// fixed categories by substring. Category order matters: the first match
// wins, mirroring the reply routing below.
func ClassifyOperatorIntent(question string) OperatorIntent {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, "what service", "what kind", "what type", "need"):
		return IntentServiceType
	case containsAny(q, "location", "where", "address"):
		return IntentLocation
	case containsAny(q, "name", "who"):
		return IntentIdentity
	case containsAny(q, "contact", "phone", "number"):
		return IntentContact
	case containsAny(q, "medical", "condition", "health"):
		return IntentMedical
	case containsAny(q, "status", "update", "still", "okay", "ok"):
		return IntentStatus
	default:
		return IntentUnknown
	}
}

// ReplyTo produces the canned reply for an operator question, populated
// from this call context. Unmatched questions echo the original
// transcript, or a generic plea when the transcript is empty.
func (call CallContext) ReplyTo(question string) (OperatorIntent, string) {
	intent := ClassifyOperatorIntent(question)

	transcript := call.Transcript
	name := orDefault(call.Profile.Name, unknownName)
	location := orDefault(call.Profile.Location, "unknown location")

	switch intent {
	case IntentServiceType:
		return intent, serviceReply(call.EmergencyType, transcript)
	case IntentLocation:
		return intent, fmt.Sprintf("The location is %s. Please send help immediately.", location)
	case IntentIdentity:
		return intent, fmt.Sprintf("This is %s. I need help.", orDefault(call.Profile.Name, "an emergency alert"))
	case IntentContact:
		return intent, fmt.Sprintf("The emergency contact is %s. Please send help to %s.",
			orDefault(call.Profile.EmergencyContact, "not available"),
			orDefault(call.Profile.Location, "the location provided"))
	case IntentMedical:
		if call.Profile.MedicalInfo != "" && call.Profile.MedicalInfo != noMedicalInfo {
			return intent, strings.TrimSpace(fmt.Sprintf("Medical information: %s. %s",
				call.Profile.MedicalInfo, orDefault(transcript, "Please send medical assistance.")))
		}
		return intent, orDefault(transcript, "Please send medical assistance immediately.")
	case IntentStatus:
		return intent, strings.TrimSpace(fmt.Sprintf(
			"The situation is still active. Please send help immediately to %s. %s",
			orDefault(call.Profile.Location, "the location"), transcript))
	default:
		if transcript != "" {
			return intent, transcript
		}
		return intent, fmt.Sprintf("This is an emergency alert for %s. Please send help to %s.",
			name, orDefault(call.Profile.Location, "the location provided"))
	}
}

func serviceReply(emergencyType EmergencyType, transcript string) string {
	switch emergencyType {
	case EmergencyFire:
		return fmt.Sprintf("I need the fire department. %s", orDefault(transcript, "There is a fire emergency."))
	case EmergencyMedical:
		return fmt.Sprintf("I need an ambulance. %s", orDefault(transcript, "There is a medical emergency."))
	case EmergencyPolice:
		return fmt.Sprintf("I need the police. %s", orDefault(transcript, "There is a security emergency."))
	case EmergencyAccident:
		return strings.TrimSpace(fmt.Sprintf("I need both fire and medical services. There has been an accident. %s", transcript))
	default:
		return fmt.Sprintf("I need emergency assistance. %s", orDefault(transcript, "Please send help immediately."))
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
