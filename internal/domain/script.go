package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ScriptMode selects how a call script ends: a one-way announcement, or
// a prompt that gathers operator input for a scripted IVR conversation.
// The mode is an explicit input so both paths are unit-testable without
// a live webhook callback.
type ScriptMode string

const (
	// ModeInlineAnnouncement speaks the whole script and hangs up.
	// Used when no webhook callback endpoint is reachable.
	ModeInlineAnnouncement ScriptMode = "inline-announcement"

	// ModeScriptedIVR ends the script with a prompt soliciting operator
	// follow-up; the conversation state machine handles replies.
	ModeScriptedIVR ScriptMode = "scripted-ivr"
)

// Sanitization caps per profile field, in characters. Applied after
// angle brackets are stripped so the spoken payload can never break the
// downstream text-to-speech markup.
const (
	maxNameLen       = 100
	maxAgeLen        = 20
	maxSexLen        = 20
	maxLocationLen   = 200
	maxContactLen    = 50
	maxMedicalLen    = 200
	maxTranscriptLen = 500
)

// Script is the ordered spoken payload for an outbound emergency call.
type Script struct {
	Utterances []string
	Mode       ScriptMode

	// GatherPrompt is spoken when Mode is ModeScriptedIVR to solicit
	// operator input, and NoInputClosing when the gather times out.
	GatherPrompt   string
	NoInputClosing string
}

const (
	inlineClosing   = "This is an automated emergency alert. Help is being dispatched. Goodbye."
	gatherPrompt    = "Please press any key or speak if you need more information."
	noInputClosing  = "Thank you. Help is being dispatched."
	digitWordsTable = "zero one two three four five six seven eight nine"
)

// BuildCallScript synthesizes the spoken script for an outbound call
// from the caller profile, classified emergency type, and transcript.
// All free-text fields are sanitized; missing fields fall back to the
// documented spoken defaults.
func BuildCallScript(profile EmergencyProfile, emergencyType EmergencyType, transcript string, mode ScriptMode) Script {
	name := sanitizeField(profile.Name, maxNameLen, unknownName)
	age := sanitizeField(profile.Age, maxAgeLen, unknownValue)
	sex := sanitizeField(profile.Sex, maxSexLen, unknownValue)
	location := sanitizeField(profile.Location, maxLocationLen, unknownLocation)
	contact := SpellDigits(sanitizeField(profile.EmergencyContact, maxContactLen, noContact))

	utterances := []string{
		fmt.Sprintf("Hello, this is an automated emergency alert system calling on behalf of %s.", name),
		fmt.Sprintf("Age: %s, Sex: %s.", age, sex),
		fmt.Sprintf("Location: %s.", location),
		fmt.Sprintf("Emergency contact: %s.", contact),
	}

	if medical := sanitizeField(profile.MedicalInfo, maxMedicalLen, ""); medical != "" && medical != noMedicalInfo {
		utterances = append(utterances, fmt.Sprintf("Medical information: %s.", medical))
	}

	message := sanitizeField(transcript, maxTranscriptLen, "Emergency assistance is needed")
	utterances = append(utterances,
		fmt.Sprintf("Message from the person: %s.", message),
		emergencyType.ServiceNeeded(),
	)

	script := Script{Utterances: utterances, Mode: mode}
	switch mode {
	case ModeScriptedIVR:
		script.GatherPrompt = gatherPrompt
		script.NoInputClosing = noInputClosing
	default:
		script.Utterances = append(script.Utterances,
			"This is an AI call. Can you please send help as soon as possible?",
			inlineClosing,
		)
	}
	return script
}

// Sanitize strips angle brackets and clips the string to max characters.
// It is idempotent: sanitizing already-sanitized input is a no-op.
// Clipping counts runes, not bytes, so multi-byte input is never split
// into invalid UTF-8.
func Sanitize(s string, max int) string {
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	if utf8.RuneCountInString(s) > max {
		s = string([]rune(s)[:max])
	}
	return s
}

// SanitizeTranscript applies the transcript cap. Call contexts store
// the sanitized form so every later reply speaks the same text the
// initial script did.
func SanitizeTranscript(s string) string {
	return Sanitize(strings.TrimSpace(s), maxTranscriptLen)
}

func sanitizeField(s string, max int, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return Sanitize(s, max)
}

// SpellDigits converts every digit in a phone-number-like string to its
// spoken word, spaced one by one for text-to-speech clarity:
// "+1 361-5543" → "one three six one five five four three". Strings with
// no digits (including the "not provided" default) pass through as-is.
func SpellDigits(phone string) string {
	if phone == "" || strings.EqualFold(phone, noContact) {
		return phone
	}

	words := strings.Fields(digitWordsTable)
	var spelled []string
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			spelled = append(spelled, words[r-'0'])
		}
	}
	if len(spelled) == 0 {
		return phone
	}
	return strings.Join(spelled, " ")
}
