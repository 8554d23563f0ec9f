package telephony

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/couchcryptid/evac-response/internal/domain"
)

// TwiML rendering for call scripts and conversation instructions. The
// markup is assembled by hand so every spoken string passes through
// escapeXML exactly once; the domain layer has already stripped angle
// brackets as defense in depth.

const (
	sayOpen  = `<Say voice="Polly.Joanna" language="en-US"><prosody rate="80%">`
	sayClose = `</prosody></Say>`
)

// RenderScript renders an initial call script. In scripted-IVR mode the
// document ends with a Gather posting operator input to webhookURL; in
// inline mode it ends with a pause and a hangup.
func RenderScript(script domain.Script, webhookURL string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><Response>`)
	for _, u := range script.Utterances {
		writeSay(&b, u)
	}

	if script.Mode == domain.ModeScriptedIVR {
		writeGather(&b, webhookURL, script.GatherPrompt)
		writeSay(&b, script.NoInputClosing)
	} else {
		b.WriteString(`<Pause length="3"/>`)
	}

	b.WriteString(`<Hangup/></Response>`)
	return b.String()
}

// RenderInstruction renders a conversation state machine directive into
// the TwiML reply for an IVR webhook.
func RenderInstruction(instr domain.Instruction, webhookURL string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><Response>`)
	for _, s := range instr.Say {
		writeSay(&b, s)
	}
	if instr.Gather {
		writeGather(&b, webhookURL, instr.GatherPrompt)
		writeSay(&b, instr.NoInputClosing)
	}
	b.WriteString(`<Hangup/></Response>`)
	return b.String()
}

func writeSay(b *strings.Builder, text string) {
	if text == "" {
		return
	}
	b.WriteString(sayOpen)
	b.WriteString(escapeXML(text))
	b.WriteString(sayClose)
}

func writeGather(b *strings.Builder, webhookURL, prompt string) {
	fmt.Fprintf(b,
		`<Gather input="speech dtmf" language="en-US" speechTimeout="auto" action="%s" method="POST" numDigits="1" timeout="10">`,
		escapeXML(webhookURL))
	writeSay(b, prompt)
	b.WriteString(`</Gather>`)
}

// WebhookURL builds the conversation callback URL for a call.
func WebhookURL(publicBaseURL, callID string) string {
	return fmt.Sprintf("%s/api/conversation?call_id=%s", publicBaseURL, url.QueryEscape(callID))
}

// StatusCallbackURL builds the call-status callback URL, so terminal
// statuses release the call context without console configuration.
func StatusCallbackURL(publicBaseURL string) string {
	return publicBaseURL + "/api/call-status"
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlReplacer.Replace(s)
}
