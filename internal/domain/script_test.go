package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() EmergencyProfile {
	return EmergencyProfile{
		ID:               "user-1",
		Name:             "John Peter",
		Age:              "35",
		Sex:              "male",
		Location:         "Corpus Christi, TX",
		EmergencyContact: "+1 361 555 0143",
		MedicalInfo:      "diabetic",
	}
}

func TestBuildCallScript_Inline(t *testing.T) {
	script := BuildCallScript(testProfile(), EmergencyFire, "there's a fire, I'm trapped", ModeInlineAnnouncement)

	require.NotEmpty(t, script.Utterances)
	assert.Equal(t, ModeInlineAnnouncement, script.Mode)

	joined := strings.Join(script.Utterances, " ")
	assert.Contains(t, joined, "John Peter")
	assert.Contains(t, joined, "Age: 35")
	assert.Contains(t, joined, "Corpus Christi, TX")
	assert.Contains(t, joined, "fire, I'm trapped")
	assert.Contains(t, joined, "Fire department services are needed.")

	// Inline mode closes the call itself and never gathers input.
	assert.Contains(t, script.Utterances[len(script.Utterances)-1], "Goodbye")
	assert.Empty(t, script.GatherPrompt)
}

func TestBuildCallScript_ScriptedIVR(t *testing.T) {
	script := BuildCallScript(testProfile(), EmergencyMedical, "chest pain", ModeScriptedIVR)

	assert.Equal(t, ModeScriptedIVR, script.Mode)
	assert.NotEmpty(t, script.GatherPrompt)
	assert.NotEmpty(t, script.NoInputClosing)
	assert.NotContains(t, strings.Join(script.Utterances, " "), "Goodbye")
}

func TestBuildCallScript_MissingFields(t *testing.T) {
	script := BuildCallScript(EmergencyProfile{}, EmergencyGeneral, "", ModeInlineAnnouncement)

	joined := strings.Join(script.Utterances, " ")
	assert.Contains(t, joined, "a person in need")
	assert.Contains(t, joined, "Age: unknown")
	assert.Contains(t, joined, "location unknown")
	assert.Contains(t, joined, "Emergency assistance is needed")
	// The placeholder medical note is never spoken.
	assert.NotContains(t, joined, "Medical information")
}

func TestBuildCallScript_SpellsContactDigits(t *testing.T) {
	profile := testProfile()
	profile.EmergencyContact = "361-0143"

	script := BuildCallScript(profile, EmergencyFire, "fire", ModeInlineAnnouncement)
	joined := strings.Join(script.Utterances, " ")
	assert.Contains(t, joined, "three six one zero one four three")
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"strips angle brackets", "<Say>hello</Say>", 100, "Sayhello/Say"},
		{"clips to cap", "abcdefgh", 4, "abcd"},
		{"short input untouched", "fine", 100, "fine"},
		{"unicode clipped on rune boundary", "héllo wörld", 5, "héllo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			// Idempotence: a second pass changes nothing.
			assert.Equal(t, got, Sanitize(got, tt.max))
			assert.NotContains(t, got, "<")
			assert.NotContains(t, got, ">")
		})
	}
}

func TestSpellDigits(t *testing.T) {
	assert.Equal(t, "one three six one", SpellDigits("+1 361"))
	assert.Equal(t, "not provided", SpellDigits("not provided"))
	assert.Equal(t, "no digits here", SpellDigits("no digits here"))
	assert.Equal(t, "", SpellDigits(""))
}
