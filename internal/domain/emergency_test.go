package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyEmergency(t *testing.T) {
	tests := []struct {
		name string
		text string
		want EmergencyType
	}{
		{"fire keywords", "There is a fire and smoke everywhere", EmergencyFire},
		{"medical keywords", "chest pain, can't breathe", EmergencyMedical},
		{"police keywords", "someone broke in with a weapon", EmergencyPolice},
		{"accident keywords", "car crash on the highway", EmergencyAccident},
		{"empty input defaults to medical", "", EmergencyMedical},
		{"no signal defaults to medical", "hello there, lovely weather today", EmergencyMedical},
		{"unicode garbage defaults to medical", "💥🚒 ?!-- ééé", EmergencyMedical},
		{"fire beats single medical keyword", "fire in the kitchen, it hurt", EmergencyFire},
		{"uppercase input", "FIRE AND FLAMES", EmergencyFire},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyEmergency(tt.text))
		})
	}
}

// Classification is total: any input must yield one of the five types,
// never panic.
func TestClassifyEmergency_Total(t *testing.T) {
	valid := map[EmergencyType]bool{
		EmergencyFire: true, EmergencyMedical: true, EmergencyPolice: true,
		EmergencyAccident: true, EmergencyGeneral: true,
	}
	inputs := []string{
		"", " ", "\x00\xff", "🔥", "a", "<script>alert(1)</script>",
		"fire medical police accident all at once car crash weapon smoke",
	}
	for _, in := range inputs {
		assert.True(t, valid[ClassifyEmergency(in)], "input %q", in)
	}
}

func TestServiceNeeded(t *testing.T) {
	assert.Equal(t, "Fire department services are needed.", EmergencyFire.ServiceNeeded())
	assert.Equal(t, "Ambulance and medical services are needed.", EmergencyMedical.ServiceNeeded())
	assert.Equal(t, "Police services are needed.", EmergencyPolice.ServiceNeeded())
	assert.Equal(t, "Fire and medical services are needed for an accident.", EmergencyAccident.ServiceNeeded())
	assert.Equal(t, "Emergency services are needed.", EmergencyGeneral.ServiceNeeded())
}
