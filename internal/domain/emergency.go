package domain

import "strings"

// EmergencyType is the closed set of emergency categories a transcript
// can classify into. It is derived per transcript, never stored.
type EmergencyType string

const (
	EmergencyFire     EmergencyType = "fire"
	EmergencyMedical  EmergencyType = "medical"
	EmergencyPolice   EmergencyType = "police"
	EmergencyAccident EmergencyType = "accident"
	EmergencyGeneral  EmergencyType = "general"
)

// Keyword sets per category. A keyword counts once per transcript
// regardless of how often it appears.
var (
	fireKeywords = []string{
		"fire", "burning", "smoke", "flames", "blaze", "burn",
	}
	medicalKeywords = []string{
		"heart", "chest", "pain", "hurt", "injured", "bleeding",
		"unconscious", "cannot breathe", "ambulance", "medical",
		"doctor", "hospital",
	}
	policeKeywords = []string{
		"attack", "robbery", "theft", "intruder", "threat", "danger",
		"weapon", "police", "crime",
	}
	accidentKeywords = []string{
		"accident", "crash", "collision", "car", "vehicle", "wreck",
	}
)

// ClassifyEmergency maps free-text transcribed speech to an
// EmergencyType. It is total: any input, including the empty string,
// yields a valid type. When no keyword signals are present the result
// is EmergencyMedical (see the package documentation for why).
func ClassifyEmergency(text string) EmergencyType {
	message := strings.ToLower(text)

	fireScore := countMatches(message, fireKeywords)
	medicalScore := countMatches(message, medicalKeywords)
	policeScore := countMatches(message, policeKeywords)
	accidentScore := countMatches(message, accidentKeywords)

	// Resolution order matters: first matching rule wins.
	switch {
	case fireScore > 0 && fireScore >= medicalScore && fireScore >= policeScore:
		return EmergencyFire
	case medicalScore > 0 && medicalScore >= policeScore && medicalScore >= accidentScore:
		return EmergencyMedical
	case policeScore > 0 && policeScore >= accidentScore:
		return EmergencyPolice
	case accidentScore > 0:
		return EmergencyAccident
	}

	return EmergencyMedical
}

func countMatches(message string, keywords []string) int {
	matches := 0
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			matches++
		}
	}
	return matches
}

// ServiceNeeded returns the fixed "service needed" sentence spoken after
// the emergency details, selected by emergency type.
func (t EmergencyType) ServiceNeeded() string {
	switch t {
	case EmergencyFire:
		return "Fire department services are needed."
	case EmergencyMedical:
		return "Ambulance and medical services are needed."
	case EmergencyPolice:
		return "Police services are needed."
	case EmergencyAccident:
		return "Fire and medical services are needed for an accident."
	default:
		return "Emergency services are needed."
	}
}
