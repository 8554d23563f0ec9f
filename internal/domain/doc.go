// Package domain models emergency SOS calls and evacuation routing.
//
// # Emergency classification
//
// Transcribed speech is mapped to one of five emergency types (fire,
// medical, police, accident, general) by counting distinct keyword
// matches per category and resolving in a fixed order. Ambiguous or
// empty input always classifies as medical: dispatching an ambulance is
// the safest default action when the situation is unclear. This is a
// deliberate policy choice, not a gap — do not "fix" it without product
// input.
//
// # Call scripts
//
// Spoken-text payloads are assembled from the caller's profile and
// transcript. Every free-text field is sanitized before it reaches the
// telephony markup layer: angle brackets are stripped and fields are
// clipped to fixed caps (name 100, age 20, sex 20, location 200,
// emergency contact 50, medical note 200, transcript 500 characters).
// Truncation is silent; inputs are never rejected.
//
// # Conversation flow
//
// An outbound call either announces the script and hangs up (inline
// mode, used when no webhook callback is reachable) or gathers operator
// input and answers questions (scripted IVR mode). Operator questions
// are matched by substring against six categories: service type,
// location, identity, emergency contact, medical condition, and status
// check. Unrecognized questions fall back to repeating the original
// transcript so the call always produces a coherent utterance. A
// configured turn budget bounds call length; the elapsed-time budget is
// measured against the injected clock.
//
// # Destination ranking
//
// Candidate shelters are scored against the caller's origin and needs:
//
//	distanceScore = distance < 50 km ? (1/(km+1))*100 : 10
//	capacityScore = capacity/3000 * 100   (uncapped above 100)
//	typeScore     = 100 medical match | 90 special-needs | 80 pets | 50 baseline
//	facilityScore = tag count / 4 * 100
//	total = (0.3*distance + 0.2*capacity + 0.3*type + 0.2*facility) * floodPenalty
//
// floodPenalty is 0.5 when the shelter sits inside a known flood-zone
// circle, else 1.0. Distances use the Haversine great-circle formula
// with an Earth radius of 6371 km. Ties keep catalog insertion order
// (the sort is stable).
package domain
