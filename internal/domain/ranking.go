package domain

import (
	"math"
	"sort"
)

// EvacuationNeeds are the caller's stated requirements that bias shelter
// selection.
type EvacuationNeeds struct {
	Medical      bool `json:"medical"`
	Pets         bool `json:"pets"`
	SpecialNeeds bool `json:"special_needs"`
}

// RankedDestination is a shelter scored against an origin and needs.
// Score is the weighted safety score described in the package docs;
// DistanceKm is the Haversine distance from the origin.
type RankedDestination struct {
	SafeDestination
	DistanceKm float64 `json:"distance_km"`
	Score      int     `json:"score"`
}

// SafetyScore computes the weighted safety score for one destination.
// The formula and its constants are preserved verbatim from the original
// evacuation planner; the 0.5 flood penalty in particular is a policy
// choice, not a tunable.
func SafetyScore(dest SafeDestination, origin Coordinate, needs EvacuationNeeds, floodZones []FloodZone) int {
	distance := HaversineKm(origin, dest.Position)

	// Closer is better, with a floor so distant shelters never score zero.
	distanceScore := 10.0
	if distance < 50 {
		distanceScore = (1 / (distance + 1)) * 100
	}

	capacityScore := float64(dest.Capacity) / 3000 * 100

	typeScore := 50.0
	switch {
	case needs.Medical && dest.Category == CategoryMedicalFacility:
		typeScore = 100
	case needs.Pets && dest.HasFacility(FacilityPetFriendly):
		typeScore = 80
	case needs.SpecialNeeds && dest.HasFacility(FacilitySpecialNeeds):
		typeScore = 90
	}

	facilityScore := float64(len(dest.Facilities)) / 4 * 100

	floodPenalty := 1.0
	for _, zone := range floodZones {
		if zone.Contains(dest.Position) {
			floodPenalty = 0.5
			break
		}
	}

	total := (distanceScore*0.3 + capacityScore*0.2 + typeScore*0.3 + facilityScore*0.2) * floodPenalty
	return int(math.Round(total))
}

// RankDestinations scores every catalog entry against the origin and
// needs and returns the top count, sorted descending by score. The sort
// is stable, so equal scores keep catalog insertion order (the
// documented tie-break policy). Deterministic: identical inputs always
// produce the same list.
func RankDestinations(origin Coordinate, needs EvacuationNeeds, catalog []SafeDestination, floodZones []FloodZone, count int) []RankedDestination {
	ranked := make([]RankedDestination, 0, len(catalog))
	for _, dest := range catalog {
		ranked = append(ranked, RankedDestination{
			SafeDestination: dest,
			DistanceKm:      HaversineKm(origin, dest.Position),
			Score:           SafetyScore(dest, origin, needs, floodZones),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if count > 0 && count < len(ranked) {
		ranked = ranked[:count]
	}
	return ranked
}
