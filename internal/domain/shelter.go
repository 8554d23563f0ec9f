package domain

// ShelterCategory is the closed set of safe-destination categories.
type ShelterCategory string

const (
	CategoryMajorShelter    ShelterCategory = "major_shelter"
	CategoryGeneralShelter  ShelterCategory = "general_shelter"
	CategoryMedicalFacility ShelterCategory = "medical_facility"
	CategoryOther           ShelterCategory = "other"
)

// Facility tags a shelter can advertise.
const (
	FacilityMedical      = "medical"
	FacilityFood         = "food"
	FacilityWater        = "water"
	FacilityPetFriendly  = "pet_friendly"
	FacilitySpecialNeeds = "special_needs"
)

// SafeDestination is a candidate evacuation endpoint. Both the bundled
// catalog and live places-search results conform to this shape before
// ranking.
type SafeDestination struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	Position    Coordinate      `json:"position"`
	Capacity    int             `json:"capacity"`
	Category    ShelterCategory `json:"type"`
	Facilities  []string        `json:"facilities"`
	Description string          `json:"description,omitempty"`
}

// HasFacility reports whether the destination advertises the given tag.
func (d SafeDestination) HasFacility(tag string) bool {
	for _, f := range d.Facilities {
		if f == tag {
			return true
		}
	}
	return false
}

// FloodZone is a circular area known to flood, used to penalize shelters
// inside it.
type FloodZone struct {
	Center   Coordinate `json:"center"`
	RadiusKm float64    `json:"radius_km"`
}

// Contains reports whether a point falls within the zone's radius.
func (z FloodZone) Contains(p Coordinate) bool {
	return HaversineKm(p, z.Center) < z.RadiusKm
}

// CorpusChristiShelters is the bundled safe-zone catalog for the Corpus
// Christi, TX area, used when no live places provider is configured or
// the provider returns nothing.
var CorpusChristiShelters = []SafeDestination{
	{
		ID: 1, Name: "Richard M. Borchard Regional Fairgrounds",
		Address:  "1213 Terry Shamsie Blvd, Robstown, TX",
		Position: Coordinate{Lat: 27.7908, Lng: -97.6689},
		Capacity: 2000, Category: CategoryMajorShelter,
		Facilities:  []string{FacilityMedical, FacilityFood, FacilityWater, FacilityPetFriendly},
		Description: "Large fairground facility with extensive shelter capacity",
	},
	{
		ID: 2, Name: "Del Mar College East Campus",
		Address:  "3209 S Staples St, Corpus Christi, TX",
		Position: Coordinate{Lat: 27.7569, Lng: -97.3681},
		Capacity: 1500, Category: CategoryMajorShelter,
		Facilities:  []string{FacilityMedical, FacilityFood, FacilityWater},
		Description: "College campus with multiple buildings for shelter",
	},
	{
		ID: 3, Name: "American Bank Center",
		Address:  "1901 N Shoreline Blvd, Corpus Christi, TX",
		Position: Coordinate{Lat: 27.8052, Lng: -97.3972},
		Capacity: 3000, Category: CategoryMajorShelter,
		Facilities:  []string{FacilityMedical, FacilityFood, FacilityWater, FacilitySpecialNeeds},
		Description: "Large arena facility, main evacuation center",
	},
	{
		ID: 4, Name: "Flour Bluff High School",
		Address:  "2505 Waldron Rd, Corpus Christi, TX",
		Position: Coordinate{Lat: 27.6589, Lng: -97.3289},
		Capacity: 800, Category: CategoryGeneralShelter,
		Facilities:  []string{FacilityFood, FacilityWater},
		Description: "High school gymnasium and facilities",
	},
	{
		ID: 5, Name: "King High School",
		Address:  "5225 Gollihar Rd, Corpus Christi, TX",
		Position: Coordinate{Lat: 27.7169, Lng: -97.4289},
		Capacity: 900, Category: CategoryGeneralShelter,
		Facilities:  []string{FacilityFood, FacilityWater, FacilityPetFriendly},
		Description: "High school with shelter facilities",
	},
	{
		ID: 6, Name: "Ray High School",
		Address:  "2929 Swantner Dr, Corpus Christi, TX",
		Position: Coordinate{Lat: 27.7919, Lng: -97.4589},
		Capacity: 850, Category: CategoryGeneralShelter,
		Facilities:  []string{FacilityFood, FacilityWater},
		Description: "High school shelter location",
	},
	{
		ID: 7, Name: "Corpus Christi Medical Center Bay Area",
		Address:  "7101 S Padre Island Dr, Corpus Christi, TX",
		Position: Coordinate{Lat: 27.6369, Lng: -97.2869},
		Capacity: 300, Category: CategoryMedicalFacility,
		Facilities:  []string{FacilityMedical, FacilitySpecialNeeds, "dialysis", "oxygen"},
		Description: "Hospital with special medical needs support",
	},
	{
		ID: 8, Name: "CHRISTUS Spohn Hospital Corpus Christi - Shoreline",
		Address:  "600 Elizabeth St, Corpus Christi, TX",
		Position: Coordinate{Lat: 27.8009, Lng: -97.3939},
		Capacity: 350, Category: CategoryMedicalFacility,
		Facilities:  []string{FacilityMedical, FacilitySpecialNeeds, "dialysis", "oxygen"},
		Description: "Main hospital facility with emergency services",
	},
}

// CorpusChristiFloodZones lists flood-prone areas whose shelters score
// half. Oso Bay, Laguna Madre, and the port area respectively.
var CorpusChristiFloodZones = []FloodZone{
	{Center: Coordinate{Lat: 27.6800, Lng: -97.2400}, RadiusKm: 2},
	{Center: Coordinate{Lat: 27.7200, Lng: -97.2800}, RadiusKm: 1.5},
	{Center: Coordinate{Lat: 27.8300, Lng: -97.3500}, RadiusKm: 1},
}
