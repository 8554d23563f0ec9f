package domain

import (
	"context"
	"errors"
	"time"
)

// EmergencyProfile is the caller record spoken to the operator during an
// SOS call. All fields except ID are free text supplied by the user and
// must be sanitized before entering any spoken script.
type EmergencyProfile struct {
	ID               string    `json:"user_id"`
	Name             string    `json:"name"`
	Age              string    `json:"age"`
	Sex              string    `json:"sex"`
	Location         string    `json:"location"`
	EmergencyContact string    `json:"emergency_contact"`
	MedicalInfo      string    `json:"medical_info"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

// Defaults for absent profile fields, matching what the script builder
// speaks when a field was never provided.
const (
	unknownName     = "a person in need"
	unknownValue    = "unknown"
	unknownLocation = "location unknown"
	noContact       = "not provided"
	noMedicalInfo   = "None provided"
)

// ErrProfileNotFound is returned by ProfileStore.Get for unknown IDs.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore persists caller profiles. Implementations must make
// Upsert idempotent on profile ID.
type ProfileStore interface {
	Upsert(ctx context.Context, profile EmergencyProfile) error
	Get(ctx context.Context, id string) (EmergencyProfile, error)
}
