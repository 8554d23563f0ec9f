package profilestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/evac-response/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_UpsertAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	profile := domain.EmergencyProfile{
		ID:               "user-1",
		Name:             "John Peter",
		Age:              "35",
		Sex:              "male",
		Location:         "Corpus Christi, TX",
		EmergencyContact: "+13615550143",
		MedicalInfo:      "diabetic",
	}
	require.NoError(t, store.Upsert(ctx, profile))

	got, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "John Peter", got.Name)
	assert.Equal(t, "Corpus Christi, TX", got.Location)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestStore_UpsertOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, domain.EmergencyProfile{ID: "user-1", Name: "Before"}))
	require.NoError(t, store.Upsert(ctx, domain.EmergencyProfile{ID: "user-1", Name: "After", Location: "Robstown, TX"}))

	got, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
	assert.Equal(t, "Robstown, TX", got.Location)
}

func TestStore_GetMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestStore_Ping(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
