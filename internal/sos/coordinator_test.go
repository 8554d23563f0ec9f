package sos

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/evac-response/internal/adapter/callstore"
	"github.com/couchcryptid/evac-response/internal/adapter/telephony"
	"github.com/couchcryptid/evac-response/internal/config"
	"github.com/couchcryptid/evac-response/internal/domain"
	"github.com/couchcryptid/evac-response/internal/observability"
)

type fakeProfiles struct {
	profiles map[string]domain.EmergencyProfile
	err      error
}

func (f *fakeProfiles) Upsert(_ context.Context, p domain.EmergencyProfile) error {
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeProfiles) Get(_ context.Context, id string) (domain.EmergencyProfile, error) {
	if f.err != nil {
		return domain.EmergencyProfile{}, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return domain.EmergencyProfile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

type fakeDialer struct {
	twiml  string
	target string
	calls  int
	err    error
}

func (f *fakeDialer) PlaceCall(_ context.Context, twiml, target string) (string, error) {
	f.calls++
	f.twiml = twiml
	f.target = target
	if f.err != nil {
		return "", f.err
	}
	return "CA100", nil
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		TargetNumber:  "+13614259843",
		PublicBaseURL: baseURL,
	}
}

func newTestCoordinator(t *testing.T, baseURL string, dialer Dialer) (*Coordinator, *callstore.MemoryStore) {
	t.Helper()
	profiles := &fakeProfiles{profiles: map[string]domain.EmergencyProfile{
		"user-1": {
			ID:               "user-1",
			Name:             "John Peter",
			Age:              "35",
			Sex:              "male",
			Location:         "Corpus Christi, TX",
			EmergencyContact: "+13615550143",
		},
	}}
	calls := callstore.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewCoordinator(testConfig(baseURL), profiles, calls, dialer, nil, logger, observability.NewMetricsForTesting())
	return c, calls
}

func TestPlaceCall_ScriptedIVR(t *testing.T) {
	dialer := &fakeDialer{}
	c, calls := newTestCoordinator(t, "https://evac.example.com", dialer)

	placed, err := c.PlaceCall(context.Background(), "user-1", "there is a fire in my kitchen")
	require.NoError(t, err)

	assert.Equal(t, "CA100", placed.CallID)
	assert.Equal(t, domain.EmergencyFire, placed.Emergency)
	assert.Equal(t, domain.ModeScriptedIVR, placed.Mode)
	assert.Equal(t, "+13614259843", dialer.target)
	assert.Contains(t, dialer.twiml, "<Gather")
	assert.Contains(t, dialer.twiml, "https://evac.example.com/api/conversation")
	assert.Equal(t, 1, calls.Len(), "IVR calls keep a stored context")
}

func TestPlaceCall_InlineWithoutBaseURL(t *testing.T) {
	dialer := &fakeDialer{}
	c, calls := newTestCoordinator(t, "", dialer)

	placed, err := c.PlaceCall(context.Background(), "user-1", "help")
	require.NoError(t, err)

	assert.Equal(t, domain.ModeInlineAnnouncement, placed.Mode)
	assert.NotContains(t, dialer.twiml, "<Gather")
	assert.Contains(t, dialer.twiml, "This is an AI call")
	assert.Zero(t, calls.Len(), "inline calls need no context")
}

func TestPlaceCall_UnknownProfile(t *testing.T) {
	c, _ := newTestCoordinator(t, "", &fakeDialer{})

	_, err := c.PlaceCall(context.Background(), "nobody", "help")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestPlaceCall_NoDialer(t *testing.T) {
	c, _ := newTestCoordinator(t, "", nil)

	_, err := c.PlaceCall(context.Background(), "user-1", "help")
	assert.ErrorIs(t, err, ErrTelephonyDisabled)
}

func TestPlaceCall_ProviderRejection(t *testing.T) {
	dialer := &fakeDialer{err: &telephony.CallError{
		Code:   21219,
		Reason: telephony.ReasonUnverifiedDestination,
		Hint:   "verify the number",
	}}
	c, calls := newTestCoordinator(t, "https://evac.example.com", dialer)

	_, err := c.PlaceCall(context.Background(), "user-1", "help")

	var callErr *telephony.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, telephony.ReasonUnverifiedDestination, callErr.Reason)
	assert.Zero(t, calls.Len(), "rejected calls leave no context behind")
}

func placeIVRCall(t *testing.T) (*Coordinator, *callstore.MemoryStore, string) {
	t.Helper()
	c, calls := newTestCoordinator(t, "https://evac.example.com", &fakeDialer{})
	placed, err := c.PlaceCall(context.Background(), "user-1", "there is a fire in my kitchen")
	require.NoError(t, err)
	return c, calls, placed.CallID
}

func TestHandleConversation_AnswersAndGathers(t *testing.T) {
	c, _, callID := placeIVRCall(t)

	twiml, err := c.HandleConversation(context.Background(), callID, domain.OperatorInput{
		Utterance: "what is your location",
	})
	require.NoError(t, err)

	assert.Contains(t, twiml, "The location is Corpus Christi, TX.")
	assert.Contains(t, twiml, "<Gather")
	assert.Contains(t, twiml, "call_id=CA100")
}

func TestHandleConversation_SignoffReleasesContext(t *testing.T) {
	c, calls, callID := placeIVRCall(t)

	twiml, err := c.HandleConversation(context.Background(), callID, domain.OperatorInput{Digits: "9"})
	require.NoError(t, err)

	assert.Contains(t, twiml, "<Hangup/>")
	assert.NotContains(t, twiml, "<Gather")
	assert.Zero(t, calls.Len())
}

// A webhook for a call with no stored context still gets a spoken
// reply, never an error the provider would read out as an application
// failure.
func TestHandleConversation_UnknownCallSpeaksGenericReply(t *testing.T) {
	c, _ := newTestCoordinator(t, "https://evac.example.com", &fakeDialer{})

	twiml, err := c.HandleConversation(context.Background(), "CA999", domain.OperatorInput{})
	require.NoError(t, err)
	assert.Contains(t, twiml, "This is an emergency alert for a person in need.")
	assert.Contains(t, twiml, "<Hangup/>")
	assert.NotContains(t, twiml, "<Gather")
}

// failingPutStore drops every Put, simulating a context store outage at
// call placement.
type failingPutStore struct {
	inner domain.ContextStore
}

func (s *failingPutStore) Put(context.Context, domain.CallContext) error {
	return errors.New("store unavailable")
}

func (s *failingPutStore) Get(ctx context.Context, callID string) (domain.CallContext, error) {
	return s.inner.Get(ctx, callID)
}

func (s *failingPutStore) Delete(ctx context.Context, callID string) error {
	return s.inner.Delete(ctx, callID)
}

// A call whose context was lost at placement must still produce a
// coherent utterance on every webhook event.
func TestHandleConversation_LostContextStillReplies(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]domain.EmergencyProfile{
		"user-1": {ID: "user-1", Name: "John Peter"},
	}}
	calls := &failingPutStore{inner: callstore.NewMemoryStore()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewCoordinator(testConfig("https://evac.example.com"), profiles, calls, &fakeDialer{}, nil, logger, observability.NewMetricsForTesting())

	placed, err := c.PlaceCall(context.Background(), "user-1", "there is a fire")
	require.NoError(t, err, "a failed context write must not fail the live call")

	twiml, err := c.HandleConversation(context.Background(), placed.CallID, domain.OperatorInput{
		Utterance: "what is your location",
	})
	require.NoError(t, err)
	assert.Contains(t, twiml, "<Say")
	assert.Contains(t, twiml, "Please send help immediately.")
	assert.Contains(t, twiml, "<Hangup/>")
}

func TestHandleStatus_TerminalReleasesContext(t *testing.T) {
	c, calls, callID := placeIVRCall(t)

	require.NoError(t, c.HandleStatus(context.Background(), callID, "completed"))
	assert.Zero(t, calls.Len())
}

func TestHandleStatus_NonTerminalIgnored(t *testing.T) {
	c, calls, callID := placeIVRCall(t)

	require.NoError(t, c.HandleStatus(context.Background(), callID, "in-progress"))
	assert.Equal(t, 1, calls.Len())
}

func TestHandleStatus_UnknownCallIsNoop(t *testing.T) {
	c, _ := newTestCoordinator(t, "https://evac.example.com", &fakeDialer{})
	assert.NoError(t, c.HandleStatus(context.Background(), "CA999", "completed"))
}

func TestPlaceCall_ProfileStoreDown(t *testing.T) {
	profiles := &fakeProfiles{err: errors.New("database is locked")}
	calls := callstore.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewCoordinator(testConfig(""), profiles, calls, &fakeDialer{}, nil, logger, observability.NewMetricsForTesting())

	_, err := c.PlaceCall(context.Background(), "user-1", "help")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrProfileNotFound)
}
