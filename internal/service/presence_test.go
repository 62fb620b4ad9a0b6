package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartier55/coachbox-backend/internal/model"
	"github.com/cartier55/coachbox-backend/internal/service"
)

// fakePresenceStore mirrors the conditional semantics of the MySQL
// implementation: MarkInactive only flips rows that are currently active
// and reports how many it changed.
type fakePresenceStore struct {
	mu       sync.Mutex
	active   map[uint64]bool
	welcomed map[uint64]bool
	lastSeen map[uint64]time.Time
}

func newFakePresenceStore() *fakePresenceStore {
	return &fakePresenceStore{
		active:   make(map[uint64]bool),
		welcomed: make(map[uint64]bool),
		lastSeen: make(map[uint64]time.Time),
	}
}

func (f *fakePresenceStore) seed(id uint64, active bool, lastSeen time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[id] = active
	f.lastSeen[id] = lastSeen
}

func (f *fakePresenceStore) Touch(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[id] = true
	f.lastSeen[id] = time.Now().UTC()
	return nil
}

func (f *fakePresenceStore) MarkWelcomed(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomed[id] = true
	f.active[id] = true
	return nil
}

func (f *fakePresenceStore) MarkActive(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[id] = true
	return nil
}

func (f *fakePresenceStore) FindStale(_ context.Context, cutoff time.Time) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uint64
	for id, active := range f.active {
		if active && f.lastSeen[id].Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakePresenceStore) MarkInactive(_ context.Context, ids []uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if f.active[id] {
			f.active[id] = false
			n++
		}
	}
	return n, nil
}

// recordingHub captures broadcasts for assertion.
type recordingHub struct {
	mu       sync.Mutex
	messages []model.StatusUpdate
}

func (r *recordingHub) Broadcast(v any) {
	upd, ok := v.(model.StatusUpdate)
	if !ok {
		// Round-trip through JSON for any other payload shape.
		raw, _ := json.Marshal(v)
		_ = json.Unmarshal(raw, &upd)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, upd)
}

func (r *recordingHub) all() []model.StatusUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.StatusUpdate, len(r.messages))
	copy(out, r.messages)
	return out
}

func TestSweepMarksStaleUsersInactive(t *testing.T) {
	store := newFakePresenceStore()
	hub := &recordingHub{}
	tracker := service.NewPresenceTracker(store, hub, time.Minute, 5*time.Minute)

	now := time.Now().UTC()
	store.seed(1, true, now.Add(-6*time.Minute)) // stale
	store.seed(2, true, now.Add(-4*time.Minute)) // recently seen
	store.seed(3, false, now.Add(-time.Hour))    // already inactive

	ids, err := tracker.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, ids)

	assert.False(t, store.active[1])
	assert.True(t, store.active[2], "recently active user must be untouched")

	msgs := hub.all()
	require.Len(t, msgs, 1, "exactly one broadcast per flipped user")
	assert.Equal(t, "1", msgs[0].UserID)
	assert.False(t, msgs[0].IsActive)
	assert.Equal(t, model.UserStatusMessage, msgs[0].Message)
}

func TestSweepNoStaleUsersNoBroadcast(t *testing.T) {
	store := newFakePresenceStore()
	hub := &recordingHub{}
	tracker := service.NewPresenceTracker(store, hub, time.Minute, 5*time.Minute)

	store.seed(1, true, time.Now().UTC())

	ids, err := tracker.Sweep(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, hub.all())
}

func TestMarkSignedInFirstTime(t *testing.T) {
	store := newFakePresenceStore()
	hub := &recordingHub{}
	tracker := service.NewPresenceTracker(store, hub, time.Minute, 5*time.Minute)

	u := model.User{ID: 9, Email: "new@example.com"}
	require.NoError(t, tracker.MarkSignedIn(context.Background(), u))

	assert.True(t, store.welcomed[9])
	assert.True(t, store.active[9])

	msgs := hub.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, "9", msgs[0].UserID)
	assert.True(t, msgs[0].IsActive)
	require.NotNil(t, msgs[0].Welcomed)
	assert.True(t, *msgs[0].Welcomed)
}

func TestMarkSignedInReturningInactive(t *testing.T) {
	store := newFakePresenceStore()
	hub := &recordingHub{}
	tracker := service.NewPresenceTracker(store, hub, time.Minute, 5*time.Minute)

	u := model.User{ID: 4, Email: "back@example.com", Welcomed: true, IsActive: false}
	require.NoError(t, tracker.MarkSignedIn(context.Background(), u))

	assert.True(t, store.active[4])
	assert.Len(t, hub.all(), 1)
}

func TestMarkSignedInAlreadyActiveIsSilent(t *testing.T) {
	store := newFakePresenceStore()
	hub := &recordingHub{}
	tracker := service.NewPresenceTracker(store, hub, time.Minute, 5*time.Minute)

	u := model.User{ID: 5, Email: "here@example.com", Welcomed: true, IsActive: true}
	require.NoError(t, tracker.MarkSignedIn(context.Background(), u))

	assert.Empty(t, hub.all(), "repeat sign-in while active must not broadcast")
}

func TestRunStopsOnCancel(t *testing.T) {
	store := newFakePresenceStore()
	hub := &recordingHub{}
	tracker := service.NewPresenceTracker(store, hub, 10*time.Millisecond, 5*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tracker.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}
