package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartier55/coachbox-backend/internal/model"
	"github.com/cartier55/coachbox-backend/internal/service"
)

func shift(title string, day, hour int) service.RawShift {
	return service.RawShift{
		Title: title,
		Start: time.Date(2026, time.September, day, hour, 0, 0, 0, time.UTC),
	}
}

func TestBuildEventsPayPeriodBuckets(t *testing.T) {
	records := []service.RawShift{
		shift("dan", 1, 9),   // anchor: Sep 1
		shift("amy", 5, 17),  // +4d, same bucket
		shift("dan", 14, 9),  // +13d, still same bucket
		shift("amy", 15, 9),  // +14d, new bucket, anchor resets to Sep 15
		shift("dan", 28, 9),  // +13d from new anchor, same bucket
		shift("amy", 29, 17), // +14d from new anchor, third bucket
	}

	events := service.BuildEvents(records)
	require.Len(t, events, 6)

	periods := make([]int, len(events))
	for i, e := range events {
		periods[i] = e.PayPeriod
	}
	assert.Equal(t, []int{1, 1, 1, 2, 2, 3}, periods)
}

func TestBuildEventsShiftDuration(t *testing.T) {
	events := service.BuildEvents([]service.RawShift{shift("dan", 1, 9)})
	require.Len(t, events, 1)
	assert.Equal(t, service.ShiftDuration, events[0].End.Sub(events[0].Start))
	assert.Equal(t, 1, events[0].PayPeriod)
}

func TestBuildEventsEmptyBatch(t *testing.T) {
	assert.Empty(t, service.BuildEvents(nil))
}

// fakeImportEventStore records the batch handed to ReplaceAll.
type fakeImportEventStore struct {
	replaced []model.Event
}

func (f *fakeImportEventStore) ReplaceAll(_ context.Context, events []model.Event) (int, error) {
	f.replaced = events
	return len(events), nil
}

type fakeCoachMatcher struct {
	coaches map[string]model.User
}

func (f *fakeCoachMatcher) GetCoachByFirstName(_ context.Context, firstName string) (model.User, error) {
	u, ok := f.coaches[firstName]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func TestImportAssignsCoachesAndSkipsUnknown(t *testing.T) {
	store := &fakeImportEventStore{}
	matcher := &fakeCoachMatcher{coaches: map[string]model.User{
		"dan": {ID: 10, FirstName: "Dan", Role: model.RoleCoach},
	}}
	svc := service.NewImportService(store, matcher)

	n, err := svc.Import(context.Background(), []service.RawShift{
		shift("dan", 1, 9),
		shift("nobody", 1, 17),
		shift("dan", 2, 9),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n, "the unknown coach's shift is dropped, not fatal")

	require.Len(t, store.replaced, 2)
	for _, e := range store.replaced {
		require.NotNil(t, e.CoachID)
		assert.Equal(t, uint64(10), *e.CoachID)
	}
}
