package report

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/cache"
	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/models"
)

type fakeLister struct {
	trackers []models.TimeTracker
	queries  []db.TrackerQuery
}

func (f *fakeLister) ListTrackers(_ context.Context, q db.TrackerQuery) ([]models.TimeTracker, error) {
	f.queries = append(f.queries, q)
	return f.trackers, nil
}

func (f *fakeLister) CountTrackers(_ context.Context, q db.TrackerQuery) (int64, error) {
	f.queries = append(f.queries, q)
	var n int64
	for _, t := range f.trackers {
		if t.OwnerID == q.OwnerID && (q.Scope == "" || t.Scope == q.Scope) {
			n++
		}
	}
	return n, nil
}

var alice = Subject{UserID: 7, Scope: "acme"}

func newTestService(lister TrackerLister, c cache.Cache) *Service {
	return NewService(lister,
		WithCache(c, time.Minute),
		WithLocation(time.UTC),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestDailyQueriesClosedTrackersOfMonth(t *testing.T) {
	lister := &fakeLister{trackers: []models.TimeTracker{closed(at("2024-03-01T09:00"), 8*time.Hour)}}
	svc := newTestService(lister, nil)

	series, err := svc.Daily(context.Background(), alice, time.March, 2024)
	require.NoError(t, err)
	assert.Len(t, series, 31)
	assert.Equal(t, 8.0, series[0].WorkingHours)

	require.Len(t, lister.queries, 1)
	q := lister.queries[0]
	assert.Equal(t, uint(7), q.OwnerID)
	assert.Equal(t, "acme", q.Scope)
	assert.True(t, q.ClosedOnly)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), q.From)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), q.To)
}

func TestWeeklyUsesStoredBucket(t *testing.T) {
	lister := &fakeLister{}
	svc := newTestService(lister, nil)

	series, err := svc.Weekly(context.Background(), alice, 2025, 1)
	require.NoError(t, err)
	assert.Len(t, series, 7)

	require.Len(t, lister.queries, 1)
	assert.Equal(t, 2025, lister.queries[0].Year)
	assert.Equal(t, 1, lister.queries[0].Week)
	assert.Equal(t, "acme", lister.queries[0].Scope)
	assert.True(t, lister.queries[0].From.IsZero())
}

func TestMonthly(t *testing.T) {
	lister := &fakeLister{trackers: []models.TimeTracker{closed(at("2024-02-10T09:00"), 2*time.Hour)}}
	svc := newTestService(lister, nil)

	series, err := svc.Monthly(context.Background(), alice, 2024)
	require.NoError(t, err)
	require.Len(t, series, 12)
	assert.Equal(t, 2.0, series[1].WorkingHours)
}

func TestReportsAreCachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemory()
	t.Cleanup(mem.Close)
	lister := &fakeLister{trackers: []models.TimeTracker{closed(at("2024-03-01T09:00"), time.Hour)}}
	svc := newTestService(lister, mem)

	first, err := svc.Daily(ctx, alice, time.March, 2024)
	require.NoError(t, err)
	second, err := svc.Daily(ctx, alice, time.March, 2024)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, lister.queries, 1)

	require.NoError(t, mem.DeletePrefix(ctx, cache.UserPrefix(7)))
	_, err = svc.Daily(ctx, alice, time.March, 2024)
	require.NoError(t, err)
	assert.Len(t, lister.queries, 2)

	// Another user has a separate entry
	_, err = svc.Daily(ctx, Subject{UserID: 8, Scope: "acme"}, time.March, 2024)
	require.NoError(t, err)
	assert.Len(t, lister.queries, 3)

	// So does the same user in another tenant
	_, err = svc.Daily(ctx, Subject{UserID: 7, Scope: "globex"}, time.March, 2024)
	require.NoError(t, err)
	assert.Len(t, lister.queries, 4)
}

func TestMember(t *testing.T) {
	tr := closed(at("2024-03-01T09:00"), time.Hour)
	tr.OwnerID, tr.Scope = 7, "acme"
	svc := newTestService(&fakeLister{trackers: []models.TimeTracker{tr}}, nil)
	ctx := context.Background()

	ok, err := svc.Member(ctx, alice)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Member(ctx, Subject{UserID: 7, Scope: "globex"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Member(ctx, Subject{UserID: 8, Scope: "acme"})
	require.NoError(t, err)
	assert.False(t, ok)
}
