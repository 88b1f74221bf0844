package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/balkashynov/punch/internal/cache"
	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/models"
)

// TrackerLister loads trackers for a report. *db.Store implements it.
type TrackerLister interface {
	ListTrackers(ctx context.Context, q db.TrackerQuery) ([]models.TimeTracker, error)
	CountTrackers(ctx context.Context, q db.TrackerQuery) (int64, error)
}

// Subject is whose hours a report covers. Only trackers recorded in Scope
// count; an empty Scope covers every tenant.
type Subject struct {
	UserID uint
	Scope  string
}

func (s Subject) key(kind, period string) string {
	return cache.ReportKey(s.UserID, kind, s.Scope+":"+period)
}

// Service loads a user's closed trackers and builds report series
type Service struct {
	store  TrackerLister
	cache  cache.Cache
	ttl    time.Duration
	loc    *time.Location
	logger *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithCache caches built series for ttl
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithLocation sets the zone days are bucketed in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService builds a report service over store
func NewService(store TrackerLister, opts ...Option) *Service {
	s := &Service{store: store, loc: time.Local, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Member reports whether sub has recorded any tracker in sub.Scope
func (s *Service) Member(ctx context.Context, sub Subject) (bool, error) {
	n, err := s.store.CountTrackers(ctx, db.TrackerQuery{OwnerID: sub.UserID, Scope: sub.Scope})
	if err != nil {
		return false, fmt.Errorf("count trackers: %w", err)
	}
	return n > 0, nil
}

// Daily returns the per-day series of month in year for sub
func (s *Service) Daily(ctx context.Context, sub Subject, month time.Month, year int) ([]DailyPoint, error) {
	key := sub.key("daily", fmt.Sprintf("%04d-%02d", year, month))
	return cached(ctx, s, key, func() ([]DailyPoint, error) {
		from := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
		trackers, err := s.store.ListTrackers(ctx, db.TrackerQuery{
			OwnerID:    sub.UserID,
			Scope:      sub.Scope,
			From:       from,
			To:         from.AddDate(0, 1, 0),
			ClosedOnly: true,
		})
		if err != nil {
			return nil, fmt.Errorf("load trackers: %w", err)
		}
		return DailySeries(GroupByDay(trackers, s.loc), month, year)
	})
}

// Weekly returns Monday..Sunday of ISO week isoWeek of isoYear for sub.
// Trackers are selected by their stored week bucket.
func (s *Service) Weekly(ctx context.Context, sub Subject, isoYear, isoWeek int) ([]DailyPoint, error) {
	key := sub.key("weekly", fmt.Sprintf("%04d-W%02d", isoYear, isoWeek))
	return cached(ctx, s, key, func() ([]DailyPoint, error) {
		trackers, err := s.store.ListTrackers(ctx, db.TrackerQuery{
			OwnerID:    sub.UserID,
			Scope:      sub.Scope,
			Year:       isoYear,
			Week:       isoWeek,
			ClosedOnly: true,
		})
		if err != nil {
			return nil, fmt.Errorf("load trackers: %w", err)
		}
		return WeeklySeries(GroupByDay(trackers, s.loc), isoYear, isoWeek)
	})
}

// Monthly returns the twelve monthly totals of year for sub
func (s *Service) Monthly(ctx context.Context, sub Subject, year int) ([]MonthlyPoint, error) {
	key := sub.key("monthly", fmt.Sprintf("%04d", year))
	return cached(ctx, s, key, func() ([]MonthlyPoint, error) {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
		trackers, err := s.store.ListTrackers(ctx, db.TrackerQuery{
			OwnerID:    sub.UserID,
			Scope:      sub.Scope,
			From:       from,
			To:         from.AddDate(1, 0, 0),
			ClosedOnly: true,
		})
		if err != nil {
			return nil, fmt.Errorf("load trackers: %w", err)
		}
		return MonthlySeries(trackers, year, s.loc), nil
	})
}

// cached serves key from the cache when possible and stores fresh results.
// Cache failures fall through to build.
func cached[T any](ctx context.Context, s *Service, key string, build func() (T, error)) (T, error) {
	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("report cache read failed", "key", key, "err", err)
		} else if ok {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				return v, nil
			}
			s.logger.Warn("discarding corrupt report cache entry", "key", key)
		}
	}

	v, err := build()
	if err != nil {
		return v, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(v); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
				s.logger.Warn("report cache write failed", "key", key, "err", err)
			}
		}
	}
	return v, nil
}
