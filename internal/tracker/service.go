// Package tracker implements the clock-in/clock-out workflow.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/balkashynov/punch/internal/cache"
	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/notify"
)

// Store is the persistence the workflow needs. *db.Store implements it.
type Store interface {
	CreateOpenTracker(ctx context.Context, t *models.TimeTracker) error
	CloseTracker(ctx context.Context, ownerID, id uint, at time.Time) (*models.TimeTracker, error)
	DeleteTracker(ctx context.Context, ownerID, id uint) error
	FindTracker(ctx context.Context, ownerID, id uint) (*models.TimeTracker, error)
	FindOpenTracker(ctx context.Context, ownerID uint) (*models.TimeTracker, error)
	ListTrackers(ctx context.Context, q db.TrackerQuery) ([]models.TimeTracker, error)
	AddItem(ctx context.Context, ownerID uint, item *models.TrackerItem) error
	RemoveItem(ctx context.Context, ownerID, trackerID, itemID uint) error
}

// Owner identifies who is acting and the tenant they belong to.
type Owner struct {
	UserID uint
	Scope  string
}

// ItemInput describes progress to attach to a tracker
type ItemInput struct {
	TaskID   uint
	Progress int
	Note     string
}

// Filter narrows List. Week > 0 selects an ISO week of Year; otherwise
// Month > 0 selects a calendar month of Year. The zero Filter lists all.
type Filter struct {
	Year       int
	Month      time.Month
	Week       int
	ClosedOnly bool
}

// Service runs tracker state transitions and announces them
type Service struct {
	store     Store
	publisher notify.Publisher
	cache     cache.Cache
	now       func() time.Time
	loc       *time.Location
	logger    *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone used for day and week bucketing. Defaults to
// the server's local zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithPublisher sets where change events go. Defaults to notify.Discard.
func WithPublisher(p notify.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithCache sets the report cache invalidated on every change.
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService builds a Service over store
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: notify.Discard,
		now:       time.Now,
		loc:       time.Local,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the bucketing zone
func (s *Service) Location() *time.Location {
	return s.loc
}

// ClockIn opens a tracker for owner starting now. It fails with ErrConflict
// when owner already has an open tracker.
func (s *Service) ClockIn(ctx context.Context, owner Owner) (*models.TimeTracker, error) {
	now := s.now().In(s.loc)
	year, week := now.ISOWeek()

	tracker := &models.TimeTracker{
		OwnerID: owner.UserID,
		Scope:   owner.Scope,
		StartAt: now,
		Week:    week,
		Year:    year,
	}
	if err := s.store.CreateOpenTracker(ctx, tracker); err != nil {
		if errors.Is(err, db.ErrOpenTrackerExists) {
			return nil, fmt.Errorf("%w: already clocked in", ErrConflict)
		}
		return nil, fmt.Errorf("clock in: %w", err)
	}

	s.logger.Info("clocked in", "user", owner.UserID, "tracker", tracker.ID, "week", week, "year", year)
	s.changed(ctx, owner, tracker.ID, notify.ActionClockIn, true)
	return tracker, nil
}

// ClockOut closes owner's open tracker id. It fails with ErrNotFound when
// the tracker is missing, closed or someone else's.
func (s *Service) ClockOut(ctx context.Context, owner Owner, id uint) (*models.TimeTracker, error) {
	tracker, err := s.store.CloseTracker(ctx, owner.UserID, id, s.now().In(s.loc))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("open tracker #%d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("clock out: %w", err)
	}

	d, _ := tracker.Duration()
	s.logger.Info("clocked out", "user", owner.UserID, "tracker", id, "duration", d.String())
	s.changed(ctx, owner, id, notify.ActionClockOut, true)
	return tracker, nil
}

// Delete removes one of owner's trackers, open or closed
func (s *Service) Delete(ctx context.Context, owner Owner, id uint) error {
	if err := s.store.DeleteTracker(ctx, owner.UserID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("tracker #%d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete tracker: %w", err)
	}

	s.logger.Info("deleted tracker", "user", owner.UserID, "tracker", id)
	s.changed(ctx, owner, id, notify.ActionDelete, true)
	return nil
}

// AttachItem records progress on a task against one of owner's trackers
func (s *Service) AttachItem(ctx context.Context, owner Owner, trackerID uint, in ItemInput) (*models.TrackerItem, error) {
	if in.Progress < 0 || in.Progress > 100 {
		return nil, fmt.Errorf("%w: progress must be between 0 and 100", ErrValidation)
	}
	if in.TaskID == 0 {
		return nil, fmt.Errorf("%w: task is required", ErrValidation)
	}

	item := &models.TrackerItem{
		TrackerID: trackerID,
		TaskID:    in.TaskID,
		Progress:  in.Progress,
		Note:      in.Note,
	}
	if err := s.store.AddItem(ctx, owner.UserID, item); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return nil, fmt.Errorf("tracker #%d or task #%d: %w", trackerID, in.TaskID, ErrNotFound)
		case errors.Is(err, db.ErrDuplicate):
			return nil, fmt.Errorf("%w: task #%d already attached", ErrConflict, in.TaskID)
		}
		return nil, fmt.Errorf("attach item: %w", err)
	}

	s.changed(ctx, owner, trackerID, notify.ActionItems, false)
	return item, nil
}

// RemoveItem detaches an item from one of owner's trackers
func (s *Service) RemoveItem(ctx context.Context, owner Owner, trackerID, itemID uint) error {
	if err := s.store.RemoveItem(ctx, owner.UserID, trackerID, itemID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("item #%d on tracker #%d: %w", itemID, trackerID, ErrNotFound)
		}
		return fmt.Errorf("remove item: %w", err)
	}

	s.changed(ctx, owner, trackerID, notify.ActionItems, false)
	return nil
}

// Active returns owner's open tracker, or nil when clocked out
func (s *Service) Active(ctx context.Context, owner Owner) (*models.TimeTracker, error) {
	return s.store.FindOpenTracker(ctx, owner.UserID)
}

// Get returns one of owner's trackers
func (s *Service) Get(ctx context.Context, owner Owner, id uint) (*models.TimeTracker, error) {
	tracker, err := s.store.FindTracker(ctx, owner.UserID, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("tracker #%d: %w", id, ErrNotFound)
	}
	return tracker, err
}

// List returns owner's trackers matching f, oldest first
func (s *Service) List(ctx context.Context, owner Owner, f Filter) ([]models.TimeTracker, error) {
	q := db.TrackerQuery{OwnerID: owner.UserID, ClosedOnly: f.ClosedOnly}
	switch {
	case f.Week > 0:
		q.Year, q.Week = f.Year, f.Week
	case f.Month > 0:
		q.From = time.Date(f.Year, f.Month, 1, 0, 0, 0, 0, s.loc)
		q.To = q.From.AddDate(0, 1, 0)
	case f.Year > 0:
		q.From = time.Date(f.Year, time.January, 1, 0, 0, 0, 0, s.loc)
		q.To = q.From.AddDate(1, 0, 0)
	}
	return s.store.ListTrackers(ctx, q)
}

// changed invalidates cached reports and publishes the change events.
// Failures are logged; the transition has already been committed.
func (s *Service) changed(ctx context.Context, owner Owner, trackerID uint, action string, workStatus bool) {
	if s.cache != nil {
		if err := s.cache.DeletePrefix(ctx, cache.UserPrefix(owner.UserID)); err != nil {
			s.logger.Warn("report cache invalidation failed", "user", owner.UserID, "err", err)
		}
	}

	change := notify.Change{
		Action:    action,
		TrackerID: trackerID,
		UserID:    owner.UserID,
		Scope:     owner.Scope,
		At:        s.now(),
	}
	topics := []string{notify.TrackerTopic(owner.UserID)}
	if workStatus && owner.Scope != "" {
		topics = append(topics, notify.WorkStatusTopic(owner.Scope))
	}
	for _, topic := range topics {
		if err := s.publisher.Publish(ctx, topic, change); err != nil {
			s.logger.Warn("publish failed", "topic", topic, "err", err)
		}
	}
}
