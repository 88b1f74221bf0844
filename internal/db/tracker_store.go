package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
)

// TrackerQuery filters ListTrackers. Zero fields are not applied.
type TrackerQuery struct {
	OwnerID uint
	// StartAt within [From, To)
	From time.Time
	To   time.Time
	// Stored ISO bucket, applied when Week > 0
	Year int
	Week int
	// ClosedOnly drops trackers that are still open
	ClosedOnly bool
	// Scope restricts to trackers recorded in one tenant when set
	Scope string
}

// CreateOpenTracker inserts t as the owner's open tracker. The unique index
// on open rows (partial on SQLite, generated column on MySQL) turns a
// concurrent duplicate into ErrOpenTrackerExists.
func (s *Store) CreateOpenTracker(ctx context.Context, t *models.TimeTracker) error {
	if t.EndAt != nil {
		return fmt.Errorf("tracker must be open on creation")
	}

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var open int64
		if open, err = s.CountOpenTrackers(ctx, t.OwnerID); err != nil {
			return err
		}
		if open > 0 {
			return ErrOpenTrackerExists
		}

		err = s.db.WithContext(ctx).Create(t).Error
		switch {
		case err == nil:
			return nil
		case isDuplicate(err):
			return ErrOpenTrackerExists
		case isLockConflict(err):
			// lost a lock race; the next count sees the winner's row
			t.ID = 0
			continue
		}
		return err
	}
	return err
}

// CloseTracker stamps the end time on the owner's open tracker id
func (s *Store) CloseTracker(ctx context.Context, ownerID, id uint, at time.Time) (*models.TimeTracker, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tracker models.TimeTracker
		err := tx.Where("id = ? AND owner_id = ? AND end_at IS NULL", id, ownerID).First(&tracker).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		tracker.Close(at)

		// Guard on end_at so a racing clock-out cannot stamp twice
		res := tx.Model(&models.TimeTracker{}).
			Where("id = ? AND end_at IS NULL", tracker.ID).
			Update("end_at", tracker.EndAt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.FindTracker(ctx, ownerID, id)
}

// DeleteTracker removes the owner's tracker and its items
func (s *Store) DeleteTracker(ctx context.Context, ownerID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.TimeTracker{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("tracker_id = ?", id).Delete(&models.TrackerItem{}).Error
	})
}

// FindTracker returns the owner's tracker id with its items
func (s *Store) FindTracker(ctx context.Context, ownerID, id uint) (*models.TimeTracker, error) {
	var tracker models.TimeTracker
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Preload("Items").
		Preload("Items.Task").
		First(&tracker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tracker, nil
}

// FindOpenTracker returns the owner's open tracker, if any
func (s *Store) FindOpenTracker(ctx context.Context, ownerID uint) (*models.TimeTracker, error) {
	var tracker models.TimeTracker
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND end_at IS NULL", ownerID).
		Preload("Items").
		Preload("Items.Task").
		First(&tracker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // No open tracker is not an error
	}
	if err != nil {
		return nil, err
	}
	return &tracker, nil
}

// CountOpenTrackers returns how many open trackers the owner has
func (s *Store) CountOpenTrackers(ctx context.Context, ownerID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.TimeTracker{}).
		Where("owner_id = ? AND end_at IS NULL", ownerID).
		Count(&n).Error
	return n, err
}

// ListTrackers returns trackers matching q ordered by start time
func (s *Store) ListTrackers(ctx context.Context, q TrackerQuery) ([]models.TimeTracker, error) {
	var trackers []models.TimeTracker
	err := s.trackerQuery(ctx, q).
		Preload("Items").
		Preload("Items.Task").
		Order("start_at ASC").
		Order("id ASC").
		Find(&trackers).Error
	if err != nil {
		return nil, err
	}
	return trackers, nil
}

// CountTrackers returns how many trackers match q
func (s *Store) CountTrackers(ctx context.Context, q TrackerQuery) (int64, error) {
	var n int64
	err := s.trackerQuery(ctx, q).Count(&n).Error
	return n, err
}

func (s *Store) trackerQuery(ctx context.Context, q TrackerQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.TimeTracker{}).Where("owner_id = ?", q.OwnerID)
	if q.Scope != "" {
		tx = tx.Where("scope = ?", q.Scope)
	}
	if !q.From.IsZero() {
		tx = tx.Where("start_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		tx = tx.Where("start_at < ?", q.To)
	}
	if q.Week > 0 {
		tx = tx.Where("year = ? AND week = ?", q.Year, q.Week)
	}
	if q.ClosedOnly {
		tx = tx.Where("end_at IS NOT NULL")
	}
	return tx
}

// AddItem attaches item to one of the owner's trackers. The referenced task
// must belong to the same owner.
func (s *Store) AddItem(ctx context.Context, ownerID uint, item *models.TrackerItem) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedRow(tx, &models.TimeTracker{}, ownerID, item.TrackerID); err != nil {
			return err
		}
		if err := ownedRow(tx, &models.Task{}, ownerID, item.TaskID); err != nil {
			return err
		}
		if err := tx.Create(item).Error; err != nil {
			if isDuplicate(err) {
				return ErrDuplicate
			}
			return err
		}
		return tx.First(&item.Task, item.TaskID).Error
	})
}

// RemoveItem deletes an item from one of the owner's trackers
func (s *Store) RemoveItem(ctx context.Context, ownerID, trackerID, itemID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedRow(tx, &models.TimeTracker{}, ownerID, trackerID); err != nil {
			return err
		}
		res := tx.Where("id = ? AND tracker_id = ?", itemID, trackerID).Delete(&models.TrackerItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func ownedRow(tx *gorm.DB, model any, ownerID, id uint) error {
	var n int64
	if err := tx.Model(model).Where("id = ? AND owner_id = ?", id, ownerID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
