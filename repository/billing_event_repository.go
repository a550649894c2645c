// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/rentfold/rentfold/models"
	"gorm.io/gorm"
)

// BillingEventRepositoryImpl implements BillingEventRepository interface
type BillingEventRepositoryImpl struct {
	*BaseRepository[models.BillingEvent, models.BillingEventFilter]
}

// NewBillingEventRepository creates a new billing event repository
func NewBillingEventRepository(db *gorm.DB) BillingEventRepository {
	return &BillingEventRepositoryImpl{
		BaseRepository: NewBaseRepository[models.BillingEvent, models.BillingEventFilter](db),
	}
}

func (r *BillingEventRepositoryImpl) applyFilter(db *gorm.DB, filter models.BillingEventFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.EventID != nil {
		db = db.Where("event_id = ?", *filter.EventID)
	}
	if filter.Type != nil {
		db = db.Where("type = ?", *filter.Type)
	}
	if filter.AccountID != nil {
		db = db.Where("account_id = ?", *filter.AccountID)
	}
	return db
}

// ByFilter retrieves billing events matching the filter criteria
func (r *BillingEventRepositoryImpl) ByFilter(ctx context.Context, filter models.BillingEventFilter, orderBy string, limit, offset int) ([]*models.BillingEvent, error) {
	db := r.getDB(ctx)
	var events []*models.BillingEvent

	query := r.applyFilter(db.Model(&models.BillingEvent{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to find billing events by filter: %w", err)
	}
	return events, nil
}

// Count returns the number of billing events matching the filter
func (r *BillingEventRepositoryImpl) Count(ctx context.Context, filter models.BillingEventFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	if err := r.applyFilter(db.Model(&models.BillingEvent{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count billing events: %w", err)
	}
	return count, nil
}

// Exists checks if any billing event matching the filter exists
func (r *BillingEventRepositoryImpl) Exists(ctx context.Context, filter models.BillingEventFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByEventID retrieves a processed event by its provider event id (idempotency lookup)
func (r *BillingEventRepositoryImpl) ByEventID(ctx context.Context, eventID string) (*models.BillingEvent, error) {
	events, err := r.ByFilter(ctx, models.BillingEventFilter{EventID: &eventID}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find billing event by event id: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return events[0], nil
}
