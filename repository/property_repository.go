// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentfold/rentfold/models"
	"gorm.io/gorm"
)

// PropertyRepositoryImpl implements PropertyRepository interface
type PropertyRepositoryImpl struct {
	*BaseRepository[models.Property, models.PropertyFilter]
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &PropertyRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Property, models.PropertyFilter](db),
	}
}

func (r *PropertyRepositoryImpl) applyFilter(db *gorm.DB, filter models.PropertyFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.AccountID != nil {
		db = db.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Structure != nil {
		db = db.Where("structure = ?", *filter.Structure)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.City != nil {
		db = db.Where("city = ?", *filter.City)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves properties matching the filter criteria
func (r *PropertyRepositoryImpl) ByFilter(ctx context.Context, filter models.PropertyFilter, orderBy string, limit, offset int) ([]*models.Property, error) {
	db := r.getDB(ctx)
	var properties []*models.Property

	query := r.applyFilter(db.Model(&models.Property{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to find properties by filter: %w", err)
	}
	return properties, nil
}

// Count returns the number of properties matching the filter
func (r *PropertyRepositoryImpl) Count(ctx context.Context, filter models.PropertyFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	if err := r.applyFilter(db.Model(&models.Property{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

// Exists checks if any property matching the filter exists
func (r *PropertyRepositoryImpl) Exists(ctx context.Context, filter models.PropertyFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByUUIDForAccount retrieves a property by public UUID within an account
func (r *PropertyRepositoryImpl) ByUUIDForAccount(ctx context.Context, accountID uint, id uuid.UUID) (*models.Property, error) {
	properties, err := r.ByFilter(ctx, models.PropertyFilter{AccountID: &accountID, UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find property by uuid: %w", err)
	}
	if len(properties) == 0 {
		return nil, nil
	}
	return properties[0], nil
}

// ListByAccount retrieves the account's properties, newest first
func (r *PropertyRepositoryImpl) ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*models.Property, error) {
	return r.ByFilter(ctx, models.PropertyFilter{AccountID: &accountID}, "created_at DESC", limit, offset)
}

// CountByAccount counts the account's properties (the quota count; properties
// have no soft-delete, so every row counts)
func (r *PropertyRepositoryImpl) CountByAccount(ctx context.Context, accountID uint) (int64, error) {
	return r.Count(ctx, models.PropertyFilter{AccountID: &accountID})
}

// Delete hard-deletes a property row. The referential guard (no attached
// tenants) is enforced by the business flow before calling this.
func (r *PropertyRepositoryImpl) Delete(ctx context.Context, property *models.Property) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Delete(property).Error
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	return nil
}
