// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentfold/rentfold/models"
	"gorm.io/gorm"
)

// TenantRepositoryImpl implements TenantRepository interface
type TenantRepositoryImpl struct {
	*BaseRepository[models.Tenant, models.TenantFilter]
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &TenantRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Tenant, models.TenantFilter](db),
	}
}

// applyFilter translates a TenantFilter into query conditions. Soft-deleted
// rows are excluded unless the filter asks for them or targets the deleted
// status directly.
func (r *TenantRepositoryImpl) applyFilter(db *gorm.DB, filter models.TenantFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.AccountID != nil {
		db = db.Where("account_id = ?", *filter.AccountID)
	}
	if filter.PropertyID != nil {
		db = db.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.Email != nil {
		db = db.Where("LOWER(email) = LOWER(?)", *filter.Email)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	} else if !filter.IncludeDeleted {
		db = db.Where("status <> ?", models.TenantStatusDeleted)
	}
	if filter.LeaseEndBefore != nil {
		db = db.Where("lease_end <= ?", *filter.LeaseEndBefore)
	}
	if filter.LeaseEndAfter != nil {
		db = db.Where("lease_end >= ?", *filter.LeaseEndAfter)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves tenants matching the filter criteria
func (r *TenantRepositoryImpl) ByFilter(ctx context.Context, filter models.TenantFilter, orderBy string, limit, offset int) ([]*models.Tenant, error) {
	db := r.getDB(ctx)
	var tenants []*models.Tenant

	query := r.applyFilter(db.Model(&models.Tenant{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("failed to find tenants by filter: %w", err)
	}
	return tenants, nil
}

// Count returns the number of tenants matching the filter
func (r *TenantRepositoryImpl) Count(ctx context.Context, filter models.TenantFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	if err := r.applyFilter(db.Model(&models.Tenant{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tenants: %w", err)
	}
	return count, nil
}

// Exists checks if any tenant matching the filter exists
func (r *TenantRepositoryImpl) Exists(ctx context.Context, filter models.TenantFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByUUIDForAccount retrieves a non-deleted tenant by public UUID within an account
func (r *TenantRepositoryImpl) ByUUIDForAccount(ctx context.Context, accountID uint, id uuid.UUID) (*models.Tenant, error) {
	tenants, err := r.ByFilter(ctx, models.TenantFilter{AccountID: &accountID, UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find tenant by uuid: %w", err)
	}
	if len(tenants) == 0 {
		return nil, nil
	}
	return tenants[0], nil
}

// ByEmailForAccount retrieves a non-deleted tenant by email within an account.
// Email uniqueness is per owning account, never global.
func (r *TenantRepositoryImpl) ByEmailForAccount(ctx context.Context, accountID uint, email string) (*models.Tenant, error) {
	tenants, err := r.ByFilter(ctx, models.TenantFilter{AccountID: &accountID, Email: &email}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find tenant by email: %w", err)
	}
	if len(tenants) == 0 {
		return nil, nil
	}
	return tenants[0], nil
}

// ListByAccount retrieves the account's non-deleted tenants, newest first
func (r *TenantRepositoryImpl) ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*models.Tenant, error) {
	return r.ByFilter(ctx, models.TenantFilter{AccountID: &accountID}, "created_at DESC", limit, offset)
}

// ListRecentByAccount retrieves the most recently created non-deleted tenants, newest first
func (r *TenantRepositoryImpl) ListRecentByAccount(ctx context.Context, accountID uint, limit int) ([]*models.Tenant, error) {
	return r.ByFilter(ctx, models.TenantFilter{AccountID: &accountID}, "created_at DESC", limit, 0)
}

// ListActiveByAccount retrieves the account's tenants with an active lease
func (r *TenantRepositoryImpl) ListActiveByAccount(ctx context.Context, accountID uint) ([]*models.Tenant, error) {
	status := models.TenantStatusActive
	return r.ByFilter(ctx, models.TenantFilter{AccountID: &accountID, Status: &status}, "", 0, 0)
}

// ListLeaseEndingByAccount retrieves non-deleted tenants whose lease ends in
// [from, until], ascending by lease end
func (r *TenantRepositoryImpl) ListLeaseEndingByAccount(ctx context.Context, accountID uint, from, until time.Time) ([]*models.Tenant, error) {
	filter := models.TenantFilter{
		AccountID:      &accountID,
		LeaseEndAfter:  &from,
		LeaseEndBefore: &until,
	}
	return r.ByFilter(ctx, filter, "lease_end ASC", 0, 0)
}

// CountByAccount counts the account's non-deleted tenants (the quota count)
func (r *TenantRepositoryImpl) CountByAccount(ctx context.Context, accountID uint) (int64, error) {
	return r.Count(ctx, models.TenantFilter{AccountID: &accountID})
}

// CountActiveByProperty counts non-deleted tenants attached to a property.
// Used as the referential guard on property deletion.
func (r *TenantRepositoryImpl) CountActiveByProperty(ctx context.Context, accountID, propertyID uint) (int64, error) {
	return r.Count(ctx, models.TenantFilter{AccountID: &accountID, PropertyID: &propertyID})
}

// StatusBreakdownByAccount aggregates non-deleted tenants by status with
// per-status row counts and rent sums, computed store-side.
func (r *TenantRepositoryImpl) StatusBreakdownByAccount(ctx context.Context, accountID uint) ([]models.TenantStatusAggregate, error) {
	db := r.getDB(ctx)

	var rows []models.TenantStatusAggregate
	err := db.Model(&models.Tenant{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(rent_amount), 0) AS rent_sum").
		Where("account_id = ? AND status <> ?", accountID, models.TenantStatusDeleted).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tenants by status: %w", err)
	}
	return rows, nil
}
