// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentfold/rentfold/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepositoryImpl implements AccountRepository interface
type AccountRepositoryImpl struct {
	*BaseRepository[models.Account, models.AccountFilter]
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &AccountRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Account, models.AccountFilter](db),
	}
}

func (r *AccountRepositoryImpl) applyFilter(db *gorm.DB, filter models.AccountFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Email != nil {
		db = db.Where("email = ?", *filter.Email)
	}
	if filter.SubscriptionPlan != nil {
		db = db.Where("subscription_plan = ?", *filter.SubscriptionPlan)
	}
	if filter.SubscriptionStatus != nil {
		db = db.Where("subscription_status = ?", *filter.SubscriptionStatus)
	}
	if filter.BillingCustomerRef != nil {
		db = db.Where("billing_customer_ref = ?", *filter.BillingCustomerRef)
	}
	if filter.IsEmailVerified != nil {
		db = db.Where("is_email_verified = ?", *filter.IsEmailVerified)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves accounts matching the filter criteria
func (r *AccountRepositoryImpl) ByFilter(ctx context.Context, filter models.AccountFilter, orderBy string, limit, offset int) ([]*models.Account, error) {
	db := r.getDB(ctx)
	var accounts []*models.Account

	query := r.applyFilter(db.Model(&models.Account{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to find accounts by filter: %w", err)
	}
	return accounts, nil
}

// Count returns the number of accounts matching the filter
func (r *AccountRepositoryImpl) Count(ctx context.Context, filter models.AccountFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	if err := r.applyFilter(db.Model(&models.Account{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// Exists checks if any account matching the filter exists
func (r *AccountRepositoryImpl) Exists(ctx context.Context, filter models.AccountFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByEmail retrieves an account by email address
func (r *AccountRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.Account, error) {
	accounts, err := r.ByFilter(ctx, models.AccountFilter{Email: &email}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return accounts[0], nil
}

// ByUUID retrieves an account by public UUID
func (r *AccountRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	accounts, err := r.ByFilter(ctx, models.AccountFilter{UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by uuid: %w", err)
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return accounts[0], nil
}

// ByBillingCustomerRef retrieves the account owning a billing-provider customer reference
func (r *AccountRepositoryImpl) ByBillingCustomerRef(ctx context.Context, ref string) (*models.Account, error) {
	accounts, err := r.ByFilter(ctx, models.AccountFilter{BillingCustomerRef: &ref}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by billing ref: %w", err)
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return accounts[0], nil
}

// LockByID loads the account row under SELECT ... FOR UPDATE. The lock
// serializes concurrent quota checks for the same account; callers must hold
// an open transaction (via WithTransaction) or the lock is released
// immediately.
func (r *AccountRepositoryImpl) LockByID(ctx context.Context, id uint) (*models.Account, error) {
	db := r.getDB(ctx)

	var account models.Account
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
	}
	return &account, nil
}

// UpdateStats overwrites the denormalized stats cache columns
func (r *AccountRepositoryImpl) UpdateStats(ctx context.Context, accountID uint, stats models.AccountStats) error {
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

	err = db.Model(&models.Account{}).Where("id = ?", accountID).Updates(map[string]any{
		"stats_total_properties": stats.TotalProperties,
		"stats_total_tenants":    stats.TotalTenants,
		"stats_active_leases":    stats.ActiveLeases,
		"stats_monthly_revenue":  stats.MonthlyRevenue,
		"updated_at":             time.Now().UTC(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update account stats: %w", err)
	}

	return nil
}

// UpdateSubscription overwrites the subscription and limit columns. The
// billing flow is the sole caller after registration.
func (r *AccountRepositoryImpl) UpdateSubscription(ctx context.Context, account *models.Account) error {
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

	err = db.Model(&models.Account{}).Where("id = ?", account.ID).Updates(map[string]any{
		"subscription_plan":        account.SubscriptionPlan,
		"subscription_status":      account.SubscriptionStatus,
		"trial_ends_at":            account.TrialEndsAt,
		"current_period_end":       account.CurrentPeriodEnd,
		"billing_customer_ref":     account.BillingCustomerRef,
		"billing_subscription_ref": account.BillingSubscriptionRef,
		"cancel_at_period_end":     account.CancelAtPeriodEnd,
		"limit_properties":         account.LimitProperties,
		"limit_tenants":            account.LimitTenants,
		"limit_users":              account.LimitUsers,
		"limit_storage_mb":         account.LimitStorageMB,
		"updated_at":               time.Now().UTC(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update account subscription: %w", err)
	}

	return nil
}

// UpdateLastLogin records the most recent successful login
func (r *AccountRepositoryImpl) UpdateLastLogin(ctx context.Context, accountID uint, at time.Time) error {
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

	err = db.Model(&models.Account{}).Where("id = ?", accountID).
		Update("last_login_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}
