// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rentfold/rentfold/models"
	"gorm.io/gorm"
)

// AccountSessionRepositoryImpl implements AccountSessionRepository interface
type AccountSessionRepositoryImpl struct {
	*BaseRepository[models.AccountSession, models.AccountSessionFilter]
}

// NewAccountSessionRepository creates a new account session repository
func NewAccountSessionRepository(db *gorm.DB) AccountSessionRepository {
	return &AccountSessionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AccountSession, models.AccountSessionFilter](db),
	}
}

func (r *AccountSessionRepositoryImpl) applyFilter(db *gorm.DB, filter models.AccountSessionFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.AccountID != nil {
		db = db.Where("account_id = ?", *filter.AccountID)
	}
	if filter.SessionToken != nil {
		db = db.Where("session_token = ?", *filter.SessionToken)
	}
	if filter.RefreshToken != nil {
		db = db.Where("refresh_token = ?", *filter.RefreshToken)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	if filter.ExpiresAfter != nil {
		db = db.Where("expires_at >= ?", *filter.ExpiresAfter)
	}
	if filter.ExpiresBefore != nil {
		db = db.Where("expires_at <= ?", *filter.ExpiresBefore)
	}
	return db
}

// ByFilter retrieves sessions matching the filter criteria
func (r *AccountSessionRepositoryImpl) ByFilter(ctx context.Context, filter models.AccountSessionFilter, orderBy string, limit, offset int) ([]*models.AccountSession, error) {
	db := r.getDB(ctx)
	var sessions []*models.AccountSession

	query := r.applyFilter(db.Model(&models.AccountSession{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to find sessions by filter: %w", err)
	}
	return sessions, nil
}

// Count returns the number of sessions matching the filter
func (r *AccountSessionRepositoryImpl) Count(ctx context.Context, filter models.AccountSessionFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	if err := r.applyFilter(db.Model(&models.AccountSession{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// Exists checks if any session matching the filter exists
func (r *AccountSessionRepositoryImpl) Exists(ctx context.Context, filter models.AccountSessionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// BySessionToken retrieves a session by its access token
func (r *AccountSessionRepositoryImpl) BySessionToken(ctx context.Context, token string) (*models.AccountSession, error) {
	sessions, err := r.ByFilter(ctx, models.AccountSessionFilter{SessionToken: &token}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find session by token: %w", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return sessions[0], nil
}

// ByRefreshToken retrieves a session by its refresh token
func (r *AccountSessionRepositoryImpl) ByRefreshToken(ctx context.Context, token string) (*models.AccountSession, error) {
	sessions, err := r.ByFilter(ctx, models.AccountSessionFilter{RefreshToken: &token}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find session by refresh token: %w", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return sessions[0], nil
}

// RevokeSession deactivates a single session
func (r *AccountSessionRepositoryImpl) RevokeSession(ctx context.Context, sessionID uint) error {
	return r.revoke(ctx, "id = ?", sessionID)
}

// RevokeAllAccountSessions deactivates every session belonging to an account
func (r *AccountSessionRepositoryImpl) RevokeAllAccountSessions(ctx context.Context, accountID uint) error {
	return r.revoke(ctx, "account_id = ?", accountID)
}

// DeleteExpired removes sessions whose expiry has passed
func (r *AccountSessionRepositoryImpl) DeleteExpired(ctx context.Context) (int64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
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

	res := db.Where("expires_at < ?", time.Now().UTC()).Delete(&models.AccountSession{})
	if err = res.Error; err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return res.RowsAffected, nil
}

func (r *AccountSessionRepositoryImpl) revoke(ctx context.Context, cond string, arg any) error {
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

	now := time.Now().UTC()
	err = db.Model(&models.AccountSession{}).Where(cond, arg).Updates(map[string]any{
		"is_active":  false,
		"revoked_at": now,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	return nil
}
