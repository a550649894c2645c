// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentfold/rentfold/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AccountRepository defines operations for accounts
type AccountRepository interface {
	Repository[models.Account, models.AccountFilter]
	ByEmail(ctx context.Context, email string) (*models.Account, error)
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Account, error)
	ByBillingCustomerRef(ctx context.Context, ref string) (*models.Account, error)
	// LockByID loads the account row under SELECT ... FOR UPDATE. Must run
	// inside a transaction; creation flows use it to serialize quota checks.
	LockByID(ctx context.Context, id uint) (*models.Account, error)
	UpdateStats(ctx context.Context, accountID uint, stats models.AccountStats) error
	UpdateSubscription(ctx context.Context, account *models.Account) error
	UpdateLastLogin(ctx context.Context, accountID uint, at time.Time) error
}

// PropertyRepository defines operations for properties. Every finder is
// scoped by the owning account id; an unscoped query is a data-isolation bug.
type PropertyRepository interface {
	Repository[models.Property, models.PropertyFilter]
	ByUUIDForAccount(ctx context.Context, accountID uint, uuid uuid.UUID) (*models.Property, error)
	ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*models.Property, error)
	CountByAccount(ctx context.Context, accountID uint) (int64, error)
	Delete(ctx context.Context, property *models.Property) error
}

// TenantRepository defines operations for tenants. Every finder is scoped by
// the owning account id and excludes soft-deleted rows unless the filter
// explicitly includes them.
type TenantRepository interface {
	Repository[models.Tenant, models.TenantFilter]
	ByUUIDForAccount(ctx context.Context, accountID uint, uuid uuid.UUID) (*models.Tenant, error)
	ByEmailForAccount(ctx context.Context, accountID uint, email string) (*models.Tenant, error)
	ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*models.Tenant, error)
	ListRecentByAccount(ctx context.Context, accountID uint, limit int) ([]*models.Tenant, error)
	ListActiveByAccount(ctx context.Context, accountID uint) ([]*models.Tenant, error)
	ListLeaseEndingByAccount(ctx context.Context, accountID uint, from, until time.Time) ([]*models.Tenant, error)
	CountByAccount(ctx context.Context, accountID uint) (int64, error)
	CountActiveByProperty(ctx context.Context, accountID, propertyID uint) (int64, error)
	// StatusBreakdownByAccount runs the store-side group-by-status aggregation
	// over non-deleted tenants: per-status row counts and rent sums.
	StatusBreakdownByAccount(ctx context.Context, accountID uint) ([]models.TenantStatusAggregate, error)
}

// AccountSessionRepository defines operations for account sessions
type AccountSessionRepository interface {
	Repository[models.AccountSession, models.AccountSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.AccountSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.AccountSession, error)
	RevokeSession(ctx context.Context, sessionID uint) error
	RevokeAllAccountSessions(ctx context.Context, accountID uint) error
	// DeleteExpired removes sessions whose expiry has passed and returns the
	// number of rows purged.
	DeleteExpired(ctx context.Context) (int64, error)
}

// AuditLogRepository defines operations for the append-only audit log
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByTenant(ctx context.Context, tenantID uint, limit, offset int) ([]*models.AuditLog, error)
}

// BillingEventRepository defines operations for processed billing webhook events
type BillingEventRepository interface {
	Repository[models.BillingEvent, models.BillingEventFilter]
	ByEventID(ctx context.Context, eventID string) (*models.BillingEvent, error)
}
