package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TenantStatus represents the lifecycle state of a tenant (renter).
// "deleted" is a soft-delete marker: the row is retained for audit history and
// excluded from every default read path, count, and quota check.
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
	TenantStatusPast     TenantStatus = "past"
	TenantStatusPending  TenantStatus = "pending"
	TenantStatusEvicted  TenantStatus = "evicted"
	TenantStatusDeleted  TenantStatus = "deleted"
)

// String returns the string representation of the status
func (s TenantStatus) String() string {
	return string(s)
}

// Valid checks if the status is a known value
func (s TenantStatus) Valid() bool {
	switch s {
	case TenantStatusActive, TenantStatusInactive, TenantStatusPast,
		TenantStatusPending, TenantStatusEvicted, TenantStatusDeleted:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for TenantStatus
func (s *TenantStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = TenantStatus(v)
	case []byte:
		*s = TenantStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into TenantStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for TenantStatus
func (s TenantStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid TenantStatus: %s", s)
	}
	return string(s), nil
}

// Tenant is a renter owned by exactly one account and optionally linked to one
// property. The property link is a weak reference: a tenant pointing at a
// deleted property is a tolerated dangling link, not ownership.
type Tenant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_tenants_uuid" json:"uuid"`
	AccountID uint      `gorm:"not null;index:idx_tenants_account_id" json:"account_id"`
	// Weak reference by id; deliberately no FK constraint
	PropertyID *uint `gorm:"index:idx_tenants_property_id" json:"property_id,omitempty"`

	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`
	// Unique per owning account (enforced by partial index excluding deleted rows)
	Email string  `gorm:"size:255;not null;index:idx_tenants_email" json:"email"`
	Phone *string `gorm:"size:20" json:"phone,omitempty"`

	Status TenantStatus `gorm:"type:tenant_status_enum;not null;default:'pending';index:idx_tenants_status" json:"status"`

	RentAmount float64 `gorm:"not null;default:0" json:"rent_amount"`
	// Day of month the rent is due (1-31), clamped to the month's last day
	RentDueDay int        `gorm:"not null;default:1" json:"rent_due_day"`
	LeaseStart *time.Time `json:"lease_start,omitempty"`
	// Nil means an open-ended lease
	LeaseEnd *time.Time `gorm:"index:idx_tenants_lease_end" json:"lease_end,omitempty"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_tenants_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	// Set when and only when Status flips to deleted
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// Relations
	Account   *Account   `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`
	AuditLogs []AuditLog `gorm:"foreignKey:TenantID" json:"-"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// TenantFilter represents filter criteria for tenant queries.
// AccountID is mandatory on every query path. Soft-deleted rows are excluded
// unless IncludeDeleted is set.
type TenantFilter struct {
	ID             *uint
	UUID           *uuid.UUID
	AccountID      *uint
	PropertyID     *uint
	Email          *string
	Status         *TenantStatus
	IncludeDeleted bool
	LeaseEndBefore *time.Time
	LeaseEndAfter  *time.Time
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
}

// TenantStatusAggregate is one row of the group-by-status aggregation over an
// account's non-deleted tenants
type TenantStatusAggregate struct {
	Status  TenantStatus `json:"status"`
	Count   int64        `json:"count"`
	RentSum float64      `json:"rent_sum"`
}

// IsDeleted reports whether the tenant carries the soft-delete marker
func (t *Tenant) IsDeleted() bool {
	return t.Status == TenantStatusDeleted
}

// IsActiveLease reports whether the tenant contributes to revenue and
// active-lease counts
func (t *Tenant) IsActiveLease() bool {
	return t.Status == TenantStatusActive
}

func (t *Tenant) FullName() string {
	return t.FirstName + " " + t.LastName
}
