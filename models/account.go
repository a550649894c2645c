// Package models contains domain entities and business models for the rent management system
package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is the paying SaaS customer (a property-management company), not a renter.
type Account struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_accounts_uuid" json:"uuid"`

	// Identity
	Email        string  `gorm:"size:255;not null;uniqueIndex:uk_accounts_email" json:"email"`
	PasswordHash string  `gorm:"size:255;not null" json:"-"` // Never serialize password hash
	FirstName    string  `gorm:"size:100;not null" json:"first_name"`
	LastName     string  `gorm:"size:100;not null" json:"last_name"`
	CompanyName  *string `gorm:"size:120" json:"company_name,omitempty"`

	// Subscription; plan and limits are written only by the billing flow
	SubscriptionPlan       SubscriptionPlan   `gorm:"type:subscription_plan_enum;not null;default:'free';index:idx_accounts_plan" json:"subscription_plan"`
	SubscriptionStatus     SubscriptionStatus `gorm:"type:subscription_status_enum;not null;default:'trialing'" json:"subscription_status"`
	TrialEndsAt            *time.Time         `json:"trial_ends_at,omitempty"`
	CurrentPeriodEnd       *time.Time         `json:"current_period_end,omitempty"`
	BillingCustomerRef     *string            `gorm:"size:255;index:idx_accounts_billing_customer_ref" json:"billing_customer_ref,omitempty"`
	BillingSubscriptionRef *string            `gorm:"size:255" json:"billing_subscription_ref,omitempty"`
	CancelAtPeriodEnd      *bool              `gorm:"default:false" json:"cancel_at_period_end"`

	// Plan limits, denormalized from the plan table on every plan change
	LimitProperties int `gorm:"not null;default:5" json:"limit_properties"`
	LimitTenants    int `gorm:"not null;default:10" json:"limit_tenants"`
	LimitUsers      int `gorm:"not null;default:2" json:"limit_users"`
	LimitStorageMB  int `gorm:"not null;default:500" json:"limit_storage_mb"`

	// Stats cache, eventually consistent with the tenants/properties tables.
	// Refreshed lazily; readers must tolerate staleness.
	StatsTotalProperties int     `gorm:"not null;default:0" json:"stats_total_properties"`
	StatsTotalTenants    int     `gorm:"not null;default:0" json:"stats_total_tenants"`
	StatsActiveLeases    int     `gorm:"not null;default:0" json:"stats_active_leases"`
	StatsMonthlyRevenue  float64 `gorm:"not null;default:0" json:"stats_monthly_revenue"`

	// Settings
	Currency         string `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Timezone         string `gorm:"size:64;not null;default:'UTC'" json:"timezone"`
	DateFormat       string `gorm:"size:20;not null;default:'YYYY-MM-DD'" json:"date_format"`
	NotifyEmail      *bool  `gorm:"default:true" json:"notify_email"`
	NotifyLeaseEnds  *bool  `gorm:"default:true" json:"notify_lease_ends"`

	// Status and verification
	IsEmailVerified *bool `gorm:"default:false" json:"is_email_verified"`
	IsActive        *bool `gorm:"default:true;index:idx_accounts_is_active" json:"is_active"`

	// Timestamps
	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_accounts_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Relations
	Properties []Property       `gorm:"foreignKey:AccountID" json:"-"`
	Tenants    []Tenant         `gorm:"foreignKey:AccountID" json:"-"`
	Sessions   []AccountSession `gorm:"foreignKey:AccountID" json:"-"`
	AuditLogs  []AuditLog       `gorm:"foreignKey:AccountID" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// AccountFilter represents filter criteria for account queries
type AccountFilter struct {
	ID                 *uint
	UUID               *uuid.UUID
	Email              *string
	SubscriptionPlan   *SubscriptionPlan
	SubscriptionStatus *SubscriptionStatus
	BillingCustomerRef *string
	IsEmailVerified    *bool
	IsActive           *bool
	CreatedAfter       *time.Time
	CreatedBefore      *time.Time
}

// AccountStats is the denormalized aggregate snapshot cached on the account row
type AccountStats struct {
	TotalProperties int     `json:"total_properties"`
	TotalTenants    int     `json:"total_tenants"`
	ActiveLeases    int     `json:"active_leases"`
	MonthlyRevenue  float64 `json:"monthly_revenue"`
}

// Stats assembles the cached stats columns into an AccountStats value
func (a *Account) Stats() AccountStats {
	return AccountStats{
		TotalProperties: a.StatsTotalProperties,
		TotalTenants:    a.StatsTotalTenants,
		ActiveLeases:    a.StatsActiveLeases,
		MonthlyRevenue:  a.StatsMonthlyRevenue,
	}
}

// Limits assembles the denormalized limit columns into a PlanLimits value
func (a *Account) Limits() PlanLimits {
	return PlanLimits{
		Properties: a.LimitProperties,
		Tenants:    a.LimitTenants,
		Users:      a.LimitUsers,
		StorageMB:  a.LimitStorageMB,
	}
}

// ApplyPlan overwrites the subscription tier and its denormalized limits.
// Only the billing flow and registration defaults may call this.
func (a *Account) ApplyPlan(plan SubscriptionPlan) {
	limits := LimitsForPlan(plan)
	a.SubscriptionPlan = plan
	a.LimitProperties = limits.Properties
	a.LimitTenants = limits.Tenants
	a.LimitUsers = limits.Users
	a.LimitStorageMB = limits.StorageMB
}

// IsTrialing reports whether the account is inside an unexpired trial
func (a *Account) IsTrialing() bool {
	return a.SubscriptionStatus == SubscriptionTrialing &&
		a.TrialEndsAt != nil && a.TrialEndsAt.After(time.Now().UTC())
}

// CanWrite reports whether the subscription allows mutating operations
func (a *Account) CanWrite() bool {
	switch a.SubscriptionStatus {
	case SubscriptionActive, SubscriptionTrialing, SubscriptionPastDue:
		return true
	default:
		return false
	}
}

func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}
