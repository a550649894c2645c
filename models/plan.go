// Package models contains domain entities and business models for the rent management system
package models

import (
	"database/sql/driver"
	"fmt"
)

// SubscriptionPlan represents the subscription tier of an account
type SubscriptionPlan string

const (
	PlanFree         SubscriptionPlan = "free"
	PlanBasic        SubscriptionPlan = "basic"
	PlanProfessional SubscriptionPlan = "professional"
	PlanEnterprise   SubscriptionPlan = "enterprise"
)

// String returns the string representation of the plan
func (p SubscriptionPlan) String() string {
	return string(p)
}

// Valid checks if the plan is a known tier
func (p SubscriptionPlan) Valid() bool {
	switch p {
	case PlanFree, PlanBasic, PlanProfessional, PlanEnterprise:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for SubscriptionPlan
func (p *SubscriptionPlan) Scan(value any) error {
	if value == nil {
		*p = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*p = SubscriptionPlan(v)
	case []byte:
		*p = SubscriptionPlan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into SubscriptionPlan", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for SubscriptionPlan
func (p SubscriptionPlan) Value() (driver.Value, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid SubscriptionPlan: %s", p)
	}
	return string(p), nil
}

// SubscriptionStatus represents the billing status of an account's subscription
type SubscriptionStatus string

const (
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// String returns the string representation of the status
func (s SubscriptionStatus) String() string {
	return string(s)
}

// Valid checks if the status is a known subscription status
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionTrialing, SubscriptionActive, SubscriptionPastDue,
		SubscriptionCanceled, SubscriptionInactive:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for SubscriptionStatus
func (s *SubscriptionStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = SubscriptionStatus(v)
	case []byte:
		*s = SubscriptionStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into SubscriptionStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for SubscriptionStatus
func (s SubscriptionStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid SubscriptionStatus: %s", s)
	}
	return string(s), nil
}

// PlanLimits holds the per-resource ceilings tied to a subscription tier.
// Every tier carries numeric limits; paid tiers are practical ceilings, not
// literal "unlimited", and are enforced the same way as the free tier.
type PlanLimits struct {
	Properties int
	Tenants    int
	Users      int
	StorageMB  int
}

// planLimitTable maps each tier to its resource limits
var planLimitTable = map[SubscriptionPlan]PlanLimits{
	PlanFree:         {Properties: 5, Tenants: 10, Users: 2, StorageMB: 500},
	PlanBasic:        {Properties: 25, Tenants: 100, Users: 5, StorageMB: 2048},
	PlanProfessional: {Properties: 100, Tenants: 1000, Users: 15, StorageMB: 10240},
	PlanEnterprise:   {Properties: 1000, Tenants: 10000, Users: 100, StorageMB: 102400},
}

// LimitsForPlan resolves the limit set for a tier. Unknown tiers resolve to
// the free tier so a corrupt plan value never grants elevated quotas.
func LimitsForPlan(plan SubscriptionPlan) PlanLimits {
	if limits, ok := planLimitTable[plan]; ok {
		return limits
	}
	return planLimitTable[PlanFree]
}

// QuotaResource identifies a limited resource type
type QuotaResource string

const (
	ResourceProperties QuotaResource = "properties"
	ResourceTenants    QuotaResource = "tenants"
	ResourceUsers      QuotaResource = "users"
	ResourceStorageMB  QuotaResource = "storage"
)

// defaultResourceLimits is the safety floor applied when an account carries a
// missing or zero limit value. A zero stored limit must never read as either
// "0 allowed" or "unlimited".
var defaultResourceLimits = map[QuotaResource]int{
	ResourceProperties: 5,
	ResourceTenants:    10,
	ResourceUsers:      1,
	ResourceStorageMB:  100,
}

// DefaultResourceLimit returns the hard-coded safety minimum for a resource
func DefaultResourceLimit(resource QuotaResource) int {
	if v, ok := defaultResourceLimits[resource]; ok {
		return v
	}
	return 1
}
