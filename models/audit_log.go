package models

import (
	"encoding/json"
	"time"
)

// AuditLog is an append-only record of account and tenant mutations.
// Rows are never updated or pruned; the per-tenant slice of rows is the
// tenant's audit trail.
type AuditLog struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	AccountID *uint    `gorm:"index:idx_audit_account_id" json:"account_id,omitempty"`
	Account   *Account `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`
	TenantID  *uint    `gorm:"index:idx_audit_tenant_id" json:"tenant_id,omitempty"`

	Action      string  `gorm:"size:64;not null;index:idx_audit_action" json:"action"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	IPAddress *string `gorm:"type:inet" json:"ip_address,omitempty"`
	UserAgent *string `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID *string `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`

	// Field-level change set for update actions
	Changes json.RawMessage `gorm:"type:jsonb" json:"changes,omitempty"`

	Success      *bool     `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionAccountRegistered = "account_registered"
	AuditActionLoginSuccess      = "login_success"
	AuditActionLoginFailed       = "login_failed"
	AuditActionLogout            = "logout"

	AuditActionPropertyCreated = "property_created"
	AuditActionPropertyUpdated = "property_updated"
	AuditActionPropertyDeleted = "property_deleted"

	AuditActionTenantCreated = "tenant_created"
	AuditActionTenantUpdated = "tenant_updated"
	AuditActionTenantDeleted = "tenant_deleted"

	AuditActionPlanChanged      = "plan_changed"
	AuditActionStatsRefreshed   = "stats_refreshed"
	AuditActionQuotaDenied      = "quota_denied"
	AuditActionTenantsExported  = "tenants_exported"
	AuditActionWebhookProcessed = "billing_webhook_processed"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	AccountID     *uint
	TenantID      *uint
	Action        *string
	Success       *bool
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}
