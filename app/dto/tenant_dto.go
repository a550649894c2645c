package dto

import "time"

// CreateTenantRequest is the tenant creation payload
type CreateTenantRequest struct {
	FirstName    string     `json:"first_name" validate:"required,max=100"`
	LastName     string     `json:"last_name" validate:"required,max=100"`
	Email        string     `json:"email" validate:"required,email,max=255"`
	Phone        *string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	PropertyUUID *string    `json:"property_uuid,omitempty" validate:"omitempty,uuid4"`
	Status       *string    `json:"status,omitempty" validate:"omitempty,oneof=active inactive past pending evicted"`
	RentAmount   float64    `json:"rent_amount" validate:"gte=0"`
	RentDueDay   int        `json:"rent_due_day" validate:"required,min=1,max=31"`
	LeaseStart   *time.Time `json:"lease_start,omitempty"`
	LeaseEnd     *time.Time `json:"lease_end,omitempty"`
}

// UpdateTenantRequest is the partial-field tenant update payload.
// Soft deletion goes through the delete endpoint, not a status update.
type UpdateTenantRequest struct {
	FirstName    *string    `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName     *string    `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Email        *string    `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone        *string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	PropertyUUID *string    `json:"property_uuid,omitempty" validate:"omitempty,uuid4"`
	Status       *string    `json:"status,omitempty" validate:"omitempty,oneof=active inactive past pending evicted"`
	RentAmount   *float64   `json:"rent_amount,omitempty" validate:"omitempty,gte=0"`
	RentDueDay   *int       `json:"rent_due_day,omitempty" validate:"omitempty,min=1,max=31"`
	LeaseStart   *time.Time `json:"lease_start,omitempty"`
	LeaseEnd     *time.Time `json:"lease_end,omitempty"`
}

// TenantDTO is the tenant shape in API responses
type TenantDTO struct {
	ID         uint       `json:"id"`
	UUID       string     `json:"uuid"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email"`
	Phone      *string    `json:"phone,omitempty"`
	PropertyID *uint      `json:"property_id,omitempty"`
	Status     string     `json:"status"`
	RentAmount float64    `json:"rent_amount"`
	RentDueDay int        `json:"rent_due_day"`
	LeaseStart *time.Time `json:"lease_start,omitempty"`
	LeaseEnd   *time.Time `json:"lease_end,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// TenantResponse wraps a single tenant
type TenantResponse struct {
	Message string    `json:"message"`
	Tenant  TenantDTO `json:"tenant"`
}

// TenantListResponse wraps a tenant listing
type TenantListResponse struct {
	Message string      `json:"message"`
	Tenants []TenantDTO `json:"tenants"`
	Total   int64       `json:"total"`
}

// TenantAuditEntryDTO is one row of a tenant's append-only audit trail
type TenantAuditEntryDTO struct {
	Action    string    `json:"action"`
	Changes   any       `json:"changes,omitempty"`
	RequestID *string   `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TenantAuditTrailResponse wraps a tenant's audit trail
type TenantAuditTrailResponse struct {
	Message string                `json:"message"`
	Entries []TenantAuditEntryDTO `json:"entries"`
}
