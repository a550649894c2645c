package dto

import "time"

// PropertyUnitDTO is one rentable unit inside a multi_room/multi_unit property
type PropertyUnitDTO struct {
	Label       string  `json:"label" validate:"required,max=60"`
	MonthlyRent float64 `json:"monthly_rent" validate:"gte=0"`
	Status      string  `json:"status" validate:"required,oneof=available occupied"`
}

// CreatePropertyRequest is the property creation payload
type CreatePropertyRequest struct {
	Name        string            `json:"name" validate:"required,max=120"`
	AddressLine string            `json:"address_line" validate:"required,max=255"`
	City        string            `json:"city" validate:"required,max=100"`
	PostalCode  *string           `json:"postal_code,omitempty" validate:"omitempty,max=16"`
	Structure   string            `json:"structure" validate:"required,oneof=single_unit multi_room multi_unit"`
	Status      *string           `json:"status,omitempty" validate:"omitempty,oneof=active vacant under_maintenance"`
	MarketRent  *float64          `json:"market_rent,omitempty" validate:"omitempty,gte=0"`
	Units       []PropertyUnitDTO `json:"units,omitempty" validate:"omitempty,dive"`
}

// UpdatePropertyRequest is the partial-field property update payload
type UpdatePropertyRequest struct {
	Name        *string            `json:"name,omitempty" validate:"omitempty,max=120"`
	AddressLine *string            `json:"address_line,omitempty" validate:"omitempty,max=255"`
	City        *string            `json:"city,omitempty" validate:"omitempty,max=100"`
	PostalCode  *string            `json:"postal_code,omitempty" validate:"omitempty,max=16"`
	Status      *string            `json:"status,omitempty" validate:"omitempty,oneof=active vacant under_maintenance"`
	MarketRent  *float64           `json:"market_rent,omitempty" validate:"omitempty,gte=0"`
	Units       *[]PropertyUnitDTO `json:"units,omitempty" validate:"omitempty,dive"`
}

// PropertyDTO is the property shape in API responses
type PropertyDTO struct {
	ID                 uint              `json:"id"`
	UUID               string            `json:"uuid"`
	Name               string            `json:"name"`
	AddressLine        string            `json:"address_line"`
	City               string            `json:"city"`
	PostalCode         *string           `json:"postal_code,omitempty"`
	Structure          string            `json:"structure"`
	Status             string            `json:"status"`
	MarketRent         float64           `json:"market_rent"`
	TotalMonthlyIncome float64           `json:"total_monthly_income"`
	MonthlyIncome      float64           `json:"monthly_income"`
	OccupancyRate      float64           `json:"occupancy_rate"`
	Units              []PropertyUnitDTO `json:"units"`
	TenantCount        int64             `json:"tenant_count"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          *time.Time        `json:"updated_at,omitempty"`
}

// PropertyResponse wraps a single property
type PropertyResponse struct {
	Message  string      `json:"message"`
	Property PropertyDTO `json:"property"`
}

// PropertyListResponse wraps a property listing
type PropertyListResponse struct {
	Message    string        `json:"message"`
	Properties []PropertyDTO `json:"properties"`
	Total      int64         `json:"total"`
}
