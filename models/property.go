package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PropertyStructure distinguishes how a property's rental income is derived
type PropertyStructure string

const (
	// StructureSingleUnit earns financial income from MarketRent
	StructureSingleUnit PropertyStructure = "single_unit"
	// StructureMultiRoom earns the sum of its units' monthly rents
	StructureMultiRoom PropertyStructure = "multi_room"
	// StructureMultiUnit earns the sum of its units' monthly rents
	StructureMultiUnit PropertyStructure = "multi_unit"
)

// String returns the string representation of the structure
func (s PropertyStructure) String() string {
	return string(s)
}

// Valid checks if the structure is a known value
func (s PropertyStructure) Valid() bool {
	switch s {
	case StructureSingleUnit, StructureMultiRoom, StructureMultiUnit:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PropertyStructure
func (s *PropertyStructure) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = PropertyStructure(v)
	case []byte:
		*s = PropertyStructure(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PropertyStructure", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PropertyStructure
func (s PropertyStructure) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid PropertyStructure: %s", s)
	}
	return string(s), nil
}

// PropertyStatus represents the operational status of a property
type PropertyStatus string

const (
	PropertyStatusActive           PropertyStatus = "active"
	PropertyStatusVacant           PropertyStatus = "vacant"
	PropertyStatusUnderMaintenance PropertyStatus = "under_maintenance"
)

// String returns the string representation of the status
func (s PropertyStatus) String() string {
	return string(s)
}

// Valid checks if the status is a known value
func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusActive, PropertyStatusVacant, PropertyStatusUnderMaintenance:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PropertyStatus
func (s *PropertyStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = PropertyStatus(v)
	case []byte:
		*s = PropertyStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PropertyStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PropertyStatus
func (s PropertyStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid PropertyStatus: %s", s)
	}
	return string(s), nil
}

// UnitStatus is the occupancy state of a single unit inside a property
type UnitStatus string

const (
	UnitStatusAvailable UnitStatus = "available"
	UnitStatusOccupied  UnitStatus = "occupied"
)

// PropertyUnit is one rentable unit within a multi_room/multi_unit property
type PropertyUnit struct {
	Label       string     `json:"label"`
	MonthlyRent float64    `json:"monthly_rent"`
	Status      UnitStatus `json:"status"`
}

// PropertyUnits is the JSON-stored unit list for a property
type PropertyUnits []PropertyUnit

// Value implements the driver.Valuer interface for PropertyUnits
func (u PropertyUnits) Value() (driver.Value, error) {
	if u == nil {
		return json.Marshal(PropertyUnits{})
	}
	return json.Marshal(u)
}

// Scan implements the sql.Scanner interface for PropertyUnits
func (u *PropertyUnits) Scan(value any) error {
	if value == nil {
		*u = PropertyUnits{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PropertyUnits", value)
	}

	return json.Unmarshal(bytes, u)
}

// Property is a rentable property owned by exactly one account.
// Properties have no soft-delete state: deletion is a hard delete, guarded by
// the absence of attached tenants (tenants carry the audit history, properties
// do not).
type Property struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_properties_uuid" json:"uuid"`
	AccountID uint      `gorm:"not null;index:idx_properties_account_id" json:"account_id"`

	Name        string  `gorm:"size:120;not null" json:"name"`
	AddressLine string  `gorm:"size:255;not null" json:"address_line"`
	City        string  `gorm:"size:100;not null" json:"city"`
	PostalCode  *string `gorm:"size:16" json:"postal_code,omitempty"`

	Structure PropertyStructure `gorm:"type:property_structure_enum;not null;default:'single_unit'" json:"structure"`
	Status    PropertyStatus    `gorm:"type:property_status_enum;not null;default:'vacant';index:idx_properties_status" json:"status"`

	// MarketRent is the income source for single_unit properties
	MarketRent float64 `gorm:"not null;default:0" json:"market_rent"`
	// TotalMonthlyIncome is maintained as the sum of unit rents for multi_* structures
	TotalMonthlyIncome float64       `gorm:"not null;default:0" json:"total_monthly_income"`
	Units              PropertyUnits `gorm:"type:jsonb;not null;default:'[]'" json:"units"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_properties_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Account *Account `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`
	Tenants []Tenant `gorm:"foreignKey:PropertyID" json:"-"`
}

func (Property) TableName() string {
	return "properties"
}

// PropertyFilter represents filter criteria for property queries.
// AccountID is mandatory on every query path; an unscoped property query is a
// cross-account data leak.
type PropertyFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	AccountID     *uint
	Structure     *PropertyStructure
	Status        *PropertyStatus
	City          *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// MonthlyIncome returns the property's monthly rental income according to its
// structure: MarketRent for single_unit, the summed unit rents otherwise.
func (p *Property) MonthlyIncome() float64 {
	if p.Structure == StructureSingleUnit {
		return p.MarketRent
	}
	return p.TotalMonthlyIncome
}

// RecalculateIncome refreshes TotalMonthlyIncome from the unit list
func (p *Property) RecalculateIncome() {
	if p.Structure == StructureSingleUnit {
		return
	}
	var sum float64
	for _, unit := range p.Units {
		sum += unit.MonthlyRent
	}
	p.TotalMonthlyIncome = sum
}

// OccupiedUnits counts the units currently marked occupied
func (p *Property) OccupiedUnits() int {
	n := 0
	for _, unit := range p.Units {
		if unit.Status == UnitStatusOccupied {
			n++
		}
	}
	return n
}

// OccupancyRate returns occupied/total units; single_unit properties report
// 1.0 when active and 0.0 otherwise.
func (p *Property) OccupancyRate() float64 {
	if p.Structure == StructureSingleUnit || len(p.Units) == 0 {
		if p.Status == PropertyStatusActive {
			return 1.0
		}
		return 0.0
	}
	return float64(p.OccupiedUnits()) / float64(len(p.Units))
}
