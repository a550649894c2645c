package models

import (
	"testing"
	"time"

	"github.com/rentfold/rentfold/utils"
	"github.com/stretchr/testify/assert"
)

func TestAccountApplyPlan(t *testing.T) {
	account := &Account{}

	account.ApplyPlan(PlanFree)
	assert.Equal(t, PlanFree, account.SubscriptionPlan)
	assert.Equal(t, 5, account.LimitProperties)
	assert.Equal(t, 10, account.LimitTenants)

	account.ApplyPlan(PlanProfessional)
	assert.Equal(t, PlanProfessional, account.SubscriptionPlan)
	assert.Equal(t, 100, account.LimitProperties)
	assert.Equal(t, 1000, account.LimitTenants)

	// Downgrade overwrites the limits back down
	account.ApplyPlan(PlanFree)
	assert.Equal(t, 5, account.LimitProperties)
	assert.Equal(t, 10, account.LimitTenants)
}

func TestAccountTrialAndWriteAccess(t *testing.T) {
	account := &Account{
		SubscriptionStatus: SubscriptionTrialing,
		TrialEndsAt:        utils.UTCNowAddPtr(24 * time.Hour),
	}
	assert.True(t, account.IsTrialing())
	assert.True(t, account.CanWrite())

	account.TrialEndsAt = utils.UTCNowAddPtr(-time.Hour)
	assert.False(t, account.IsTrialing())

	account.SubscriptionStatus = SubscriptionCanceled
	assert.False(t, account.CanWrite())

	account.SubscriptionStatus = SubscriptionPastDue
	assert.True(t, account.CanWrite())
}

func TestPropertyMonthlyIncome(t *testing.T) {
	single := &Property{
		Structure:  StructureSingleUnit,
		MarketRent: 1800,
	}
	assert.Equal(t, 1800.0, single.MonthlyIncome())

	multi := &Property{
		Structure: StructureMultiRoom,
		Units: PropertyUnits{
			{Label: "Room A", MonthlyRent: 600, Status: UnitStatusOccupied},
			{Label: "Room B", MonthlyRent: 650, Status: UnitStatusAvailable},
			{Label: "Room C", MonthlyRent: 700, Status: UnitStatusOccupied},
		},
	}
	multi.RecalculateIncome()
	assert.Equal(t, 1950.0, multi.MonthlyIncome())
	assert.Equal(t, 2, multi.OccupiedUnits())
	assert.InDelta(t, 2.0/3.0, multi.OccupancyRate(), 1e-9)
}

func TestPropertyRecalculateIncomeIgnoresSingleUnit(t *testing.T) {
	p := &Property{
		Structure:          StructureSingleUnit,
		MarketRent:         1500,
		TotalMonthlyIncome: 999,
	}
	p.RecalculateIncome()
	assert.Equal(t, 999.0, p.TotalMonthlyIncome)
	assert.Equal(t, 1500.0, p.MonthlyIncome())
}

func TestPropertyOccupancyRateSingleUnit(t *testing.T) {
	p := &Property{Structure: StructureSingleUnit, Status: PropertyStatusActive}
	assert.Equal(t, 1.0, p.OccupancyRate())

	p.Status = PropertyStatusVacant
	assert.Equal(t, 0.0, p.OccupancyRate())
}

func TestTenantStatusHelpers(t *testing.T) {
	tenant := &Tenant{Status: TenantStatusActive, FirstName: "Riley", LastName: "Nguyen"}
	assert.True(t, tenant.IsActiveLease())
	assert.False(t, tenant.IsDeleted())
	assert.Equal(t, "Riley Nguyen", tenant.FullName())

	tenant.Status = TenantStatusDeleted
	assert.True(t, tenant.IsDeleted())
	assert.False(t, tenant.IsActiveLease())

	tenant.Status = TenantStatusPending
	assert.False(t, tenant.IsActiveLease())
}

func TestTenantStatusValid(t *testing.T) {
	for _, s := range []TenantStatus{
		TenantStatusActive, TenantStatusInactive, TenantStatusPast,
		TenantStatusPending, TenantStatusEvicted, TenantStatusDeleted,
	} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, TenantStatus("ghost").Valid())
}

func TestSubscriptionPlanValid(t *testing.T) {
	assert.True(t, PlanFree.Valid())
	assert.True(t, PlanEnterprise.Valid())
	assert.False(t, SubscriptionPlan("platinum").Valid())
}

func TestAccountSessionIsUsable(t *testing.T) {
	session := &AccountSession{
		IsActive:  utils.ToPtr(true),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	assert.True(t, session.IsUsable())

	session.RevokedAt = utils.UTCNowPtr()
	assert.False(t, session.IsUsable())

	session.RevokedAt = nil
	session.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	assert.False(t, session.IsUsable())
	assert.True(t, session.IsExpired())

	session.ExpiresAt = time.Now().UTC().Add(time.Hour)
	session.IsActive = utils.ToPtr(false)
	assert.False(t, session.IsUsable())
}

func TestPropertyUnitsScanValue(t *testing.T) {
	units := PropertyUnits{{Label: "1A", MonthlyRent: 900, Status: UnitStatusOccupied}}

	raw, err := units.Value()
	assert.NoError(t, err)

	var decoded PropertyUnits
	assert.NoError(t, decoded.Scan(raw))
	assert.Equal(t, units, decoded)

	var empty PropertyUnits
	assert.NoError(t, empty.Scan(nil))
	assert.Empty(t, empty)
}
