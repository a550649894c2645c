package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentfold/rentfold/config"
	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/repository"
	testingutil "github.com/rentfold/rentfold/testing"
	"github.com/rentfold/rentfold/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboardFlow(testDB *testingutil.TestDB) DashboardFlow {
	accountRepo := repository.NewAccountRepository(testDB.DB)
	propertyRepo := repository.NewPropertyRepository(testDB.DB)
	tenantRepo := repository.NewTenantRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	return NewDashboardFlow(accountRepo, propertyRepo, tenantRepo, auditRepo, &config.CacheConfig{}, nil, testDB.DB)
}

func setTenantColumn(t *testing.T, testDB *testingutil.TestDB, tenantID uint, column string, value any) {
	t.Helper()
	require.NoError(t, testDB.DB.Model(&models.Tenant{}).
		Where("id = ?", tenantID).
		Update(column, value).Error)
}

// dueDayOutsideWindow picks a rent due day whose next occurrence falls past
// the upcoming-rent lookahead window, regardless of today's date.
func dueDayOutsideWindow(now time.Time) int {
	for day := 1; day <= 28; day++ {
		due := utils.NextRentDueDate(day, now)
		if utils.DaysUntil(due, now) > utils.UpcomingRentWindowDays {
			return day
		}
	}
	return 28
}

func TestDashboardStatsAggregation(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	dashboardFlow := newDashboardFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanBasic)
	require.NoError(t, err)

	_, err = fixtures.CreateTestProperty(account.ID, models.PropertyStatusActive)
	require.NoError(t, err)
	_, err = fixtures.CreateTestProperty(account.ID, models.PropertyStatusActive)
	require.NoError(t, err)
	_, err = fixtures.CreateTestProperty(account.ID, models.PropertyStatusVacant)
	require.NoError(t, err)

	// A multi-room property contributes its per-unit statuses to the
	// vacancy aggregate, not its own status
	rooms := &models.Property{
		UUID:        uuid.New(),
		AccountID:   account.ID,
		Name:        "Birch Rooms",
		AddressLine: "9 Birch Road",
		City:        "Springfield",
		Structure:   models.StructureMultiRoom,
		Status:      models.PropertyStatusActive,
		Units: models.PropertyUnits{
			{Label: "Room 1", MonthlyRent: 600, Status: models.UnitStatusOccupied},
			{Label: "Room 2", MonthlyRent: 650, Status: models.UnitStatusAvailable},
			{Label: "Room 3", MonthlyRent: 700, Status: models.UnitStatusAvailable},
			{Label: "Room 4", MonthlyRent: 700, Status: models.UnitStatusAvailable},
		},
	}
	require.NoError(t, testDB.DB.Create(rooms).Error)

	active1, err := fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusActive)
	require.NoError(t, err)
	active2, err := fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusActive)
	require.NoError(t, err)
	_, err = fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusPending)
	require.NoError(t, err)
	_, err = fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusDeleted)
	require.NoError(t, err)

	setTenantColumn(t, testDB, active1.ID, "rent_amount", 1000.0)
	setTenantColumn(t, testDB, active2.ID, "rent_amount", 1250.0)

	result, err := dashboardFlow.GetDashboardStats(context.Background(), account.ID)
	require.NoError(t, err)

	stats := result.Stats
	// Soft-deleted tenants count nowhere
	assert.Equal(t, 3, stats.TotalTenants)
	assert.Equal(t, 2, stats.ActiveTenants)
	// Revenue comes from active leases only
	assert.Equal(t, 2250.0, stats.TotalMonthlyRevenue)
	assert.Equal(t, 4, stats.TotalProperties)
	// Seven units total: two occupied singles, one vacant single, one of four
	// rooms occupied
	assert.InDelta(t, 4.0/7.0, stats.VacancyRate, 1e-9)
	assert.False(t, stats.GeneratedAt.IsZero())
}

func TestDashboardUpcomingRents(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	dashboardFlow := newDashboardFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanBasic)
	require.NoError(t, err)

	now := utils.UTCNow()

	dueIn := func(days int) *models.Tenant {
		tenant, err := fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusActive)
		require.NoError(t, err)
		setTenantColumn(t, testDB, tenant.ID, "rent_due_day", now.AddDate(0, 0, days).Day())
		return tenant
	}

	dueToday := dueIn(0)
	lastDayIn := dueIn(7)
	dueIn(8) // one day past the window, excluded

	farOut, err := fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusActive)
	require.NoError(t, err)
	setTenantColumn(t, testDB, farOut.ID, "rent_due_day", dueDayOutsideWindow(now))

	// Pending tenants never show up in the rent schedule
	pending, err := fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusPending)
	require.NoError(t, err)
	setTenantColumn(t, testDB, pending.ID, "rent_due_day", now.Day())

	result, err := dashboardFlow.GetDashboardStats(context.Background(), account.ID)
	require.NoError(t, err)

	require.Len(t, result.Stats.UpcomingRents, 2)
	// Soonest first
	first := result.Stats.UpcomingRents[0]
	assert.Equal(t, dueToday.UUID.String(), first.TenantUUID)
	assert.Equal(t, dueToday.FullName(), first.TenantName)
	assert.Equal(t, 0, first.DaysUntil)

	second := result.Stats.UpcomingRents[1]
	assert.Equal(t, lastDayIn.UUID.String(), second.TenantUUID)
	assert.Equal(t, 7, second.DaysUntil)
}

func TestDashboardRenewalTasks(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	dashboardFlow := newDashboardFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanBasic)
	require.NoError(t, err)

	now := utils.UTCNow()
	today := utils.TruncateToDay(now)
	outOfWindowDay := dueDayOutsideWindow(now)

	endsIn := func(days int) *models.Tenant {
		tenant, err := fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusActive)
		require.NoError(t, err)
		// Keep the rent schedule quiet so only renewal tasks vary
		setTenantColumn(t, testDB, tenant.ID, "rent_due_day", outOfWindowDay)
		setTenantColumn(t, testDB, tenant.ID, "lease_end", today.AddDate(0, 0, days))
		return tenant
	}

	// A lease ending today has already run out: no renewal task
	endsToday := endsIn(0)
	urgent := endsIn(3)
	lastHigh := endsIn(7)
	lastMedium := endsIn(14)
	firstLow := endsIn(15)
	lastLow := endsIn(30)
	endsIn(31) // one day past the renewal window, no task

	result, err := dashboardFlow.GetDashboardStats(context.Background(), account.ID)
	require.NoError(t, err)

	tasks := result.Stats.UpcomingTasks
	require.Len(t, tasks, 5)

	byUUID := make(map[string]string, len(tasks))
	for _, task := range tasks {
		byUUID[task.TenantUUID] = task.Priority
	}
	assert.NotContains(t, byUUID, endsToday.UUID.String())
	assert.Equal(t, "high", byUUID[urgent.UUID.String()])
	assert.Equal(t, "high", byUUID[lastHigh.UUID.String()])
	assert.Equal(t, "medium", byUUID[lastMedium.UUID.String()])
	assert.Equal(t, "low", byUUID[firstLow.UUID.String()])
	assert.Equal(t, "low", byUUID[lastLow.UUID.String()])
}

func TestRenewalPriorityBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{1, "high"},
		{7, "high"},
		{8, "medium"},
		{14, "medium"},
		{15, "low"},
		{30, "low"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, renewalPriority(tc.days), "days=%d", tc.days)
	}
}

func TestDashboardRecentTenantsCap(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	dashboardFlow := newDashboardFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanBasic)
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		_, err := fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusPending)
		require.NoError(t, err)
	}

	result, err := dashboardFlow.GetDashboardStats(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Len(t, result.Stats.RecentTenants, utils.DashboardListCap)
}

func TestDashboardRefreshStats(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	dashboardFlow := newDashboardFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanBasic)
	require.NoError(t, err)
	_, err = fixtures.CreateTestProperty(account.ID, models.PropertyStatusActive)
	require.NoError(t, err)
	tenant, err := fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusActive)
	require.NoError(t, err)

	result, err := dashboardFlow.RefreshStats(context.Background(), account.ID, testMetadata())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.TotalTenants)
	assert.Equal(t, 1, result.Stats.TotalProperties)
	assert.Equal(t, tenant.RentAmount, result.Stats.TotalMonthlyRevenue)

	// Refresh persists the denormalized stats columns synchronously
	accountRepo := repository.NewAccountRepository(testDB.DB)
	reloaded, err := accountRepo.ByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.StatsTotalProperties)
	assert.Equal(t, 1, reloaded.StatsTotalTenants)
	assert.Equal(t, 1, reloaded.StatsActiveLeases)
	assert.Equal(t, tenant.RentAmount, reloaded.StatsMonthlyRevenue)

	// And leaves an audit entry behind
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	auditLogs, err := auditRepo.ByFilter(context.Background(), models.AuditLogFilter{
		AccountID: &account.ID,
		Action:    utils.ToPtr(models.AuditActionStatsRefreshed),
	}, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, auditLogs, 1)
}
