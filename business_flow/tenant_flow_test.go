package businessflow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentfold/rentfold/app/dto"
	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/repository"
	testingutil "github.com/rentfold/rentfold/testing"
	"github.com/rentfold/rentfold/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTenantFlow(testDB *testingutil.TestDB) TenantFlow {
	accountRepo := repository.NewAccountRepository(testDB.DB)
	propertyRepo := repository.NewPropertyRepository(testDB.DB)
	tenantRepo := repository.NewTenantRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	return NewTenantFlow(accountRepo, propertyRepo, tenantRepo, auditRepo, testDB.DB)
}

func TestTenantFlowCreate(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	tenantFlow := newTenantFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanFree)
	require.NoError(t, err)
	property, err := fixtures.CreateTestProperty(account.ID, models.PropertyStatusActive)
	require.NoError(t, err)

	t.Run("CreateWithPropertyRef", func(t *testing.T) {
		propertyUUID := property.UUID.String()
		result, err := tenantFlow.CreateTenant(context.Background(), account.ID, &dto.CreateTenantRequest{
			FirstName:    "Riley",
			LastName:     "Nguyen",
			Email:        "Riley.Nguyen@Example.com",
			PropertyUUID: &propertyUUID,
			Status:       utils.ToPtr(models.TenantStatusActive.String()),
			RentAmount:   1200,
			RentDueDay:   15,
		}, testMetadata())
		require.NoError(t, err)
		assert.Equal(t, "riley.nguyen@example.com", result.Tenant.Email)
		assert.Equal(t, models.TenantStatusActive.String(), result.Tenant.Status)
		require.NotNil(t, result.Tenant.PropertyID)
		assert.Equal(t, property.ID, *result.Tenant.PropertyID)
	})

	t.Run("ActiveLeaseBumpsRevenue", func(t *testing.T) {
		accountRepo := repository.NewAccountRepository(testDB.DB)
		reloaded, err := accountRepo.ByID(context.Background(), account.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, reloaded.StatsTotalTenants)
		assert.Equal(t, 1, reloaded.StatsActiveLeases)
		assert.Equal(t, 1200.0, reloaded.StatsMonthlyRevenue)
	})

	t.Run("DuplicateEmailWithinAccount", func(t *testing.T) {
		_, err := tenantFlow.CreateTenant(context.Background(), account.ID, &dto.CreateTenantRequest{
			FirstName:  "Other",
			LastName:   "Person",
			Email:      "riley.nguyen@example.com",
			RentAmount: 900,
			RentDueDay: 1,
		}, testMetadata())
		require.Error(t, err)
		assert.True(t, IsDuplicateTenantEmail(err))
	})

	t.Run("SameEmailOtherAccountAllowed", func(t *testing.T) {
		other, err := fixtures.CreateTestAccount(models.PlanFree)
		require.NoError(t, err)

		_, err = tenantFlow.CreateTenant(context.Background(), other.ID, &dto.CreateTenantRequest{
			FirstName:  "Riley",
			LastName:   "Nguyen",
			Email:      "riley.nguyen@example.com",
			RentAmount: 1100,
			RentDueDay: 1,
		}, testMetadata())
		require.NoError(t, err)
	})

	t.Run("LeaseWindowRejected", func(t *testing.T) {
		start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
		_, err := tenantFlow.CreateTenant(context.Background(), account.ID, &dto.CreateTenantRequest{
			FirstName:  "Backwards",
			LastName:   "Lease",
			Email:      "backwards@example.com",
			RentAmount: 800,
			RentDueDay: 1,
			LeaseStart: &start,
			LeaseEnd:   &end,
		}, testMetadata())
		require.Error(t, err)
		assert.True(t, IsLeaseWindowInvalid(err))
	})

	t.Run("UnknownPropertyRef", func(t *testing.T) {
		unknown := uuid.New().String()
		_, err := tenantFlow.CreateTenant(context.Background(), account.ID, &dto.CreateTenantRequest{
			FirstName:    "No",
			LastName:     "Property",
			Email:        "no.property@example.com",
			PropertyUUID: &unknown,
			RentAmount:   700,
			RentDueDay:   1,
		}, testMetadata())
		require.Error(t, err)
		assert.True(t, IsPropertyNotFound(err))
	})

	t.Run("QuotaEnforcedAtLimit", func(t *testing.T) {
		// Free plan allows 10 tenants, one exists already
		for i := 0; i < 9; i++ {
			_, err := fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusPending)
			require.NoError(t, err)
		}

		_, err := tenantFlow.CreateTenant(context.Background(), account.ID, &dto.CreateTenantRequest{
			FirstName:  "Eleven",
			LastName:   "Th",
			Email:      "eleventh@example.com",
			RentAmount: 500,
			RentDueDay: 1,
		}, testMetadata())
		require.Error(t, err)
		assert.True(t, IsQuotaExceeded(err))
	})
}

func TestTenantFlowCreateConcurrentAtBoundary(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	tenantFlow := newTenantFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanFree)
	require.NoError(t, err)

	// One slot left under the free limit of 10
	for i := 0; i < 9; i++ {
		_, err := fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusPending)
		require.NoError(t, err)
	}

	const workers = 4
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := tenantFlow.CreateTenant(context.Background(), account.ID, &dto.CreateTenantRequest{
				FirstName:  "Race",
				LastName:   fmt.Sprintf("Runner%d", i),
				Email:      fmt.Sprintf("race.runner%d@example.com", i),
				RentAmount: 800,
				RentDueDay: 1,
			}, testMetadata())
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	denied := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case IsQuotaExceeded(err):
			denied++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, denied)

	tenantRepo := repository.NewTenantRepository(testDB.DB)
	count, err := tenantRepo.CountByAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)
}

func TestTenantFlowSoftDelete(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	tenantFlow := newTenantFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanBasic)
	require.NoError(t, err)

	created, err := tenantFlow.CreateTenant(context.Background(), account.ID, &dto.CreateTenantRequest{
		FirstName:  "Sam",
		LastName:   "Ortiz",
		Email:      "sam.ortiz@example.com",
		Status:     utils.ToPtr(models.TenantStatusActive.String()),
		RentAmount: 950,
		RentDueDay: 5,
	}, testMetadata())
	require.NoError(t, err)
	tenantUUID := uuid.MustParse(created.Tenant.UUID)

	t.Run("DeleteSucceeds", func(t *testing.T) {
		err := tenantFlow.DeleteTenant(context.Background(), account.ID, tenantUUID, testMetadata())
		require.NoError(t, err)
	})

	t.Run("DeletedTenantHiddenFromReads", func(t *testing.T) {
		_, err := tenantFlow.GetTenant(context.Background(), account.ID, tenantUUID)
		require.Error(t, err)
		assert.True(t, IsTenantNotFound(err))

		list, err := tenantFlow.ListTenants(context.Background(), account.ID, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(0), list.Total)
		assert.Empty(t, list.Tenants)
	})

	t.Run("SecondDeleteIsNotFound", func(t *testing.T) {
		err := tenantFlow.DeleteTenant(context.Background(), account.ID, tenantUUID, testMetadata())
		require.Error(t, err)
		assert.True(t, IsTenantNotFound(err))
	})

	t.Run("StatsRolledBack", func(t *testing.T) {
		accountRepo := repository.NewAccountRepository(testDB.DB)
		reloaded, err := accountRepo.ByID(context.Background(), account.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, reloaded.StatsTotalTenants)
		assert.Equal(t, 0, reloaded.StatsActiveLeases)
		assert.Equal(t, 0.0, reloaded.StatsMonthlyRevenue)
	})

	t.Run("EmailReusableAfterDelete", func(t *testing.T) {
		_, err := tenantFlow.CreateTenant(context.Background(), account.ID, &dto.CreateTenantRequest{
			FirstName:  "Sam",
			LastName:   "Ortiz",
			Email:      "sam.ortiz@example.com",
			RentAmount: 975,
			RentDueDay: 5,
		}, testMetadata())
		require.NoError(t, err)
	})
}

func TestTenantFlowUpdate(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	tenantFlow := newTenantFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanBasic)
	require.NoError(t, err)

	created, err := tenantFlow.CreateTenant(context.Background(), account.ID, &dto.CreateTenantRequest{
		FirstName:  "Dana",
		LastName:   "Reyes",
		Email:      "dana.reyes@example.com",
		RentAmount: 1000,
		RentDueDay: 10,
	}, testMetadata())
	require.NoError(t, err)
	tenantUUID := uuid.MustParse(created.Tenant.UUID)

	t.Run("PartialUpdate", func(t *testing.T) {
		result, err := tenantFlow.UpdateTenant(context.Background(), account.ID, tenantUUID, &dto.UpdateTenantRequest{
			RentAmount: utils.ToPtr(1100.0),
			RentDueDay: utils.ToPtr(12),
		}, testMetadata())
		require.NoError(t, err)
		assert.Equal(t, 1100.0, result.Tenant.RentAmount)
		assert.Equal(t, 12, result.Tenant.RentDueDay)
		assert.Equal(t, "Dana", result.Tenant.FirstName)
	})

	t.Run("NoFieldsRejected", func(t *testing.T) {
		_, err := tenantFlow.UpdateTenant(context.Background(), account.ID, tenantUUID, &dto.UpdateTenantRequest{}, testMetadata())
		require.Error(t, err)
		assert.True(t, IsNoUpdateFields(err))
	})

	t.Run("AuditTrailRecordsChanges", func(t *testing.T) {
		trail, err := tenantFlow.AuditTrail(context.Background(), account.ID, tenantUUID)
		require.NoError(t, err)
		require.Len(t, trail.Entries, 2)
		assert.Equal(t, models.AuditActionTenantCreated, trail.Entries[0].Action)
		assert.Equal(t, models.AuditActionTenantUpdated, trail.Entries[1].Action)

		changes, ok := trail.Entries[1].Changes.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, changes, "rent_amount")
		assert.Contains(t, changes, "rent_due_day")
	})

	t.Run("TrailSurvivesSoftDelete", func(t *testing.T) {
		require.NoError(t, tenantFlow.DeleteTenant(context.Background(), account.ID, tenantUUID, testMetadata()))

		trail, err := tenantFlow.AuditTrail(context.Background(), account.ID, tenantUUID)
		require.NoError(t, err)
		require.Len(t, trail.Entries, 3)
		assert.Equal(t, models.AuditActionTenantDeleted, trail.Entries[2].Action)
	})
}
