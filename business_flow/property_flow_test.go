package businessflow

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rentfold/rentfold/app/dto"
	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/repository"
	testingutil "github.com/rentfold/rentfold/testing"
	"github.com/rentfold/rentfold/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPropertyFlow(testDB *testingutil.TestDB) PropertyFlow {
	accountRepo := repository.NewAccountRepository(testDB.DB)
	propertyRepo := repository.NewPropertyRepository(testDB.DB)
	tenantRepo := repository.NewTenantRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	return NewPropertyFlow(accountRepo, propertyRepo, tenantRepo, auditRepo, testDB.DB)
}

func TestPropertyFlowCreate(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	propertyFlow := newPropertyFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanFree)
	require.NoError(t, err)

	t.Run("CreateDefaultsToVacant", func(t *testing.T) {
		result, err := propertyFlow.CreateProperty(context.Background(), account.ID, &dto.CreatePropertyRequest{
			Name:        "Cedar Court",
			AddressLine: "4 Cedar Lane",
			City:        "Springfield",
			Structure:   models.StructureSingleUnit.String(),
			MarketRent:  utils.ToPtr(1750.0),
		}, testMetadata())
		require.NoError(t, err)
		assert.Equal(t, models.PropertyStatusVacant.String(), result.Property.Status)
		assert.Equal(t, 1750.0, result.Property.MarketRent)
		assert.NotEmpty(t, result.Property.UUID)
	})

	t.Run("CreateMultiRoomSumsUnitRents", func(t *testing.T) {
		result, err := propertyFlow.CreateProperty(context.Background(), account.ID, &dto.CreatePropertyRequest{
			Name:        "Birch Rooms",
			AddressLine: "9 Birch Road",
			City:        "Springfield",
			Structure:   models.StructureMultiRoom.String(),
			Units: []dto.PropertyUnitDTO{
				{Label: "Room 1", MonthlyRent: 600, Status: "occupied"},
				{Label: "Room 2", MonthlyRent: 650, Status: "available"},
			},
		}, testMetadata())
		require.NoError(t, err)
		assert.Equal(t, 1250.0, result.Property.TotalMonthlyIncome)
		assert.InDelta(t, 0.5, result.Property.OccupancyRate, 1e-9)
	})

	t.Run("StatsBumped", func(t *testing.T) {
		accountRepo := repository.NewAccountRepository(testDB.DB)
		reloaded, err := accountRepo.ByID(context.Background(), account.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, reloaded.StatsTotalProperties)
	})

	t.Run("QuotaEnforcedAtLimit", func(t *testing.T) {
		// Free plan allows 5 properties, two exist already
		for i := 0; i < 3; i++ {
			_, err := fixtures.CreateTestProperty(account.ID, models.PropertyStatusVacant)
			require.NoError(t, err)
		}

		result, err := propertyFlow.CreateProperty(context.Background(), account.ID, &dto.CreatePropertyRequest{
			Name:        "One Too Many",
			AddressLine: "6 Overflow Street",
			City:        "Springfield",
			Structure:   models.StructureSingleUnit.String(),
		}, testMetadata())
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, IsQuotaExceeded(err))

		// Quota denials are audited
		auditRepo := repository.NewAuditLogRepository(testDB.DB)
		auditLogs, err := auditRepo.ByFilter(context.Background(), models.AuditLogFilter{
			AccountID: &account.ID,
			Action:    utils.ToPtr(models.AuditActionQuotaDenied),
		}, "", 0, 0)
		require.NoError(t, err)
		assert.NotEmpty(t, auditLogs)
	})
}

func TestPropertyFlowCreateConcurrentAtBoundary(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	propertyFlow := newPropertyFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanFree)
	require.NoError(t, err)

	// One slot left under the free limit of 5
	for i := 0; i < 4; i++ {
		_, err := fixtures.CreateTestProperty(account.ID, models.PropertyStatusVacant)
		require.NoError(t, err)
	}

	const workers = 5
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := propertyFlow.CreateProperty(context.Background(), account.ID, &dto.CreatePropertyRequest{
				Name:        fmt.Sprintf("Race House %d", i),
				AddressLine: "3 Race Street",
				City:        "Springfield",
				Structure:   models.StructureSingleUnit.String(),
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
	// The row lock serializes the check-then-create, so exactly one request
	// wins the last slot
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, denied)

	propertyRepo := repository.NewPropertyRepository(testDB.DB)
	count, err := propertyRepo.CountByAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestPropertyFlowOwnerScoping(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	propertyFlow := newPropertyFlow(testDB)

	owner, err := fixtures.CreateTestAccount(models.PlanBasic)
	require.NoError(t, err)
	stranger, err := fixtures.CreateTestAccount(models.PlanBasic)
	require.NoError(t, err)

	property, err := fixtures.CreateTestProperty(owner.ID, models.PropertyStatusActive)
	require.NoError(t, err)

	t.Run("OwnerCanGet", func(t *testing.T) {
		result, err := propertyFlow.GetProperty(context.Background(), owner.ID, property.UUID)
		require.NoError(t, err)
		assert.Equal(t, property.Name, result.Property.Name)
	})

	t.Run("StrangerGetsNotFound", func(t *testing.T) {
		_, err := propertyFlow.GetProperty(context.Background(), stranger.ID, property.UUID)
		require.Error(t, err)
		assert.True(t, IsPropertyNotFound(err))
	})

	t.Run("ListScopedToOwner", func(t *testing.T) {
		result, err := propertyFlow.ListProperties(context.Background(), owner.ID, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
		require.Len(t, result.Properties, 1)
		assert.Equal(t, property.UUID.String(), result.Properties[0].UUID)

		empty, err := propertyFlow.ListProperties(context.Background(), stranger.ID, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(0), empty.Total)
		assert.Empty(t, empty.Properties)
	})

	t.Run("UnknownUUID", func(t *testing.T) {
		_, err := propertyFlow.GetProperty(context.Background(), owner.ID, uuid.New())
		require.Error(t, err)
		assert.True(t, IsPropertyNotFound(err))
	})
}

func TestPropertyFlowUpdate(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	propertyFlow := newPropertyFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanBasic)
	require.NoError(t, err)
	property, err := fixtures.CreateTestProperty(account.ID, models.PropertyStatusVacant)
	require.NoError(t, err)

	t.Run("PartialUpdate", func(t *testing.T) {
		result, err := propertyFlow.UpdateProperty(context.Background(), account.ID, property.UUID, &dto.UpdatePropertyRequest{
			Status:     utils.ToPtr(models.PropertyStatusActive.String()),
			MarketRent: utils.ToPtr(1650.0),
		}, testMetadata())
		require.NoError(t, err)
		assert.Equal(t, models.PropertyStatusActive.String(), result.Property.Status)
		assert.Equal(t, 1650.0, result.Property.MarketRent)
		// Untouched fields survive
		assert.Equal(t, property.Name, result.Property.Name)
	})

	t.Run("NoFieldsRejected", func(t *testing.T) {
		_, err := propertyFlow.UpdateProperty(context.Background(), account.ID, property.UUID, &dto.UpdatePropertyRequest{}, testMetadata())
		require.Error(t, err)
		assert.True(t, IsNoUpdateFields(err))
	})
}

func TestPropertyFlowDelete(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	propertyFlow := newPropertyFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanBasic)
	require.NoError(t, err)

	createViaFlow := func(t *testing.T, name string) uuid.UUID {
		t.Helper()
		result, err := propertyFlow.CreateProperty(context.Background(), account.ID, &dto.CreatePropertyRequest{
			Name:        name,
			AddressLine: "7 Elm Street",
			City:        "Springfield",
			Structure:   models.StructureSingleUnit.String(),
		}, testMetadata())
		require.NoError(t, err)
		parsed, err := uuid.Parse(result.Property.UUID)
		require.NoError(t, err)
		return parsed
	}

	t.Run("BlockedByAttachedTenant", func(t *testing.T) {
		propertyUUID := createViaFlow(t, "Elm Cottage")
		result, err := propertyFlow.GetProperty(context.Background(), account.ID, propertyUUID)
		require.NoError(t, err)
		_, err = fixtures.CreateTestTenant(account.ID, &result.Property.ID, models.TenantStatusActive)
		require.NoError(t, err)

		err = propertyFlow.DeleteProperty(context.Background(), account.ID, propertyUUID, testMetadata())
		require.Error(t, err)
		assert.True(t, IsPropertyHasTenants(err))

		// Property is still there
		_, err = propertyFlow.GetProperty(context.Background(), account.ID, propertyUUID)
		require.NoError(t, err)
	})

	t.Run("SoftDeletedTenantDoesNotBlock", func(t *testing.T) {
		propertyUUID := createViaFlow(t, "Elm Annex")
		result, err := propertyFlow.GetProperty(context.Background(), account.ID, propertyUUID)
		require.NoError(t, err)
		_, err = fixtures.CreateTestTenant(account.ID, &result.Property.ID, models.TenantStatusDeleted)
		require.NoError(t, err)

		err = propertyFlow.DeleteProperty(context.Background(), account.ID, propertyUUID, testMetadata())
		require.NoError(t, err)

		_, err = propertyFlow.GetProperty(context.Background(), account.ID, propertyUUID)
		require.Error(t, err)
		assert.True(t, IsPropertyNotFound(err))
	})

	t.Run("StatsDecremented", func(t *testing.T) {
		accountRepo := repository.NewAccountRepository(testDB.DB)
		reloaded, err := accountRepo.ByID(context.Background(), account.ID)
		require.NoError(t, err)
		// One property remains from the blocked-delete subtest
		assert.Equal(t, 1, reloaded.StatsTotalProperties)
	})
}

func TestPropertyFlowListPagination(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	propertyFlow := newPropertyFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanBasic)
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		_, err := fixtures.CreateTestProperty(account.ID, models.PropertyStatusVacant)
		require.NoError(t, err)
	}

	page1, err := propertyFlow.ListProperties(context.Background(), account.ID, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(7), page1.Total)
	assert.Len(t, page1.Properties, 5)

	page2, err := propertyFlow.ListProperties(context.Background(), account.ID, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), page2.Total)
	assert.Len(t, page2.Properties, 2)

	seen := make(map[string]bool)
	for _, p := range append(page1.Properties, page2.Properties...) {
		require.False(t, seen[p.UUID], fmt.Sprintf("duplicate property %s across pages", p.UUID))
		seen[p.UUID] = true
	}
}
