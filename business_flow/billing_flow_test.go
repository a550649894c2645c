package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/rentfold/rentfold/app/dto"
	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/repository"
	testingutil "github.com/rentfold/rentfold/testing"
	"github.com/rentfold/rentfold/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBillingFlow(testDB *testingutil.TestDB) BillingFlow {
	accountRepo := repository.NewAccountRepository(testDB.DB)
	billingEventRepo := repository.NewBillingEventRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	return NewBillingFlow(accountRepo, billingEventRepo, auditRepo, testDB.DB)
}

func setBillingCustomerRef(t *testing.T, testDB *testingutil.TestDB, accountID uint, ref string) {
	t.Helper()
	require.NoError(t, testDB.DB.Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("billing_customer_ref", ref).Error)
}

func TestBillingWebhookSubscriptionUpdated(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	billingFlow := newBillingFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanFree)
	require.NoError(t, err)
	setBillingCustomerRef(t, testDB, account.ID, "cus_upgrade_1")

	periodEnd := time.Now().UTC().AddDate(0, 1, 0).Truncate(time.Second)
	req := &dto.BillingWebhookRequest{
		EventID: "evt_upgrade_1",
		Type:    models.BillingEventSubscriptionUpdated,
		Data: dto.BillingEventData{
			CustomerRef:      "cus_upgrade_1",
			SubscriptionRef:  utils.ToPtr("sub_123"),
			Plan:             models.PlanProfessional.String(),
			Status:           models.SubscriptionActive.String(),
			CurrentPeriodEnd: &periodEnd,
		},
	}

	result, err := billingFlow.ProcessWebhook(context.Background(), req, testMetadata())
	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Equal(t, "evt_upgrade_1", result.EventID)

	accountRepo := repository.NewAccountRepository(testDB.DB)
	reloaded, err := accountRepo.ByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanProfessional, reloaded.SubscriptionPlan)
	assert.Equal(t, models.SubscriptionActive, reloaded.SubscriptionStatus)
	assert.Equal(t, 100, reloaded.LimitProperties)
	assert.Equal(t, 1000, reloaded.LimitTenants)
	require.NotNil(t, reloaded.BillingSubscriptionRef)
	assert.Equal(t, "sub_123", *reloaded.BillingSubscriptionRef)
	require.NotNil(t, reloaded.CurrentPeriodEnd)

	t.Run("ReplayAcknowledgedWithoutReapplying", func(t *testing.T) {
		downgrade := *req
		downgrade.Data.Plan = models.PlanFree.String()

		result, err := billingFlow.ProcessWebhook(context.Background(), &downgrade, testMetadata())
		require.NoError(t, err)
		assert.True(t, result.Replayed)

		// The replayed payload changed nothing
		reloaded, err := accountRepo.ByID(context.Background(), account.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PlanProfessional, reloaded.SubscriptionPlan)
	})

	t.Run("EventArchived", func(t *testing.T) {
		billingEventRepo := repository.NewBillingEventRepository(testDB.DB)
		event, err := billingEventRepo.ByEventID(context.Background(), "evt_upgrade_1")
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, models.BillingEventSubscriptionUpdated, event.Type)
		require.NotNil(t, event.AccountID)
		assert.Equal(t, account.ID, *event.AccountID)
		assert.NotEmpty(t, event.Payload)
	})

	t.Run("WebhookAudited", func(t *testing.T) {
		auditRepo := repository.NewAuditLogRepository(testDB.DB)
		auditLogs, err := auditRepo.ByFilter(context.Background(), models.AuditLogFilter{
			AccountID: &account.ID,
			Action:    utils.ToPtr(models.AuditActionWebhookProcessed),
		}, "", 0, 0)
		require.NoError(t, err)
		assert.Len(t, auditLogs, 1)
	})
}

func TestBillingWebhookSubscriptionCanceled(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	billingFlow := newBillingFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanProfessional)
	require.NoError(t, err)
	setBillingCustomerRef(t, testDB, account.ID, "cus_cancel_1")

	// Entities above the free limits exist before the downgrade
	for i := 0; i < 8; i++ {
		_, err := fixtures.CreateTestProperty(account.ID, models.PropertyStatusActive)
		require.NoError(t, err)
	}

	result, err := billingFlow.ProcessWebhook(context.Background(), &dto.BillingWebhookRequest{
		EventID: "evt_cancel_1",
		Type:    models.BillingEventSubscriptionCanceled,
		Data:    dto.BillingEventData{CustomerRef: "cus_cancel_1"},
	}, testMetadata())
	require.NoError(t, err)
	assert.False(t, result.Replayed)

	accountRepo := repository.NewAccountRepository(testDB.DB)
	reloaded, err := accountRepo.ByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, reloaded.SubscriptionPlan)
	assert.Equal(t, models.SubscriptionCanceled, reloaded.SubscriptionStatus)
	assert.Equal(t, 5, reloaded.LimitProperties)
	assert.Nil(t, reloaded.BillingSubscriptionRef)

	// Existing entities above the free limits are kept
	propertyRepo := repository.NewPropertyRepository(testDB.DB)
	count, err := propertyRepo.CountByAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), count)
}

func TestBillingWebhookRejections(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	billingFlow := newBillingFlow(testDB)

	account, err := fixtures.CreateTestAccount(models.PlanFree)
	require.NoError(t, err)
	setBillingCustomerRef(t, testDB, account.ID, "cus_reject_1")

	t.Run("MissingEventID", func(t *testing.T) {
		_, err := billingFlow.ProcessWebhook(context.Background(), &dto.BillingWebhookRequest{
			Type: models.BillingEventSubscriptionUpdated,
			Data: dto.BillingEventData{CustomerRef: "cus_reject_1"},
		}, testMetadata())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrWebhookEventIDRequired)
	})

	t.Run("UnknownCustomerRef", func(t *testing.T) {
		_, err := billingFlow.ProcessWebhook(context.Background(), &dto.BillingWebhookRequest{
			EventID: "evt_reject_1",
			Type:    models.BillingEventSubscriptionUpdated,
			Data:    dto.BillingEventData{CustomerRef: "cus_nobody"},
		}, testMetadata())
		require.Error(t, err)
		assert.True(t, IsWebhookUnknownAccount(err))
	})

	t.Run("UnknownEventType", func(t *testing.T) {
		_, err := billingFlow.ProcessWebhook(context.Background(), &dto.BillingWebhookRequest{
			EventID: "evt_reject_2",
			Type:    "invoice.exploded",
			Data:    dto.BillingEventData{CustomerRef: "cus_reject_1"},
		}, testMetadata())
		require.Error(t, err)
		assert.True(t, IsWebhookUnknownType(err))
	})

	t.Run("FailedEventNotArchived", func(t *testing.T) {
		// A rejected event must stay retryable under the same event id
		billingEventRepo := repository.NewBillingEventRepository(testDB.DB)
		event, err := billingEventRepo.ByEventID(context.Background(), "evt_reject_2")
		require.NoError(t, err)
		assert.Nil(t, event)
	})
}
