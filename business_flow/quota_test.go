package businessflow

import (
	"testing"

	"github.com/rentfold/rentfold/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckQuota(t *testing.T) {
	t.Run("UnderLimit", func(t *testing.T) {
		err := CheckQuota(models.PlanFree, 5, 4, models.ResourceProperties)
		assert.NoError(t, err)
	})

	t.Run("AtLimit", func(t *testing.T) {
		err := CheckQuota(models.PlanFree, 5, 5, models.ResourceProperties)
		require.Error(t, err)
		assert.True(t, IsQuotaExceeded(err))
	})

	t.Run("OverLimit", func(t *testing.T) {
		err := CheckQuota(models.PlanFree, 5, 7, models.ResourceTenants)
		require.Error(t, err)
		assert.True(t, IsQuotaExceeded(err))
	})

	t.Run("PaidTierStillEnforced", func(t *testing.T) {
		err := CheckQuota(models.PlanEnterprise, 1000, 1000, models.ResourceProperties)
		require.Error(t, err)
		assert.True(t, IsQuotaExceeded(err))
	})

	t.Run("ZeroLimitFallsBackToDefault", func(t *testing.T) {
		// A zero stored limit must not read as "0 allowed"
		err := CheckQuota(models.PlanFree, 0, 4, models.ResourceProperties)
		assert.NoError(t, err)

		err = CheckQuota(models.PlanFree, 0, 5, models.ResourceProperties)
		require.Error(t, err)
		assert.True(t, IsQuotaExceeded(err))
	})

	t.Run("NegativeLimitFallsBackToDefault", func(t *testing.T) {
		err := CheckQuota(models.PlanFree, -1, 9, models.ResourceTenants)
		assert.NoError(t, err)

		err = CheckQuota(models.PlanFree, -1, 10, models.ResourceTenants)
		require.Error(t, err)
		assert.True(t, IsQuotaExceeded(err))
	})

	t.Run("ErrorMessageNamesPlanAndLimit", func(t *testing.T) {
		err := CheckQuota(models.PlanBasic, 25, 25, models.ResourceTenants)
		require.Error(t, err)

		var businessErr *BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, "QUOTA_EXCEEDED", businessErr.Code)
		assert.Contains(t, businessErr.Message, "Basic")
		assert.Contains(t, businessErr.Message, "25")
		assert.Contains(t, businessErr.Message, "tenants")
	})
}

func TestLimitsForPlan(t *testing.T) {
	free := models.LimitsForPlan(models.PlanFree)
	assert.Equal(t, 5, free.Properties)
	assert.Equal(t, 10, free.Tenants)

	basic := models.LimitsForPlan(models.PlanBasic)
	assert.Greater(t, basic.Properties, free.Properties)
	assert.Greater(t, basic.Tenants, free.Tenants)

	// Unknown tiers never grant elevated quotas
	unknown := models.LimitsForPlan(models.SubscriptionPlan("pro-max"))
	assert.Equal(t, free, unknown)
}
