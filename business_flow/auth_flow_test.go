package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/rentfold/rentfold/app/dto"
	"github.com/rentfold/rentfold/app/services"
	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/repository"
	testingutil "github.com/rentfold/rentfold/testing"
	"github.com/rentfold/rentfold/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) services.TokenService {
	t.Helper()
	tokenService, err := services.NewTokenService(
		1*time.Hour, 24*time.Hour,
		"test-issuer", "test-audience",
		"test-secret-key-that-is-long-enough!",
	)
	require.NoError(t, err)
	return tokenService
}

func TestSignupFlow(t *testing.T) {
	testDB := newFlowTestDB(t)

	accountRepo := repository.NewAccountRepository(testDB.DB)
	sessionRepo := repository.NewAccountSessionRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	tokenService := newTestTokenService(t)

	signupFlow := NewSignupFlow(accountRepo, sessionRepo, auditRepo, tokenService, testDB.DB)

	t.Run("SuccessfulSignup", func(t *testing.T) {
		req := &dto.SignupRequest{
			Email:           "Owner@Example.com",
			Password:        "SecurePass123!",
			ConfirmPassword: "SecurePass123!",
			FirstName:       "Jordan",
			LastName:        "Miller",
		}

		result, err := signupFlow.Signup(context.Background(), req, testMetadata())
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.NotEmpty(t, result.Session.AccessToken)
		assert.Equal(t, "Bearer", result.Session.TokenType)

		// Email is stored lowercase
		account, err := accountRepo.ByEmail(context.Background(), "owner@example.com")
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, "owner@example.com", account.Email)

		// New accounts land on the free plan with its limits and a trial window
		assert.Equal(t, models.PlanFree, account.SubscriptionPlan)
		assert.Equal(t, models.SubscriptionTrialing, account.SubscriptionStatus)
		assert.Equal(t, 5, account.LimitProperties)
		assert.Equal(t, 10, account.LimitTenants)
		require.NotNil(t, account.TrialEndsAt)
		assert.True(t, account.TrialEndsAt.After(time.Now().UTC()))

		// Session row exists for the issued token
		session, err := sessionRepo.BySessionToken(context.Background(), result.Session.AccessToken)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.True(t, session.IsUsable())

		// Audit trail records the registration
		auditLogs, err := auditRepo.ByFilter(context.Background(), models.AuditLogFilter{
			AccountID: &account.ID,
			Action:    utils.ToPtr(models.AuditActionAccountRegistered),
		}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, auditLogs, 1)
		assert.True(t, utils.IsTrue(auditLogs[0].Success))
	})

	t.Run("DuplicateEmailRejected", func(t *testing.T) {
		req := &dto.SignupRequest{
			Email:           "owner@example.com",
			Password:        "AnotherPass123!",
			ConfirmPassword: "AnotherPass123!",
			FirstName:       "Casey",
			LastName:        "Smith",
		}

		result, err := signupFlow.Signup(context.Background(), req, testMetadata())
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, IsEmailAlreadyExists(err))
	})
}

func TestLoginFlow(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)

	accountRepo := repository.NewAccountRepository(testDB.DB)
	sessionRepo := repository.NewAccountSessionRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	tokenService := newTestTokenService(t)

	loginFlow := NewLoginFlow(accountRepo, sessionRepo, auditRepo, tokenService, testDB.DB)

	account, err := fixtures.CreateTestAccount(models.PlanFree)
	require.NoError(t, err)

	t.Run("SuccessfulLogin", func(t *testing.T) {
		result, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
			Email:    account.Email,
			Password: "TestPass123!",
		}, testMetadata())
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.NotEmpty(t, result.Session.AccessToken)
		assert.Equal(t, account.Email, result.Account.Email)

		// Last login timestamp is recorded
		reloaded, err := accountRepo.ByID(context.Background(), account.ID)
		require.NoError(t, err)
		require.NotNil(t, reloaded.LastLoginAt)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		result, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
			Email:    account.Email,
			Password: "WrongPass123!",
		}, testMetadata())
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, IsIncorrectPassword(err))
	})

	t.Run("UnknownEmailSameError", func(t *testing.T) {
		// Unknown email must produce the same error as a wrong password
		_, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
			Email:    "nobody@example.com",
			Password: "TestPass123!",
		}, testMetadata())
		require.Error(t, err)
		assert.True(t, IsIncorrectPassword(err))
	})

	t.Run("InactiveAccount", func(t *testing.T) {
		inactive, err := fixtures.CreateTestAccount(models.PlanFree)
		require.NoError(t, err)
		require.NoError(t, testDB.DB.Model(&models.Account{}).
			Where("id = ?", inactive.ID).
			Update("is_active", false).Error)

		_, err = loginFlow.Login(context.Background(), &dto.LoginRequest{
			Email:    inactive.Email,
			Password: "TestPass123!",
		}, testMetadata())
		require.Error(t, err)
		assert.True(t, IsAccountInactive(err))
	})

	t.Run("LogoutRevokesSession", func(t *testing.T) {
		result, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
			Email:    account.Email,
			Password: "TestPass123!",
		}, testMetadata())
		require.NoError(t, err)

		err = loginFlow.Logout(context.Background(), account.ID, result.Session.AccessToken, testMetadata())
		require.NoError(t, err)

		session, err := sessionRepo.BySessionToken(context.Background(), result.Session.AccessToken)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.False(t, session.IsUsable())
		assert.NotNil(t, session.RevokedAt)
	})

	t.Run("Profile", func(t *testing.T) {
		result, err := loginFlow.Profile(context.Background(), account.ID)
		require.NoError(t, err)
		assert.Equal(t, account.Email, result.Account.Email)
		assert.Equal(t, models.PlanFree.String(), result.Account.SubscriptionPlan)
		assert.Equal(t, 5, result.Account.LimitProperties)
	})
}
