// Package testing provides test utilities and database setup for testing the rent management system
package testing

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	mrand "math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAccount creates a test account on the given plan
func (tf *TestFixtures) CreateTestAccount(plan models.SubscriptionPlan) (*models.Account, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		UUID:               uuid.New(),
		Email:              fmt.Sprintf("owner.%d@example.com", mrand.Intn(100000000)),
		PasswordHash:       string(hashedPassword),
		FirstName:          "Jordan",
		LastName:           "Miller",
		SubscriptionStatus: models.SubscriptionTrialing,
		TrialEndsAt:        utils.UTCNowAddPtr(utils.TrialPeriod),
		IsActive:           utils.ToPtr(true),
		IsEmailVerified:    utils.ToPtr(false),
		Currency:           "USD",
		Timezone:           "UTC",
		DateFormat:         "YYYY-MM-DD",
	}
	account.ApplyPlan(plan)

	if err := tf.DB.DB.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create test account: %w", err)
	}

	return account, nil
}

// CreateTestProperty creates a test property for an account
func (tf *TestFixtures) CreateTestProperty(accountID uint, status models.PropertyStatus) (*models.Property, error) {
	property := &models.Property{
		UUID:        uuid.New(),
		AccountID:   accountID,
		Name:        fmt.Sprintf("Maple House %d", mrand.Intn(10000)),
		AddressLine: "12 Maple Street",
		City:        "Springfield",
		Structure:   models.StructureSingleUnit,
		Status:      status,
		MarketRent:  1500,
	}

	if err := tf.DB.DB.Create(property).Error; err != nil {
		return nil, fmt.Errorf("failed to create test property: %w", err)
	}

	return property, nil
}

// CreateTestTenant creates a test tenant for an account
func (tf *TestFixtures) CreateTestTenant(accountID uint, propertyID *uint, status models.TenantStatus) (*models.Tenant, error) {
	tenant := &models.Tenant{
		UUID:       uuid.New(),
		AccountID:  accountID,
		PropertyID: propertyID,
		FirstName:  "Riley",
		LastName:   "Nguyen",
		Email:      fmt.Sprintf("riley.%d@example.com", mrand.Intn(100000000)),
		Status:     status,
		RentAmount: 1200,
		RentDueDay: 1,
		LeaseStart: utils.UTCNowAddPtr(-90 * 24 * time.Hour),
		LeaseEnd:   utils.UTCNowAddPtr(275 * 24 * time.Hour),
	}

	if status == models.TenantStatusDeleted {
		tenant.DeletedAt = utils.UTCNowPtr()
	}

	if err := tf.DB.DB.Create(tenant).Error; err != nil {
		return nil, fmt.Errorf("failed to create test tenant: %w", err)
	}

	return tenant, nil
}

// GenerateSecureToken returns a URL-safe random token
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestSession creates a test account session
func (tf *TestFixtures) CreateTestSession(accountID uint) (*models.AccountSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure session token: %w", err)
	}

	refreshToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure refresh token: %w", err)
	}

	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	session := &models.AccountSession{
		AccountID:    accountID,
		SessionToken: sessionToken,
		RefreshToken: &refreshToken,
		ExpiresAt:    time.Now().Add(24 * time.Hour),
		IsActive:     utils.ToPtr(true),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(accountID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		AccountID:   accountID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}
