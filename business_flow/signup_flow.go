// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
	"github.com/rentfold/rentfold/app/dto"
	"github.com/rentfold/rentfold/app/services"
	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/repository"
	"github.com/rentfold/rentfold/utils"
	"gorm.io/gorm"
)

// SignupFlow handles the complete account registration business logic
type SignupFlow interface {
	Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
}

// SignupFlowImpl implements the signup business flow
type SignupFlowImpl struct {
	accountRepo  repository.AccountRepository
	sessionRepo  repository.AccountSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewSignupFlow creates a new signup flow instance
func NewSignupFlow(
	accountRepo repository.AccountRepository,
	sessionRepo repository.AccountSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) SignupFlow {
	return &SignupFlowImpl{
		accountRepo:  accountRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Signup registers a new account on the free plan with a trial period and an
// initial session
func (s *SignupFlowImpl) Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.accountRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("SIGNUP_FAILED", "Signup failed", err)
	}
	if existing != nil {
		return nil, NewBusinessError("EMAIL_ALREADY_EXISTS", "An account with this email already exists", ErrEmailAlreadyExists)
	}

	var account *models.Account
	var tokens struct {
		access  string
		refresh string
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		account, err = s.createAccount(txCtx, req, email)
		if err != nil {
			return err
		}

		tokens.access, tokens.refresh, err = s.tokenService.GenerateTokens(account.ID)
		if err != nil {
			return err
		}

		return s.createSession(txCtx, account.ID, tokens.access, tokens.refresh, metadata)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Signup failed: %s", err.Error())
		_ = s.createAuditLog(ctx, account, models.AuditActionAccountRegistered, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SIGNUP_FAILED", "Signup failed", err)
	}

	msg := fmt.Sprintf("Account registered successfully: %d", account.ID)
	_ = s.createAuditLog(ctx, account, models.AuditActionAccountRegistered, msg, true, nil, metadata)

	return &dto.SignupResponse{
		Message: "Account registered successfully.",
		Account: ToAuthAccountDTO(*account),
		Session: dto.SessionDTO{
			AccessToken:  tokens.access,
			RefreshToken: tokens.refresh,
			TokenType:    "Bearer",
			ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
		},
	}, nil
}

// createAccount builds the new account with registration defaults: free plan,
// trialing status, a 14-day trial, and a zeroed stats cache.
func (s *SignupFlowImpl) createAccount(ctx context.Context, req *dto.SignupRequest, email string) (*models.Account, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		UUID:               uuid.New(),
		Email:              email,
		PasswordHash:       string(passwordHash),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		CompanyName:        req.CompanyName,
		SubscriptionStatus: models.SubscriptionTrialing,
		TrialEndsAt:        utils.UTCNowAddPtr(utils.TrialPeriod),
		Currency:           "USD",
		Timezone:           "UTC",
		DateFormat:         "YYYY-MM-DD",
		IsEmailVerified:    utils.ToPtr(false),
		IsActive:           utils.ToPtr(true),
		CreatedAt:          utils.UTCNow(),
		UpdatedAt:          utils.UTCNow(),
	}
	account.ApplyPlan(models.PlanFree)

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

func (s *SignupFlowImpl) createSession(ctx context.Context, accountID uint, accessToken, refreshToken string, metadata *ClientMetadata) error {
	session := &models.AccountSession{
		AccountID:    accountID,
		SessionToken: accessToken,
		RefreshToken: &refreshToken,
		IsActive:     utils.ToPtr(true),
		ExpiresAt:    utils.UTCNowAdd(utils.SessionTimeout),
		CreatedAt:    utils.UTCNow(),
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			session.IPAddress = &metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			session.UserAgent = &metadata.UserAgent
		}
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (s *SignupFlowImpl) createAuditLog(ctx context.Context, account *models.Account, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	auditLog := &models.AuditLog{
		Action:       action,
		Description:  &description,
		Success:      &success,
		ErrorMessage: errorMsg,
		CreatedAt:    utils.UTCNow(),
	}
	if account != nil {
		auditLog.AccountID = &account.ID
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			auditLog.IPAddress = &metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			auditLog.UserAgent = &metadata.UserAgent
		}
		if metadata.RequestID != "" {
			auditLog.RequestID = &metadata.RequestID
		}
	}

	return s.auditRepo.Save(ctx, auditLog)
}
