package businessflow

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rentfold/rentfold/app/dto"
	"github.com/rentfold/rentfold/app/services"
	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/repository"
	"github.com/rentfold/rentfold/utils"
	"gorm.io/gorm"
)

// LoginFlow handles the authentication business logic
type LoginFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Logout(ctx context.Context, accountID uint, sessionToken string, metadata *ClientMetadata) error
	Profile(ctx context.Context, accountID uint) (*dto.ProfileResponse, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	accountRepo  repository.AccountRepository
	sessionRepo  repository.AccountSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	accountRepo repository.AccountRepository,
	sessionRepo repository.AccountSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		accountRepo:  accountRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Login authenticates an account by email and password and issues a session
func (l *LoginFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	account, err := l.accountRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}
	if account == nil {
		// Same error as a wrong password so the response does not reveal
		// whether the email is registered
		return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", ErrIncorrectPassword)
	}

	if account.IsActive == nil || !*account.IsActive {
		l.auditLoginAttempt(ctx, account, false, "account is inactive", metadata)
		return nil, NewBusinessError("ACCOUNT_INACTIVE", "Account is inactive", ErrAccountInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		l.auditLoginAttempt(ctx, account, false, "incorrect password", metadata)
		return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", ErrIncorrectPassword)
	}

	var tokens struct {
		access  string
		refresh string
	}

	err = repository.WithTransaction(ctx, l.db, func(txCtx context.Context) error {
		var err error
		tokens.access, tokens.refresh, err = l.tokenService.GenerateTokens(account.ID)
		if err != nil {
			return err
		}

		session := &models.AccountSession{
			AccountID:    account.ID,
			SessionToken: tokens.access,
			RefreshToken: &tokens.refresh,
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
		if err := l.sessionRepo.Save(txCtx, session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		return l.accountRepo.UpdateLastLogin(txCtx, account.ID, utils.UTCNow())
	})

	if err != nil {
		l.auditLoginAttempt(ctx, account, false, err.Error(), metadata)
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	l.auditLoginAttempt(ctx, account, true, "", metadata)

	return &dto.LoginResponse{
		Message: "Login successful.",
		Account: ToAuthAccountDTO(*account),
		Session: dto.SessionDTO{
			AccessToken:  tokens.access,
			RefreshToken: tokens.refresh,
			TokenType:    "Bearer",
			ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
		},
	}, nil
}

// Logout revokes the session carrying the presented token
func (l *LoginFlowImpl) Logout(ctx context.Context, accountID uint, sessionToken string, metadata *ClientMetadata) error {
	session, err := l.sessionRepo.BySessionToken(ctx, sessionToken)
	if err != nil {
		return NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}
	if session == nil || session.AccountID != accountID {
		return NewBusinessError("SESSION_NOT_FOUND", "Session not found", ErrAccountNotFound)
	}

	if err := l.sessionRepo.RevokeSession(ctx, session.ID); err != nil {
		return NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	description := "logged out"
	_ = l.auditRepo.Save(ctx, &models.AuditLog{
		AccountID:   &accountID,
		Action:      models.AuditActionLogout,
		Description: &description,
		Success:     utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
	})

	return nil
}

// Profile returns the authenticated account's profile
func (l *LoginFlowImpl) Profile(ctx context.Context, accountID uint) (*dto.ProfileResponse, error) {
	account, err := l.accountRepo.ByID(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_FAILED", "Failed to load profile", err)
	}
	if account == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}

	return &dto.ProfileResponse{
		Message: "Profile retrieved successfully.",
		Account: dto.ProfileDTO{
			ID:                 account.ID,
			UUID:               account.UUID.String(),
			Email:              account.Email,
			FirstName:          account.FirstName,
			LastName:           account.LastName,
			CompanyName:        account.CompanyName,
			SubscriptionPlan:   account.SubscriptionPlan.String(),
			SubscriptionStatus: account.SubscriptionStatus.String(),
			TrialEndsAt:        account.TrialEndsAt,
			CurrentPeriodEnd:   account.CurrentPeriodEnd,
			CancelAtPeriodEnd:  account.CancelAtPeriodEnd,
			LimitProperties:    account.LimitProperties,
			LimitTenants:       account.LimitTenants,
			LimitUsers:         account.LimitUsers,
			LimitStorageMB:     account.LimitStorageMB,
			Currency:           account.Currency,
			Timezone:           account.Timezone,
			DateFormat:         account.DateFormat,
			IsEmailVerified:    account.IsEmailVerified,
			IsActive:           account.IsActive,
			LastLoginAt:        account.LastLoginAt,
			CreatedAt:          account.CreatedAt,
			UpdatedAt:          account.UpdatedAt,
		},
	}, nil
}

func (l *LoginFlowImpl) auditLoginAttempt(ctx context.Context, account *models.Account, success bool, errMsg string, metadata *ClientMetadata) {
	action := models.AuditActionLoginSuccess
	description := fmt.Sprintf("login for account %d", account.ID)
	auditLog := &models.AuditLog{
		AccountID:   &account.ID,
		Action:      action,
		Description: &description,
		Success:     &success,
		CreatedAt:   utils.UTCNow(),
	}
	if !success {
		auditLog.Action = models.AuditActionLoginFailed
		auditLog.ErrorMessage = &errMsg
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

	_ = l.auditRepo.Save(ctx, auditLog)
}
