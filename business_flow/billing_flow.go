package businessflow

import (
	"context"
	"fmt"

	"github.com/rentfold/rentfold/app/dto"
	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/repository"
	"github.com/rentfold/rentfold/utils"
	"gorm.io/gorm"
)

// BillingFlow processes subscription webhook events from the payment provider
type BillingFlow interface {
	ProcessWebhook(ctx context.Context, req *dto.BillingWebhookRequest, metadata *ClientMetadata) (*dto.BillingWebhookResponse, error)
}

// BillingFlowImpl implements the billing business flow
type BillingFlowImpl struct {
	accountRepo      repository.AccountRepository
	billingEventRepo repository.BillingEventRepository
	auditRepo        repository.AuditLogRepository
	db               *gorm.DB
}

// NewBillingFlow creates a new billing flow instance
func NewBillingFlow(
	accountRepo repository.AccountRepository,
	billingEventRepo repository.BillingEventRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) BillingFlow {
	return &BillingFlowImpl{
		accountRepo:      accountRepo,
		billingEventRepo: billingEventRepo,
		auditRepo:        auditRepo,
		db:               db,
	}
}

// ProcessWebhook applies a subscription event to the referenced account.
// Processing is idempotent on the provider's event id: a replayed event is
// acknowledged without reapplying its effects.
func (b *BillingFlowImpl) ProcessWebhook(ctx context.Context, req *dto.BillingWebhookRequest, metadata *ClientMetadata) (*dto.BillingWebhookResponse, error) {
	if req.EventID == "" {
		return nil, NewBusinessError("WEBHOOK_EVENT_ID_REQUIRED", "Webhook event id is required", ErrWebhookEventIDRequired)
	}

	existing, err := b.billingEventRepo.ByEventID(ctx, req.EventID)
	if err != nil {
		return nil, NewBusinessError("WEBHOOK_FAILED", "Failed to process webhook", err)
	}
	if existing != nil {
		return &dto.BillingWebhookResponse{
			Message:  "Event already processed.",
			EventID:  req.EventID,
			Replayed: true,
		}, nil
	}

	account, err := b.accountRepo.ByBillingCustomerRef(ctx, req.Data.CustomerRef)
	if err != nil {
		return nil, NewBusinessError("WEBHOOK_FAILED", "Failed to process webhook", err)
	}
	if account == nil {
		return nil, NewBusinessError("WEBHOOK_UNKNOWN_ACCOUNT", "Webhook references an unknown account", ErrWebhookUnknownAccount)
	}

	err = repository.WithTransaction(ctx, b.db, func(txCtx context.Context) error {
		switch req.Type {
		case models.BillingEventSubscriptionUpdated:
			if err := b.applySubscriptionUpdate(account, &req.Data); err != nil {
				return err
			}
		case models.BillingEventSubscriptionCanceled:
			b.applySubscriptionCancel(account)
		default:
			return NewBusinessErrorf("WEBHOOK_UNKNOWN_TYPE", ErrWebhookUnknownType, "Unknown webhook event type: %s", req.Type)
		}

		if err := b.accountRepo.UpdateSubscription(txCtx, account); err != nil {
			return err
		}

		event := &models.BillingEvent{
			EventID:     req.EventID,
			Type:        req.Type,
			AccountID:   &account.ID,
			Payload:     req.Data.Raw(),
			ProcessedAt: utils.UTCNow(),
		}
		return b.billingEventRepo.Save(txCtx, event)
	})

	if err != nil {
		if IsWebhookUnknownType(err) {
			return nil, err
		}
		return nil, NewBusinessError("WEBHOOK_FAILED", "Failed to process webhook", err)
	}

	b.auditWebhook(ctx, account.ID, req, metadata)

	return &dto.BillingWebhookResponse{
		Message:  "Event processed successfully.",
		EventID:  req.EventID,
		Replayed: false,
	}, nil
}

// applySubscriptionUpdate overwrites the account's tier, limits, and billing
// state from the event snapshot. This path and registration defaults are the
// only writers of the plan and limit columns.
func (b *BillingFlowImpl) applySubscriptionUpdate(account *models.Account, data *dto.BillingEventData) error {
	if data.Plan != "" {
		plan := models.SubscriptionPlan(data.Plan)
		if !plan.Valid() {
			return NewBusinessErrorf("WEBHOOK_UNKNOWN_PLAN", ErrUnknownPlan, "Unknown subscription plan: %s", data.Plan)
		}
		account.ApplyPlan(plan)
	}
	if data.Status != "" {
		status := models.SubscriptionStatus(data.Status)
		if status.Valid() {
			account.SubscriptionStatus = status
		}
	}
	if data.SubscriptionRef != nil {
		account.BillingSubscriptionRef = data.SubscriptionRef
	}
	if data.CurrentPeriodEnd != nil {
		account.CurrentPeriodEnd = data.CurrentPeriodEnd
	}
	if data.CancelAtPeriodEnd != nil {
		account.CancelAtPeriodEnd = data.CancelAtPeriodEnd
	}
	account.UpdatedAt = utils.UTCNow()

	return nil
}

// applySubscriptionCancel drops the account to the free tier. Existing
// entities above the free limits are kept; only further creation is blocked.
func (b *BillingFlowImpl) applySubscriptionCancel(account *models.Account) {
	account.ApplyPlan(models.PlanFree)
	account.SubscriptionStatus = models.SubscriptionCanceled
	account.BillingSubscriptionRef = nil
	account.CancelAtPeriodEnd = nil
	account.UpdatedAt = utils.UTCNow()
}

func (b *BillingFlowImpl) auditWebhook(ctx context.Context, accountID uint, req *dto.BillingWebhookRequest, metadata *ClientMetadata) {
	description := fmt.Sprintf("%s (%s)", req.Type, req.EventID)
	auditLog := &models.AuditLog{
		AccountID:   &accountID,
		Action:      models.AuditActionWebhookProcessed,
		Description: &description,
		Success:     utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
	}
	if metadata != nil && metadata.RequestID != "" {
		auditLog.RequestID = &metadata.RequestID
	}

	_ = b.auditRepo.Save(ctx, auditLog)
}
