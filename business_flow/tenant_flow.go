package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentfold/rentfold/app/dto"
	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/repository"
	"github.com/rentfold/rentfold/utils"
	"gorm.io/gorm"
)

// TenantFlow handles the tenant management business logic
type TenantFlow interface {
	CreateTenant(ctx context.Context, accountID uint, req *dto.CreateTenantRequest, metadata *ClientMetadata) (*dto.TenantResponse, error)
	GetTenant(ctx context.Context, accountID uint, tenantUUID uuid.UUID) (*dto.TenantResponse, error)
	ListTenants(ctx context.Context, accountID uint, limit, offset int) (*dto.TenantListResponse, error)
	UpdateTenant(ctx context.Context, accountID uint, tenantUUID uuid.UUID, req *dto.UpdateTenantRequest, metadata *ClientMetadata) (*dto.TenantResponse, error)
	DeleteTenant(ctx context.Context, accountID uint, tenantUUID uuid.UUID, metadata *ClientMetadata) error
	AuditTrail(ctx context.Context, accountID uint, tenantUUID uuid.UUID) (*dto.TenantAuditTrailResponse, error)
}

// TenantFlowImpl implements the tenant business flow
type TenantFlowImpl struct {
	accountRepo  repository.AccountRepository
	propertyRepo repository.PropertyRepository
	tenantRepo   repository.TenantRepository
	auditRepo    repository.AuditLogRepository
	db           *gorm.DB
}

// NewTenantFlow creates a new tenant flow instance
func NewTenantFlow(
	accountRepo repository.AccountRepository,
	propertyRepo repository.PropertyRepository,
	tenantRepo repository.TenantRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) TenantFlow {
	return &TenantFlowImpl{
		accountRepo:  accountRepo,
		propertyRepo: propertyRepo,
		tenantRepo:   tenantRepo,
		auditRepo:    auditRepo,
		db:           db,
	}
}

// CreateTenant creates a tenant for the account, enforcing the plan quota and
// the per-account email uniqueness rule. The account row is locked so
// concurrent creations cannot slip past the limit.
func (t *TenantFlowImpl) CreateTenant(ctx context.Context, accountID uint, req *dto.CreateTenantRequest, metadata *ClientMetadata) (*dto.TenantResponse, error) {
	if err := validateLeaseWindow(req.LeaseStart, req.LeaseEnd); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var tenant *models.Tenant

	err := repository.WithTransaction(ctx, t.db, func(txCtx context.Context) error {
		account, err := t.accountRepo.LockByID(txCtx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}

		count, err := t.tenantRepo.CountByAccount(txCtx, accountID)
		if err != nil {
			return err
		}
		if err := CheckQuota(account.SubscriptionPlan, account.LimitTenants, count, models.ResourceTenants); err != nil {
			t.auditQuotaDenied(ctx, accountID, models.ResourceTenants, metadata)
			return err
		}

		// Email is unique among the account's non-deleted tenants; other
		// accounts may reuse the same address freely
		existing, err := t.tenantRepo.ByEmailForAccount(txCtx, accountID, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return NewBusinessError("DUPLICATE_TENANT_EMAIL", "A tenant with this email already exists", ErrDuplicateTenantEmail)
		}

		propertyID, err := t.resolvePropertyRef(txCtx, accountID, req.PropertyUUID)
		if err != nil {
			return err
		}

		tenant = &models.Tenant{
			UUID:       uuid.New(),
			AccountID:  accountID,
			PropertyID: propertyID,
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Email:      email,
			Phone:      req.Phone,
			Status:     models.TenantStatusPending,
			RentAmount: req.RentAmount,
			RentDueDay: req.RentDueDay,
			LeaseStart: req.LeaseStart,
			LeaseEnd:   req.LeaseEnd,
			CreatedAt:  utils.UTCNow(),
		}
		if req.Status != nil {
			tenant.Status = models.TenantStatus(*req.Status)
		}

		if err := t.tenantRepo.Save(txCtx, tenant); err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		stats := account.Stats()
		stats.TotalTenants = int(count) + 1
		if tenant.IsActiveLease() {
			stats.ActiveLeases++
			stats.MonthlyRevenue += tenant.RentAmount
		}
		return t.accountRepo.UpdateStats(txCtx, accountID, stats)
	})

	if err != nil {
		if IsQuotaExceeded(err) || IsDuplicateTenantEmail(err) || IsPropertyNotFound(err) {
			return nil, err
		}
		return nil, NewBusinessError("TENANT_CREATE_FAILED", "Failed to create tenant", err)
	}

	t.auditTenant(ctx, accountID, tenant.ID, models.AuditActionTenantCreated, nil, metadata)

	result := ToTenantDTO(tenant)
	return &dto.TenantResponse{
		Message: "Tenant created successfully.",
		Tenant:  result,
	}, nil
}

// GetTenant returns one non-deleted tenant owned by the account
func (t *TenantFlowImpl) GetTenant(ctx context.Context, accountID uint, tenantUUID uuid.UUID) (*dto.TenantResponse, error) {
	tenant, err := t.tenantRepo.ByUUIDForAccount(ctx, accountID, tenantUUID)
	if err != nil {
		return nil, NewBusinessError("TENANT_FETCH_FAILED", "Failed to fetch tenant", err)
	}
	if tenant == nil {
		return nil, NewBusinessError("TENANT_NOT_FOUND", "Tenant not found", ErrTenantNotFound)
	}

	result := ToTenantDTO(tenant)
	return &dto.TenantResponse{
		Message: "Tenant retrieved successfully.",
		Tenant:  result,
	}, nil
}

// ListTenants returns the account's non-deleted tenants, newest first
func (t *TenantFlowImpl) ListTenants(ctx context.Context, accountID uint, limit, offset int) (*dto.TenantListResponse, error) {
	tenants, err := t.tenantRepo.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("TENANT_LIST_FAILED", "Failed to list tenants", err)
	}

	total, err := t.tenantRepo.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("TENANT_LIST_FAILED", "Failed to list tenants", err)
	}

	items := make([]dto.TenantDTO, 0, len(tenants))
	for _, tenant := range tenants {
		items = append(items, ToTenantDTO(tenant))
	}

	return &dto.TenantListResponse{
		Message: "Tenants retrieved successfully.",
		Tenants: items,
		Total:   total,
	}, nil
}

// UpdateTenant applies a partial update to a tenant, recording the field-level
// change set in the tenant's audit trail
func (t *TenantFlowImpl) UpdateTenant(ctx context.Context, accountID uint, tenantUUID uuid.UUID, req *dto.UpdateTenantRequest, metadata *ClientMetadata) (*dto.TenantResponse, error) {
	if req.FirstName == nil && req.LastName == nil && req.Email == nil && req.Phone == nil &&
		req.PropertyUUID == nil && req.Status == nil && req.RentAmount == nil &&
		req.RentDueDay == nil && req.LeaseStart == nil && req.LeaseEnd == nil {
		return nil, NewBusinessError("NO_UPDATE_FIELDS", "At least one field must be provided for update", ErrNoUpdateFields)
	}

	var tenant *models.Tenant
	var changes map[string]any

	err := repository.WithTransaction(ctx, t.db, func(txCtx context.Context) error {
		var err error
		tenant, err = t.tenantRepo.ByUUIDForAccount(txCtx, accountID, tenantUUID)
		if err != nil {
			return err
		}
		if tenant == nil {
			return ErrTenantNotFound
		}

		if req.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*req.Email))
			if email != tenant.Email {
				existing, err := t.tenantRepo.ByEmailForAccount(txCtx, accountID, email)
				if err != nil {
					return err
				}
				if existing != nil && existing.ID != tenant.ID {
					return NewBusinessError("DUPLICATE_TENANT_EMAIL", "A tenant with this email already exists", ErrDuplicateTenantEmail)
				}
			}
			req.Email = &email
		}

		if err := validateLeaseWindow(
			coalesceTime(req.LeaseStart, tenant.LeaseStart),
			coalesceTime(req.LeaseEnd, tenant.LeaseEnd),
		); err != nil {
			return err
		}

		propertyID := tenant.PropertyID
		if req.PropertyUUID != nil {
			propertyID, err = t.resolvePropertyRef(txCtx, accountID, req.PropertyUUID)
			if err != nil {
				return err
			}
		}

		changes = applyTenantUpdate(tenant, req, propertyID)
		tenant.UpdatedAt = utils.UTCNowPtr()

		return t.tenantRepo.Update(txCtx, tenant)
	})

	if err != nil {
		if IsTenantNotFound(err) {
			return nil, NewBusinessError("TENANT_NOT_FOUND", "Tenant not found", ErrTenantNotFound)
		}
		if IsDuplicateTenantEmail(err) || IsPropertyNotFound(err) || IsLeaseWindowInvalid(err) {
			return nil, err
		}
		return nil, NewBusinessError("TENANT_UPDATE_FAILED", "Failed to update tenant", err)
	}

	t.auditTenant(ctx, accountID, tenant.ID, models.AuditActionTenantUpdated, changes, metadata)

	result := ToTenantDTO(tenant)
	return &dto.TenantResponse{
		Message: "Tenant updated successfully.",
		Tenant:  result,
	}, nil
}

// DeleteTenant soft-deletes a tenant. The row is kept for the audit trail and
// disappears from every default read path, count, and quota check.
func (t *TenantFlowImpl) DeleteTenant(ctx context.Context, accountID uint, tenantUUID uuid.UUID, metadata *ClientMetadata) error {
	var tenant *models.Tenant

	err := repository.WithTransaction(ctx, t.db, func(txCtx context.Context) error {
		var err error
		tenant, err = t.tenantRepo.ByUUIDForAccount(txCtx, accountID, tenantUUID)
		if err != nil {
			return err
		}
		if tenant == nil {
			return ErrTenantNotFound
		}
		if tenant.IsDeleted() {
			return ErrTenantAlreadyDeleted
		}

		wasActive := tenant.IsActiveLease()

		tenant.Status = models.TenantStatusDeleted
		tenant.DeletedAt = utils.UTCNowPtr()
		tenant.UpdatedAt = utils.UTCNowPtr()
		if err := t.tenantRepo.Update(txCtx, tenant); err != nil {
			return err
		}

		account, err := t.accountRepo.LockByID(txCtx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}

		stats := account.Stats()
		if stats.TotalTenants > 0 {
			stats.TotalTenants--
		}
		if wasActive {
			if stats.ActiveLeases > 0 {
				stats.ActiveLeases--
			}
			stats.MonthlyRevenue -= tenant.RentAmount
			if stats.MonthlyRevenue < 0 {
				stats.MonthlyRevenue = 0
			}
		}
		return t.accountRepo.UpdateStats(txCtx, accountID, stats)
	})

	if err != nil {
		if IsTenantNotFound(err) || IsTenantAlreadyDeleted(err) {
			return NewBusinessError("TENANT_NOT_FOUND", "Tenant not found", ErrTenantNotFound)
		}
		return NewBusinessError("TENANT_DELETE_FAILED", "Failed to delete tenant", err)
	}

	t.auditTenant(ctx, accountID, tenant.ID, models.AuditActionTenantDeleted, nil, metadata)

	return nil
}

// AuditTrail returns the tenant's append-only audit history, oldest first.
// The trail stays readable after the tenant is soft-deleted.
func (t *TenantFlowImpl) AuditTrail(ctx context.Context, accountID uint, tenantUUID uuid.UUID) (*dto.TenantAuditTrailResponse, error) {
	tenants, err := t.tenantRepo.ByFilter(ctx, models.TenantFilter{
		AccountID:      &accountID,
		UUID:           &tenantUUID,
		IncludeDeleted: true,
	}, "", 1, 0)
	if err != nil {
		return nil, NewBusinessError("AUDIT_TRAIL_FAILED", "Failed to fetch audit trail", err)
	}
	if len(tenants) == 0 {
		return nil, NewBusinessError("TENANT_NOT_FOUND", "Tenant not found", ErrTenantNotFound)
	}

	logs, err := t.auditRepo.ListByTenant(ctx, tenants[0].ID, 0, 0)
	if err != nil {
		return nil, NewBusinessError("AUDIT_TRAIL_FAILED", "Failed to fetch audit trail", err)
	}

	entries := make([]dto.TenantAuditEntryDTO, 0, len(logs))
	for _, log := range logs {
		entry := dto.TenantAuditEntryDTO{
			Action:    log.Action,
			RequestID: log.RequestID,
			CreatedAt: log.CreatedAt,
		}
		if len(log.Changes) > 0 {
			var changes map[string]any
			if err := json.Unmarshal(log.Changes, &changes); err == nil {
				entry.Changes = changes
			}
		}
		entries = append(entries, entry)
	}

	return &dto.TenantAuditTrailResponse{
		Message: "Audit trail retrieved successfully.",
		Entries: entries,
	}, nil
}

// resolvePropertyRef validates an optional property reference and returns the
// referenced property's id. A nil input clears the reference.
func (t *TenantFlowImpl) resolvePropertyRef(ctx context.Context, accountID uint, propertyUUID *string) (*uint, error) {
	if propertyUUID == nil || *propertyUUID == "" {
		return nil, nil
	}

	id, err := uuid.Parse(*propertyUUID)
	if err != nil {
		return nil, NewBusinessError("PROPERTY_NOT_FOUND", "Property not found", ErrPropertyNotFound)
	}

	property, err := t.propertyRepo.ByUUIDForAccount(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	return &property.ID, nil
}

func validateLeaseWindow(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return NewBusinessError("LEASE_WINDOW_INVALID", "Lease end cannot be before lease start", ErrLeaseWindowInvalid)
	}
	return nil
}

func coalesceTime(a, b *time.Time) *time.Time {
	if a != nil {
		return a
	}
	return b
}

// applyTenantUpdate mutates the tenant in place and returns the field-level
// change set (old and new values) for the audit trail
func applyTenantUpdate(tenant *models.Tenant, req *dto.UpdateTenantRequest, propertyID *uint) map[string]any {
	changes := make(map[string]any)
	record := func(field string, from, to any) {
		changes[field] = map[string]any{"from": from, "to": to}
	}

	if req.FirstName != nil && *req.FirstName != tenant.FirstName {
		record("first_name", tenant.FirstName, *req.FirstName)
		tenant.FirstName = *req.FirstName
	}
	if req.LastName != nil && *req.LastName != tenant.LastName {
		record("last_name", tenant.LastName, *req.LastName)
		tenant.LastName = *req.LastName
	}
	if req.Email != nil && *req.Email != tenant.Email {
		record("email", tenant.Email, *req.Email)
		tenant.Email = *req.Email
	}
	if req.Phone != nil {
		record("phone", tenant.Phone, *req.Phone)
		tenant.Phone = req.Phone
	}
	if req.PropertyUUID != nil {
		record("property_id", tenant.PropertyID, propertyID)
		tenant.PropertyID = propertyID
	}
	if req.Status != nil && models.TenantStatus(*req.Status) != tenant.Status {
		record("status", tenant.Status, *req.Status)
		tenant.Status = models.TenantStatus(*req.Status)
	}
	if req.RentAmount != nil && *req.RentAmount != tenant.RentAmount {
		record("rent_amount", tenant.RentAmount, *req.RentAmount)
		tenant.RentAmount = *req.RentAmount
	}
	if req.RentDueDay != nil && *req.RentDueDay != tenant.RentDueDay {
		record("rent_due_day", tenant.RentDueDay, *req.RentDueDay)
		tenant.RentDueDay = *req.RentDueDay
	}
	if req.LeaseStart != nil {
		record("lease_start", tenant.LeaseStart, *req.LeaseStart)
		tenant.LeaseStart = req.LeaseStart
	}
	if req.LeaseEnd != nil {
		record("lease_end", tenant.LeaseEnd, *req.LeaseEnd)
		tenant.LeaseEnd = req.LeaseEnd
	}

	return changes
}

func (t *TenantFlowImpl) auditTenant(ctx context.Context, accountID, tenantID uint, action string, changes map[string]any, metadata *ClientMetadata) {
	description := fmt.Sprintf("tenant %d", tenantID)
	auditLog := &models.AuditLog{
		AccountID:   &accountID,
		TenantID:    &tenantID,
		Action:      action,
		Description: &description,
		Success:     utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
	}
	if len(changes) > 0 {
		if raw, err := json.Marshal(changes); err == nil {
			auditLog.Changes = raw
		}
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

	_ = t.auditRepo.Save(ctx, auditLog)
}

func (t *TenantFlowImpl) auditQuotaDenied(ctx context.Context, accountID uint, resource models.QuotaResource, metadata *ClientMetadata) {
	description := fmt.Sprintf("quota denied for %s", resource)
	auditLog := &models.AuditLog{
		AccountID:   &accountID,
		Action:      models.AuditActionQuotaDenied,
		Description: &description,
		Success:     utils.ToPtr(false),
		CreatedAt:   utils.UTCNow(),
	}
	if metadata != nil {
		if metadata.RequestID != "" {
			auditLog.RequestID = &metadata.RequestID
		}
	}

	_ = t.auditRepo.Save(ctx, auditLog)
}
