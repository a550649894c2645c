package businessflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentfold/rentfold/app/dto"
	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/repository"
	"github.com/rentfold/rentfold/utils"
	"gorm.io/gorm"
)

// PropertyFlow handles the property management business logic
type PropertyFlow interface {
	CreateProperty(ctx context.Context, accountID uint, req *dto.CreatePropertyRequest, metadata *ClientMetadata) (*dto.PropertyResponse, error)
	GetProperty(ctx context.Context, accountID uint, propertyUUID uuid.UUID) (*dto.PropertyResponse, error)
	ListProperties(ctx context.Context, accountID uint, limit, offset int) (*dto.PropertyListResponse, error)
	UpdateProperty(ctx context.Context, accountID uint, propertyUUID uuid.UUID, req *dto.UpdatePropertyRequest, metadata *ClientMetadata) (*dto.PropertyResponse, error)
	DeleteProperty(ctx context.Context, accountID uint, propertyUUID uuid.UUID, metadata *ClientMetadata) error
}

// PropertyFlowImpl implements the property business flow
type PropertyFlowImpl struct {
	accountRepo  repository.AccountRepository
	propertyRepo repository.PropertyRepository
	tenantRepo   repository.TenantRepository
	auditRepo    repository.AuditLogRepository
	db           *gorm.DB
}

// NewPropertyFlow creates a new property flow instance
func NewPropertyFlow(
	accountRepo repository.AccountRepository,
	propertyRepo repository.PropertyRepository,
	tenantRepo repository.TenantRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) PropertyFlow {
	return &PropertyFlowImpl{
		accountRepo:  accountRepo,
		propertyRepo: propertyRepo,
		tenantRepo:   tenantRepo,
		auditRepo:    auditRepo,
		db:           db,
	}
}

// CreateProperty creates a property for the account, enforcing the plan quota.
// The account row is locked for the duration of the transaction so concurrent
// creations cannot slip past the limit.
func (p *PropertyFlowImpl) CreateProperty(ctx context.Context, accountID uint, req *dto.CreatePropertyRequest, metadata *ClientMetadata) (*dto.PropertyResponse, error) {
	var property *models.Property

	err := repository.WithTransaction(ctx, p.db, func(txCtx context.Context) error {
		account, err := p.accountRepo.LockByID(txCtx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}

		count, err := p.propertyRepo.CountByAccount(txCtx, accountID)
		if err != nil {
			return err
		}
		if err := CheckQuota(account.SubscriptionPlan, account.LimitProperties, count, models.ResourceProperties); err != nil {
			p.auditQuotaDenied(ctx, accountID, models.ResourceProperties, metadata)
			return err
		}

		property = p.buildProperty(accountID, req)
		if err := p.propertyRepo.Save(txCtx, property); err != nil {
			return fmt.Errorf("failed to create property: %w", err)
		}

		stats := account.Stats()
		stats.TotalProperties = int(count) + 1
		return p.accountRepo.UpdateStats(txCtx, accountID, stats)
	})

	if err != nil {
		if IsQuotaExceeded(err) {
			return nil, err
		}
		return nil, NewBusinessError("PROPERTY_CREATE_FAILED", "Failed to create property", err)
	}

	p.auditProperty(ctx, accountID, models.AuditActionPropertyCreated, property, metadata)

	result := ToPropertyDTO(property, 0)
	return &dto.PropertyResponse{
		Message:  "Property created successfully.",
		Property: result,
	}, nil
}

// GetProperty returns one property owned by the account
func (p *PropertyFlowImpl) GetProperty(ctx context.Context, accountID uint, propertyUUID uuid.UUID) (*dto.PropertyResponse, error) {
	property, err := p.propertyRepo.ByUUIDForAccount(ctx, accountID, propertyUUID)
	if err != nil {
		return nil, NewBusinessError("PROPERTY_FETCH_FAILED", "Failed to fetch property", err)
	}
	if property == nil {
		return nil, NewBusinessError("PROPERTY_NOT_FOUND", "Property not found", ErrPropertyNotFound)
	}

	tenantCount, err := p.tenantRepo.CountActiveByProperty(ctx, accountID, property.ID)
	if err != nil {
		return nil, NewBusinessError("PROPERTY_FETCH_FAILED", "Failed to fetch property", err)
	}

	result := ToPropertyDTO(property, tenantCount)
	return &dto.PropertyResponse{
		Message:  "Property retrieved successfully.",
		Property: result,
	}, nil
}

// ListProperties returns the account's properties, newest first
func (p *PropertyFlowImpl) ListProperties(ctx context.Context, accountID uint, limit, offset int) (*dto.PropertyListResponse, error) {
	properties, err := p.propertyRepo.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("PROPERTY_LIST_FAILED", "Failed to list properties", err)
	}

	total, err := p.propertyRepo.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("PROPERTY_LIST_FAILED", "Failed to list properties", err)
	}

	items := make([]dto.PropertyDTO, 0, len(properties))
	for _, property := range properties {
		tenantCount, err := p.tenantRepo.CountActiveByProperty(ctx, accountID, property.ID)
		if err != nil {
			return nil, NewBusinessError("PROPERTY_LIST_FAILED", "Failed to list properties", err)
		}
		items = append(items, ToPropertyDTO(property, tenantCount))
	}

	return &dto.PropertyListResponse{
		Message:    "Properties retrieved successfully.",
		Properties: items,
		Total:      total,
	}, nil
}

// UpdateProperty applies a partial update to a property owned by the account
func (p *PropertyFlowImpl) UpdateProperty(ctx context.Context, accountID uint, propertyUUID uuid.UUID, req *dto.UpdatePropertyRequest, metadata *ClientMetadata) (*dto.PropertyResponse, error) {
	if req.Name == nil && req.AddressLine == nil && req.City == nil && req.PostalCode == nil &&
		req.Status == nil && req.MarketRent == nil && req.Units == nil {
		return nil, NewBusinessError("NO_UPDATE_FIELDS", "At least one field must be provided for update", ErrNoUpdateFields)
	}

	var property *models.Property

	err := repository.WithTransaction(ctx, p.db, func(txCtx context.Context) error {
		var err error
		property, err = p.propertyRepo.ByUUIDForAccount(txCtx, accountID, propertyUUID)
		if err != nil {
			return err
		}
		if property == nil {
			return ErrPropertyNotFound
		}

		applyPropertyUpdate(property, req)
		property.UpdatedAt = utils.UTCNowPtr()

		return p.propertyRepo.Update(txCtx, property)
	})

	if err != nil {
		if IsPropertyNotFound(err) {
			return nil, NewBusinessError("PROPERTY_NOT_FOUND", "Property not found", ErrPropertyNotFound)
		}
		return nil, NewBusinessError("PROPERTY_UPDATE_FAILED", "Failed to update property", err)
	}

	p.auditProperty(ctx, accountID, models.AuditActionPropertyUpdated, property, metadata)

	tenantCount, err := p.tenantRepo.CountActiveByProperty(ctx, accountID, property.ID)
	if err != nil {
		return nil, NewBusinessError("PROPERTY_UPDATE_FAILED", "Failed to update property", err)
	}

	result := ToPropertyDTO(property, tenantCount)
	return &dto.PropertyResponse{
		Message:  "Property updated successfully.",
		Property: result,
	}, nil
}

// DeleteProperty hard-deletes a property. The delete is refused while any
// non-deleted tenant still references the property; tenants must be reassigned
// or removed first.
func (p *PropertyFlowImpl) DeleteProperty(ctx context.Context, accountID uint, propertyUUID uuid.UUID, metadata *ClientMetadata) error {
	var property *models.Property

	err := repository.WithTransaction(ctx, p.db, func(txCtx context.Context) error {
		var err error
		property, err = p.propertyRepo.ByUUIDForAccount(txCtx, accountID, propertyUUID)
		if err != nil {
			return err
		}
		if property == nil {
			return ErrPropertyNotFound
		}

		attached, err := p.tenantRepo.CountActiveByProperty(txCtx, accountID, property.ID)
		if err != nil {
			return err
		}
		if attached > 0 {
			return NewBusinessErrorf(
				"PROPERTY_HAS_TENANTS",
				ErrPropertyHasTenants,
				"Cannot delete property with %d attached tenant(s). Reassign or remove them first.",
				attached,
			)
		}

		if err := p.propertyRepo.Delete(txCtx, property); err != nil {
			return fmt.Errorf("failed to delete property: %w", err)
		}

		account, err := p.accountRepo.LockByID(txCtx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}

		stats := account.Stats()
		if stats.TotalProperties > 0 {
			stats.TotalProperties--
		}
		return p.accountRepo.UpdateStats(txCtx, accountID, stats)
	})

	if err != nil {
		if IsPropertyNotFound(err) {
			return NewBusinessError("PROPERTY_NOT_FOUND", "Property not found", ErrPropertyNotFound)
		}
		if IsPropertyHasTenants(err) {
			return err
		}
		return NewBusinessError("PROPERTY_DELETE_FAILED", "Failed to delete property", err)
	}

	p.auditProperty(ctx, accountID, models.AuditActionPropertyDeleted, property, metadata)

	return nil
}

// buildProperty assembles the new property model from the request
func (p *PropertyFlowImpl) buildProperty(accountID uint, req *dto.CreatePropertyRequest) *models.Property {
	property := &models.Property{
		UUID:        uuid.New(),
		AccountID:   accountID,
		Name:        req.Name,
		AddressLine: req.AddressLine,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Structure:   models.PropertyStructure(req.Structure),
		Status:      models.PropertyStatusVacant,
		Units:       models.PropertyUnits{},
		CreatedAt:   utils.UTCNow(),
	}
	if req.Status != nil {
		property.Status = models.PropertyStatus(*req.Status)
	}
	if req.MarketRent != nil {
		property.MarketRent = *req.MarketRent
	}
	for _, unit := range req.Units {
		property.Units = append(property.Units, models.PropertyUnit{
			Label:       unit.Label,
			MonthlyRent: unit.MonthlyRent,
			Status:      models.UnitStatus(unit.Status),
		})
	}
	property.RecalculateIncome()

	return property
}

func applyPropertyUpdate(property *models.Property, req *dto.UpdatePropertyRequest) {
	if req.Name != nil {
		property.Name = *req.Name
	}
	if req.AddressLine != nil {
		property.AddressLine = *req.AddressLine
	}
	if req.City != nil {
		property.City = *req.City
	}
	if req.PostalCode != nil {
		property.PostalCode = req.PostalCode
	}
	if req.Status != nil {
		property.Status = models.PropertyStatus(*req.Status)
	}
	if req.MarketRent != nil {
		property.MarketRent = *req.MarketRent
	}
	if req.Units != nil {
		property.Units = models.PropertyUnits{}
		for _, unit := range *req.Units {
			property.Units = append(property.Units, models.PropertyUnit{
				Label:       unit.Label,
				MonthlyRent: unit.MonthlyRent,
				Status:      models.UnitStatus(unit.Status),
			})
		}
	}
	property.RecalculateIncome()
}

func (p *PropertyFlowImpl) auditProperty(ctx context.Context, accountID uint, action string, property *models.Property, metadata *ClientMetadata) {
	description := fmt.Sprintf("property %s", property.UUID)
	auditLog := &models.AuditLog{
		AccountID:   &accountID,
		Action:      action,
		Description: &description,
		Success:     utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
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

	_ = p.auditRepo.Save(ctx, auditLog)
}

func (p *PropertyFlowImpl) auditQuotaDenied(ctx context.Context, accountID uint, resource models.QuotaResource, metadata *ClientMetadata) {
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

	_ = p.auditRepo.Save(ctx, auditLog)
}
