// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rentfold/rentfold/app/dto"
	"github.com/rentfold/rentfold/app/middleware"
	businessflow "github.com/rentfold/rentfold/business_flow"
)

// TenantHandlerInterface defines the contract for tenant handlers
type TenantHandlerInterface interface {
	CreateTenant(c fiber.Ctx) error
	GetTenant(c fiber.Ctx) error
	ListTenants(c fiber.Ctx) error
	UpdateTenant(c fiber.Ctx) error
	DeleteTenant(c fiber.Ctx) error
	AuditTrail(c fiber.Ctx) error
	ExportTenants(c fiber.Ctx) error
}

// TenantHandler handles tenant-related HTTP requests
type TenantHandler struct {
	tenantFlow businessflow.TenantFlow
	exportFlow businessflow.TenantExportFlow
	validator  *validator.Validate
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantFlow businessflow.TenantFlow, exportFlow businessflow.TenantExportFlow) *TenantHandler {
	return &TenantHandler{
		tenantFlow: tenantFlow,
		exportFlow: exportFlow,
		validator:  validator.New(),
	}
}

func (h *TenantHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *TenantHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateTenant handles tenant creation
func (h *TenantHandler) CreateTenant(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateTenantRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.tenantFlow.CreateTenant(createRequestContext(c, "/api/v1/tenants"), accountID, &req, metadata)
	if err != nil {
		if businessflow.IsQuotaExceeded(err) {
			middleware.RecordQuotaDenial("tenants")
			return h.ErrorResponse(c, fiber.StatusForbidden, businessErrorMessage(err, "Plan quota exceeded"), "QUOTA_EXCEEDED", nil)
		}
		if businessflow.IsDuplicateTenantEmail(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "A tenant with this email already exists", "DUPLICATE_TENANT_EMAIL", nil)
		}
		if businessflow.IsPropertyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Property not found", "PROPERTY_NOT_FOUND", nil)
		}
		if businessflow.IsLeaseWindowInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Lease end cannot be before lease start", "LEASE_WINDOW_INVALID", nil)
		}

		log.Println("Tenant creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create tenant", "TENANT_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, fiber.Map{
		"tenant": result.Tenant,
	})
}

// GetTenant returns one tenant
func (h *TenantHandler) GetTenant(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	tenantUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid tenant id", "INVALID_TENANT_ID", nil)
	}

	result, err := h.tenantFlow.GetTenant(createRequestContext(c, "/api/v1/tenants/:uuid"), accountID, tenantUUID)
	if err != nil {
		if businessflow.IsTenantNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Tenant not found", "TENANT_NOT_FOUND", nil)
		}

		log.Println("Tenant fetch failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tenant", "TENANT_FETCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"tenant": result.Tenant,
	})
}

// ListTenants returns the account's non-deleted tenants
func (h *TenantHandler) ListTenants(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	limit, offset := parsePagination(c)

	result, err := h.tenantFlow.ListTenants(createRequestContext(c, "/api/v1/tenants"), accountID, limit, offset)
	if err != nil {
		log.Println("Tenant listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list tenants", "TENANT_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"tenants": result.Tenants,
		"total":   result.Total,
	})
}

// UpdateTenant applies a partial update to a tenant
func (h *TenantHandler) UpdateTenant(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	tenantUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid tenant id", "INVALID_TENANT_ID", nil)
	}

	var req dto.UpdateTenantRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.tenantFlow.UpdateTenant(createRequestContext(c, "/api/v1/tenants/:uuid"), accountID, tenantUUID, &req, metadata)
	if err != nil {
		if businessflow.IsTenantNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Tenant not found", "TENANT_NOT_FOUND", nil)
		}
		if businessflow.IsDuplicateTenantEmail(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "A tenant with this email already exists", "DUPLICATE_TENANT_EMAIL", nil)
		}
		if businessflow.IsPropertyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Property not found", "PROPERTY_NOT_FOUND", nil)
		}
		if businessflow.IsLeaseWindowInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Lease end cannot be before lease start", "LEASE_WINDOW_INVALID", nil)
		}
		if businessflow.IsNoUpdateFields(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided", "NO_UPDATE_FIELDS", nil)
		}

		log.Println("Tenant update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update tenant", "TENANT_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"tenant": result.Tenant,
	})
}

// DeleteTenant soft-deletes a tenant
func (h *TenantHandler) DeleteTenant(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	tenantUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid tenant id", "INVALID_TENANT_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	err = h.tenantFlow.DeleteTenant(createRequestContext(c, "/api/v1/tenants/:uuid"), accountID, tenantUUID, metadata)
	if err != nil {
		if businessflow.IsTenantNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Tenant not found", "TENANT_NOT_FOUND", nil)
		}

		log.Println("Tenant deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete tenant", "TENANT_DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tenant deleted successfully", nil)
}

// AuditTrail returns a tenant's append-only audit history
func (h *TenantHandler) AuditTrail(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	tenantUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid tenant id", "INVALID_TENANT_ID", nil)
	}

	result, err := h.tenantFlow.AuditTrail(createRequestContext(c, "/api/v1/tenants/:uuid/audit"), accountID, tenantUUID)
	if err != nil {
		if businessflow.IsTenantNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Tenant not found", "TENANT_NOT_FOUND", nil)
		}

		log.Println("Audit trail fetch failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch audit trail", "AUDIT_TRAIL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"entries": result.Entries,
	})
}

// ExportTenants streams the account's tenants as an XLSX workbook
func (h *TenantHandler) ExportTenants(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	filename, content, err := h.exportFlow.ExportTenants(createRequestContext(c, "/api/v1/tenants/export"), accountID, metadata)
	if err != nil {
		log.Println("Tenant export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export tenants", "TENANT_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(content)
}
