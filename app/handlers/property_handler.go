// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rentfold/rentfold/app/dto"
	"github.com/rentfold/rentfold/app/middleware"
	businessflow "github.com/rentfold/rentfold/business_flow"
)

// PropertyHandlerInterface defines the contract for property handlers
type PropertyHandlerInterface interface {
	CreateProperty(c fiber.Ctx) error
	GetProperty(c fiber.Ctx) error
	ListProperties(c fiber.Ctx) error
	UpdateProperty(c fiber.Ctx) error
	DeleteProperty(c fiber.Ctx) error
}

// PropertyHandler handles property-related HTTP requests
type PropertyHandler struct {
	propertyFlow businessflow.PropertyFlow
	validator    *validator.Validate
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(propertyFlow businessflow.PropertyFlow) *PropertyHandler {
	return &PropertyHandler{
		propertyFlow: propertyFlow,
		validator:    validator.New(),
	}
}

func (h *PropertyHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PropertyHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateProperty handles property creation
func (h *PropertyHandler) CreateProperty(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreatePropertyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.propertyFlow.CreateProperty(createRequestContext(c, "/api/v1/properties"), accountID, &req, metadata)
	if err != nil {
		if businessflow.IsQuotaExceeded(err) {
			middleware.RecordQuotaDenial("properties")
			return h.ErrorResponse(c, fiber.StatusForbidden, businessErrorMessage(err, "Plan quota exceeded"), "QUOTA_EXCEEDED", nil)
		}

		log.Println("Property creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create property", "PROPERTY_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, fiber.Map{
		"property": result.Property,
	})
}

// GetProperty returns one property
func (h *PropertyHandler) GetProperty(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	propertyUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid property id", "INVALID_PROPERTY_ID", nil)
	}

	result, err := h.propertyFlow.GetProperty(createRequestContext(c, "/api/v1/properties/:uuid"), accountID, propertyUUID)
	if err != nil {
		if businessflow.IsPropertyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Property not found", "PROPERTY_NOT_FOUND", nil)
		}

		log.Println("Property fetch failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch property", "PROPERTY_FETCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"property": result.Property,
	})
}

// ListProperties returns the account's properties
func (h *PropertyHandler) ListProperties(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	limit, offset := parsePagination(c)

	result, err := h.propertyFlow.ListProperties(createRequestContext(c, "/api/v1/properties"), accountID, limit, offset)
	if err != nil {
		log.Println("Property listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list properties", "PROPERTY_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"properties": result.Properties,
		"total":      result.Total,
	})
}

// UpdateProperty applies a partial update to a property
func (h *PropertyHandler) UpdateProperty(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	propertyUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid property id", "INVALID_PROPERTY_ID", nil)
	}

	var req dto.UpdatePropertyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.propertyFlow.UpdateProperty(createRequestContext(c, "/api/v1/properties/:uuid"), accountID, propertyUUID, &req, metadata)
	if err != nil {
		if businessflow.IsPropertyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Property not found", "PROPERTY_NOT_FOUND", nil)
		}
		if businessflow.IsNoUpdateFields(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided", "NO_UPDATE_FIELDS", nil)
		}

		log.Println("Property update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update property", "PROPERTY_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"property": result.Property,
	})
}

// DeleteProperty hard-deletes a property without attached tenants
func (h *PropertyHandler) DeleteProperty(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	propertyUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid property id", "INVALID_PROPERTY_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	err = h.propertyFlow.DeleteProperty(createRequestContext(c, "/api/v1/properties/:uuid"), accountID, propertyUUID, metadata)
	if err != nil {
		if businessflow.IsPropertyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Property not found", "PROPERTY_NOT_FOUND", nil)
		}
		if businessflow.IsPropertyHasTenants(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, businessErrorMessage(err, "Property has attached tenants"), "PROPERTY_HAS_TENANTS", nil)
		}

		log.Println("Property deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete property", "PROPERTY_DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Property deleted successfully", nil)
}
