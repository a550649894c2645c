// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/rentfold/rentfold/app/dto"
	businessflow "github.com/rentfold/rentfold/business_flow"
)

// DashboardHandlerInterface defines the contract for dashboard handlers
type DashboardHandlerInterface interface {
	GetStats(c fiber.Ctx) error
	RefreshStats(c fiber.Ctx) error
}

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardFlow businessflow.DashboardFlow
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardFlow businessflow.DashboardFlow) *DashboardHandler {
	return &DashboardHandler{
		dashboardFlow: dashboardFlow,
	}
}

func (h *DashboardHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *DashboardHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetStats returns the account's dashboard aggregates
func (h *DashboardHandler) GetStats(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.dashboardFlow.GetDashboardStats(createRequestContext(c, "/api/v1/dashboard/stats"), accountID)
	if err != nil {
		log.Println("Dashboard stats failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load dashboard stats", "DASHBOARD_STATS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"stats": result.Stats,
	})
}

// RefreshStats recomputes and persists the account's stats cache
func (h *DashboardHandler) RefreshStats(c fiber.Ctx) error {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.dashboardFlow.RefreshStats(createRequestContext(c, "/api/v1/dashboard/stats/refresh"), accountID, metadata)
	if err != nil {
		log.Println("Stats refresh failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to refresh stats", "STATS_REFRESH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"stats": result.Stats,
	})
}
