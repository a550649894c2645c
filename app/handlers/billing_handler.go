// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rentfold/rentfold/app/dto"
	businessflow "github.com/rentfold/rentfold/business_flow"
	"github.com/rentfold/rentfold/config"
)

// BillingHandlerInterface defines the contract for billing webhook handlers
type BillingHandlerInterface interface {
	Webhook(c fiber.Ctx) error
}

// BillingHandler handles billing webhook HTTP requests
type BillingHandler struct {
	billingFlow   businessflow.BillingFlow
	billingConfig *config.BillingConfig
	validator     *validator.Validate
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingFlow businessflow.BillingFlow, billingConfig *config.BillingConfig) *BillingHandler {
	return &BillingHandler{
		billingFlow:   billingFlow,
		billingConfig: billingConfig,
		validator:     validator.New(),
	}
}

func (h *BillingHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *BillingHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Webhook processes a subscription event from the payment provider.
// Replayed events are acknowledged with 200 so the provider stops retrying.
func (h *BillingHandler) Webhook(c fiber.Ctx) error {
	if !h.verifySignature(c) {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Webhook signature verification failed", "INVALID_SIGNATURE", nil)
	}

	var req dto.BillingWebhookRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.billingFlow.ProcessWebhook(createRequestContext(c, "/api/v1/billing/webhook"), &req, metadata)
	if err != nil {
		if businessflow.IsWebhookUnknownAccount(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Unknown account reference", "WEBHOOK_UNKNOWN_ACCOUNT", nil)
		}
		if businessflow.IsWebhookUnknownType(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessErrorMessage(err, "Unknown webhook event type"), "WEBHOOK_UNKNOWN_TYPE", nil)
		}

		log.Println("Webhook processing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to process webhook", "WEBHOOK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"event_id": result.EventID,
		"replayed": result.Replayed,
	})
}

// verifySignature checks the provider's HMAC-SHA256 signature over the raw
// request body. An empty configured secret disables verification.
func (h *BillingHandler) verifySignature(c fiber.Ctx) bool {
	if h.billingConfig == nil || h.billingConfig.WebhookSecret == "" {
		return true
	}

	signature := c.Get(h.billingConfig.SignatureHeader)
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.billingConfig.WebhookSecret))
	mac.Write(c.Body())
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}
