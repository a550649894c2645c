package dto

import (
	"encoding/json"
	"time"
)

// BillingWebhookRequest is the webhook envelope sent by the payment provider.
// Only the fields the core relies on are modeled; the raw payload is archived
// verbatim for idempotency and audit.
type BillingWebhookRequest struct {
	EventID string          `json:"event_id" validate:"required,max=255"`
	Type    string          `json:"type" validate:"required,max=64"`
	Data    BillingEventData `json:"data" validate:"required"`
}

// BillingEventData is the subscription snapshot inside a webhook event
type BillingEventData struct {
	CustomerRef       string     `json:"customer_ref" validate:"required"`
	SubscriptionRef   *string    `json:"subscription_ref,omitempty"`
	Plan              string     `json:"plan,omitempty"`
	Status            string     `json:"status,omitempty"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd *bool      `json:"cancel_at_period_end,omitempty"`
}

// Raw returns the event data re-encoded for archival
func (d BillingEventData) Raw() json.RawMessage {
	raw, _ := json.Marshal(d)
	return raw
}

// BillingWebhookResponse acknowledges a processed (or replayed) event
type BillingWebhookResponse struct {
	Message  string `json:"message"`
	EventID  string `json:"event_id"`
	Replayed bool   `json:"replayed"`
}
