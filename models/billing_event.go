package models

import (
	"encoding/json"
	"time"
)

// Billing webhook event types consumed by the billing flow
const (
	BillingEventSubscriptionUpdated  = "subscription.updated"
	BillingEventSubscriptionCanceled = "subscription.canceled"
)

// BillingEvent is a processed webhook event from the payment provider.
// The unique EventID makes webhook processing idempotent: a replayed event is
// acknowledged without reapplying its effects.
type BillingEvent struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	EventID string `gorm:"size:255;not null;uniqueIndex:uk_billing_events_event_id" json:"event_id"`
	Type    string `gorm:"size:64;not null;index:idx_billing_events_type" json:"type"`

	AccountID *uint    `gorm:"index:idx_billing_events_account_id" json:"account_id,omitempty"`
	Account   *Account `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`

	Payload     json.RawMessage `gorm:"type:jsonb;not null" json:"payload"`
	ProcessedAt time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"processed_at"`
}

func (BillingEvent) TableName() string {
	return "billing_events"
}

// BillingEventFilter represents filter criteria for billing event queries
type BillingEventFilter struct {
	ID        *uint
	EventID   *string
	Type      *string
	AccountID *uint
}
