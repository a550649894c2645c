package models

import (
	"time"
)

// AccountSession is an issued token pair for an authenticated account
type AccountSession struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	AccountID uint     `gorm:"not null;index:idx_account_sessions_account_id" json:"account_id"`
	Account   *Account `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`

	SessionToken string  `gorm:"size:512;not null;uniqueIndex:uk_account_sessions_token" json:"session_token"`
	RefreshToken *string `gorm:"size:512;index:idx_account_sessions_refresh_token" json:"refresh_token,omitempty"`

	IPAddress *string `gorm:"type:inet" json:"ip_address,omitempty"`
	UserAgent *string `gorm:"type:text" json:"user_agent,omitempty"`

	IsActive  *bool      `gorm:"default:true;index:idx_account_sessions_is_active" json:"is_active"`
	ExpiresAt time.Time  `gorm:"not null;index:idx_account_sessions_expires_at" json:"expires_at"`
	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func (AccountSession) TableName() string {
	return "account_sessions"
}

// AccountSessionFilter represents filter criteria for session queries
type AccountSessionFilter struct {
	ID            *uint
	AccountID     *uint
	SessionToken  *string
	RefreshToken  *string
	IsActive      *bool
	ExpiresAfter  *time.Time
	ExpiresBefore *time.Time
}

// IsExpired reports whether the session has passed its expiry
func (s *AccountSession) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// IsUsable reports whether the session can authenticate a request
func (s *AccountSession) IsUsable() bool {
	return s.IsActive != nil && *s.IsActive && !s.IsExpired() && s.RevokedAt == nil
}
