package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour
)

// Subscription constants
const (
	// TrialPeriod is the free trial granted to every new account (14 days)
	TrialPeriod = 14 * 24 * time.Hour
)

// Dashboard window constants
const (
	// UpcomingRentWindowDays is how far ahead the dashboard looks for rent due dates
	UpcomingRentWindowDays = 7

	// LeaseRenewalWindowDays is how far ahead the dashboard looks for expiring leases
	LeaseRenewalWindowDays = 30

	// DashboardListCap bounds the upcoming-rent and recent-tenant lists
	DashboardListCap = 5

	// DashboardCacheTTL is how long computed dashboard stats stay cached
	DashboardCacheTTL = 5 * time.Minute
)

// Cache key fragments
const (
	// DashboardStatsCacheKey is the per-account dashboard stats cache key prefix
	DashboardStatsCacheKey = "dashboard:stats"
)

// HTTP constants
const (
	// CORSMaxAge is how long browsers may cache CORS preflight responses (seconds)
	CORSMaxAge = 86400
)

// ContextKey is the type for request-scoped context values
type ContextKey string

// Context keys propagated from the HTTP layer into business flows
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)
