package dto

import "time"

// SignupRequest is the account registration payload
type SignupRequest struct {
	Email           string  `json:"email" validate:"required,email,max=255"`
	Password        string  `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,eqfield=Password"`
	FirstName       string  `json:"first_name" validate:"required,max=100"`
	LastName        string  `json:"last_name" validate:"required,max=100"`
	CompanyName     *string `json:"company_name,omitempty" validate:"omitempty,max=120"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthAccountDTO is the account shape returned on signup/login
type AuthAccountDTO struct {
	ID               uint       `json:"id"`
	UUID             string     `json:"uuid"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	CompanyName      *string    `json:"company_name,omitempty"`
	SubscriptionPlan string     `json:"subscription_plan"`
	TrialEndsAt      *time.Time `json:"trial_ends_at,omitempty"`
	IsEmailVerified  *bool      `json:"is_email_verified"`
	CreatedAt        string     `json:"created_at"`
}

// SessionDTO carries the issued token pair
type SessionDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// SignupResponse is returned on successful registration
type SignupResponse struct {
	Message string         `json:"message"`
	Account AuthAccountDTO `json:"account"`
	Session SessionDTO     `json:"session"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Message string         `json:"message"`
	Account AuthAccountDTO `json:"account"`
	Session SessionDTO     `json:"session"`
}

// ProfileResponse is the authenticated account's profile
type ProfileResponse struct {
	Message string     `json:"message"`
	Account ProfileDTO `json:"account"`
}

// ProfileDTO is the full account profile shape
type ProfileDTO struct {
	ID                 uint       `json:"id"`
	UUID               string     `json:"uuid"`
	Email              string     `json:"email"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	CompanyName        *string    `json:"company_name,omitempty"`
	SubscriptionPlan   string     `json:"subscription_plan"`
	SubscriptionStatus string     `json:"subscription_status"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  *bool      `json:"cancel_at_period_end"`
	LimitProperties    int        `json:"limit_properties"`
	LimitTenants       int        `json:"limit_tenants"`
	LimitUsers         int        `json:"limit_users"`
	LimitStorageMB     int        `json:"limit_storage_mb"`
	Currency           string     `json:"currency"`
	Timezone           string     `json:"timezone"`
	DateFormat         string     `json:"date_format"`
	IsEmailVerified    *bool      `json:"is_email_verified"`
	IsActive           *bool      `json:"is_active"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
