// Package businessflow contains the core business logic and use cases for the rent management system
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Account-related errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")

	// Subscription and quota errors
	ErrQuotaExceeded           = errors.New("plan quota exceeded")
	ErrSubscriptionNotWritable = errors.New("subscription does not allow writes")
	ErrUnknownPlan             = errors.New("unknown subscription plan")

	// Property-related errors
	ErrPropertyNotFound   = errors.New("property not found")
	ErrPropertyHasTenants = errors.New("property has attached tenants")
	ErrInvalidStructure   = errors.New("invalid property structure")

	// Tenant-related errors
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrDuplicateTenantEmail = errors.New("tenant email already exists for this account")
	ErrTenantAlreadyDeleted = errors.New("tenant is already deleted")
	ErrInvalidRentDueDay    = errors.New("rent due day must be between 1 and 31")
	ErrLeaseWindowInvalid   = errors.New("lease end cannot be before lease start")

	// Validation errors
	ErrFieldRequired  = errors.New("required field is missing")
	ErrNoUpdateFields = errors.New("at least one field must be provided for update")

	// Billing webhook errors
	ErrWebhookEventIDRequired = errors.New("webhook event id is required")
	ErrWebhookUnknownAccount  = errors.New("webhook references an unknown account")
	ErrWebhookUnknownType     = errors.New("unknown webhook event type")

	// Infrastructure errors
	ErrStoreUnavailable  = errors.New("data store unavailable")
	ErrCacheNotAvailable = errors.New("cache not available")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code string, err error, format string, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

func IsSubscriptionNotWritable(err error) bool {
	return errors.Is(err, ErrSubscriptionNotWritable)
}

func IsPropertyNotFound(err error) bool {
	return errors.Is(err, ErrPropertyNotFound)
}

func IsPropertyHasTenants(err error) bool {
	return errors.Is(err, ErrPropertyHasTenants)
}

func IsTenantNotFound(err error) bool {
	return errors.Is(err, ErrTenantNotFound)
}

func IsDuplicateTenantEmail(err error) bool {
	return errors.Is(err, ErrDuplicateTenantEmail)
}

func IsTenantAlreadyDeleted(err error) bool {
	return errors.Is(err, ErrTenantAlreadyDeleted)
}

func IsInvalidRentDueDay(err error) bool {
	return errors.Is(err, ErrInvalidRentDueDay)
}

func IsLeaseWindowInvalid(err error) bool {
	return errors.Is(err, ErrLeaseWindowInvalid)
}

func IsFieldRequired(err error) bool {
	return errors.Is(err, ErrFieldRequired)
}

func IsNoUpdateFields(err error) bool {
	return errors.Is(err, ErrNoUpdateFields)
}

func IsWebhookUnknownAccount(err error) bool {
	return errors.Is(err, ErrWebhookUnknownAccount)
}

func IsWebhookUnknownType(err error) bool {
	return errors.Is(err, ErrWebhookUnknownType)
}

func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
