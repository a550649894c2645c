// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/rentfold/rentfold/app/dto"
	"github.com/rentfold/rentfold/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToAuthAccountDTO converts an account model to AuthAccountDTO for authentication responses
func ToAuthAccountDTO(account models.Account) dto.AuthAccountDTO {
	return dto.AuthAccountDTO{
		ID:               account.ID,
		UUID:             account.UUID.String(),
		Email:            account.Email,
		FirstName:        account.FirstName,
		LastName:         account.LastName,
		CompanyName:      account.CompanyName,
		SubscriptionPlan: account.SubscriptionPlan.String(),
		TrialEndsAt:      account.TrialEndsAt,
		IsEmailVerified:  account.IsEmailVerified,
		CreatedAt:        account.CreatedAt.Format(time.RFC3339),
	}
}

// ToSessionDTO converts a session model to the token-pair DTO
func ToSessionDTO(session models.AccountSession) dto.SessionDTO {
	refresh := ""
	if session.RefreshToken != nil {
		refresh = *session.RefreshToken
	}
	return dto.SessionDTO{
		AccessToken:  session.SessionToken,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
	}
}

// ToTenantDTO converts a tenant model to its API shape
func ToTenantDTO(t *models.Tenant) dto.TenantDTO {
	return dto.TenantDTO{
		ID:         t.ID,
		UUID:       t.UUID.String(),
		FirstName:  t.FirstName,
		LastName:   t.LastName,
		Email:      t.Email,
		Phone:      t.Phone,
		PropertyID: t.PropertyID,
		Status:     t.Status.String(),
		RentAmount: t.RentAmount,
		RentDueDay: t.RentDueDay,
		LeaseStart: t.LeaseStart,
		LeaseEnd:   t.LeaseEnd,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// ToPropertyDTO converts a property model to its API shape
func ToPropertyDTO(p *models.Property, tenantCount int64) dto.PropertyDTO {
	units := make([]dto.PropertyUnitDTO, 0, len(p.Units))
	for _, u := range p.Units {
		units = append(units, dto.PropertyUnitDTO{
			Label:       u.Label,
			MonthlyRent: u.MonthlyRent,
			Status:      string(u.Status),
		})
	}

	return dto.PropertyDTO{
		ID:                 p.ID,
		UUID:               p.UUID.String(),
		Name:               p.Name,
		AddressLine:        p.AddressLine,
		City:               p.City,
		PostalCode:         p.PostalCode,
		Structure:          p.Structure.String(),
		Status:             p.Status.String(),
		MarketRent:         p.MarketRent,
		TotalMonthlyIncome: p.TotalMonthlyIncome,
		MonthlyIncome:      p.MonthlyIncome(),
		OccupancyRate:      p.OccupancyRate(),
		Units:              units,
		TenantCount:        tenantCount,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}
