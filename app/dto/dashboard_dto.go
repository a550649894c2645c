package dto

import "time"

// UpcomingRentDTO is one entry of the upcoming-rents list
type UpcomingRentDTO struct {
	TenantUUID string    `json:"tenant_uuid"`
	TenantName string    `json:"tenant_name"`
	RentAmount float64   `json:"rent_amount"`
	DueDate    time.Time `json:"due_date"`
	DaysUntil  int       `json:"days_until"`
}

// RenewalTaskDTO is one lease-renewal task derived from an expiring lease
type RenewalTaskDTO struct {
	TenantUUID       string    `json:"tenant_uuid"`
	TenantName       string    `json:"tenant_name"`
	LeaseEnd         time.Time `json:"lease_end"`
	DaysUntilRenewal int       `json:"days_until_renewal"`
	Priority         string    `json:"priority"`
}

// DashboardStatsDTO is the aggregator output for one account
type DashboardStatsDTO struct {
	TotalTenants        int               `json:"total_tenants"`
	ActiveTenants       int               `json:"active_tenants"`
	TotalProperties     int               `json:"total_properties"`
	TotalMonthlyRevenue float64           `json:"total_monthly_revenue"`
	VacancyRate         float64           `json:"vacancy_rate"`
	UpcomingRents       []UpcomingRentDTO `json:"upcoming_rents"`
	RecentTenants       []TenantDTO       `json:"recent_tenants"`
	UpcomingTasks       []RenewalTaskDTO  `json:"upcoming_tasks"`
	GeneratedAt         time.Time         `json:"generated_at"`
}

// DashboardStatsResponse wraps the dashboard stats
type DashboardStatsResponse struct {
	Message string            `json:"message"`
	Stats   DashboardStatsDTO `json:"stats"`
}
