package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rentfold/rentfold/app/dto"
	"github.com/rentfold/rentfold/config"
	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/repository"
	"github.com/rentfold/rentfold/utils"
	"gorm.io/gorm"
)

// DashboardFlow computes the per-account dashboard aggregates
type DashboardFlow interface {
	GetDashboardStats(ctx context.Context, accountID uint) (*dto.DashboardStatsResponse, error)
	RefreshStats(ctx context.Context, accountID uint, metadata *ClientMetadata) (*dto.DashboardStatsResponse, error)
}

// DashboardFlowImpl implements the dashboard business flow
type DashboardFlowImpl struct {
	accountRepo  repository.AccountRepository
	propertyRepo repository.PropertyRepository
	tenantRepo   repository.TenantRepository
	auditRepo    repository.AuditLogRepository
	cacheConfig  *config.CacheConfig
	rc           *redis.Client
	db           *gorm.DB
}

// NewDashboardFlow creates a new dashboard flow instance
func NewDashboardFlow(
	accountRepo repository.AccountRepository,
	propertyRepo repository.PropertyRepository,
	tenantRepo repository.TenantRepository,
	auditRepo repository.AuditLogRepository,
	cacheConfig *config.CacheConfig,
	rc *redis.Client,
	db *gorm.DB,
) DashboardFlow {
	return &DashboardFlowImpl{
		accountRepo:  accountRepo,
		propertyRepo: propertyRepo,
		tenantRepo:   tenantRepo,
		auditRepo:    auditRepo,
		cacheConfig:  cacheConfig,
		rc:           rc,
		db:           db,
	}
}

// GetDashboardStats returns the dashboard aggregates for the account.
// Reads through the redis cache when available. A store failure degrades to a
// zeroed stats payload instead of an error: the dashboard is a read surface
// and must render even when the store is down.
func (d *DashboardFlowImpl) GetDashboardStats(ctx context.Context, accountID uint) (*dto.DashboardStatsResponse, error) {
	if d.rc != nil {
		cacheKey := redisKey(d.cacheConfig, fmt.Sprintf("%s:%d", utils.DashboardStatsCacheKey, accountID))
		if bs, err := d.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.DashboardStatsDTO
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &dto.DashboardStatsResponse{
					Message: "Dashboard stats retrieved from cache",
					Stats:   cached,
				}, nil
			}
		}
	}

	stats, err := d.computeStats(ctx, accountID)
	if err != nil {
		return &dto.DashboardStatsResponse{
			Message: "Dashboard stats unavailable",
			Stats:   zeroedStats(),
		}, nil
	}

	d.cacheStats(ctx, accountID, stats)

	// Best-effort write-back of the denormalized stats columns; a failure
	// here never fails the read
	go func() {
		_ = d.accountRepo.UpdateStats(context.Background(), accountID, models.AccountStats{
			TotalProperties: stats.TotalProperties,
			TotalTenants:    stats.TotalTenants,
			ActiveLeases:    stats.ActiveTenants,
			MonthlyRevenue:  stats.TotalMonthlyRevenue,
		})
	}()

	return &dto.DashboardStatsResponse{
		Message: "Dashboard stats retrieved successfully.",
		Stats:   *stats,
	}, nil
}

// RefreshStats recomputes the aggregates, persists the stats cache columns,
// and invalidates the redis entry. Unlike GetDashboardStats, a store failure
// here is an error: the caller explicitly asked for fresh numbers.
func (d *DashboardFlowImpl) RefreshStats(ctx context.Context, accountID uint, metadata *ClientMetadata) (*dto.DashboardStatsResponse, error) {
	stats, err := d.computeStats(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("STATS_REFRESH_FAILED", "Failed to refresh stats", err)
	}

	err = d.accountRepo.UpdateStats(ctx, accountID, models.AccountStats{
		TotalProperties: stats.TotalProperties,
		TotalTenants:    stats.TotalTenants,
		ActiveLeases:    stats.ActiveTenants,
		MonthlyRevenue:  stats.TotalMonthlyRevenue,
	})
	if err != nil {
		return nil, NewBusinessError("STATS_REFRESH_FAILED", "Failed to refresh stats", err)
	}

	d.cacheStats(ctx, accountID, stats)

	description := "dashboard stats refreshed"
	auditLog := &models.AuditLog{
		AccountID:   &accountID,
		Action:      models.AuditActionStatsRefreshed,
		Description: &description,
		Success:     utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
	}
	if metadata != nil && metadata.RequestID != "" {
		auditLog.RequestID = &metadata.RequestID
	}
	_ = d.auditRepo.Save(ctx, auditLog)

	return &dto.DashboardStatsResponse{
		Message: "Dashboard stats refreshed successfully.",
		Stats:   *stats,
	}, nil
}

// computeStats derives every dashboard aggregate from the store.
// Tenant counts and revenue come from a single store-side group-by-status
// aggregation; soft-deleted tenants are excluded throughout.
func (d *DashboardFlowImpl) computeStats(ctx context.Context, accountID uint) (*dto.DashboardStatsDTO, error) {
	now := utils.UTCNow()

	breakdown, err := d.tenantRepo.StatusBreakdownByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	stats := &dto.DashboardStatsDTO{
		UpcomingRents: []dto.UpcomingRentDTO{},
		RecentTenants: []dto.TenantDTO{},
		UpcomingTasks: []dto.RenewalTaskDTO{},
		GeneratedAt:   now,
	}

	for _, row := range breakdown {
		stats.TotalTenants += int(row.Count)
		if row.Status == models.TenantStatusActive {
			stats.ActiveTenants = int(row.Count)
			stats.TotalMonthlyRevenue = row.RentSum
		}
	}

	properties, err := d.propertyRepo.ListByAccount(ctx, accountID, 0, 0)
	if err != nil {
		return nil, err
	}
	stats.TotalProperties = len(properties)
	stats.VacancyRate = vacancyRate(properties)

	if err := d.collectUpcomingRents(ctx, accountID, now, stats); err != nil {
		return nil, err
	}
	if err := d.collectRecentTenants(ctx, accountID, stats); err != nil {
		return nil, err
	}
	if err := d.collectRenewalTasks(ctx, accountID, now, stats); err != nil {
		return nil, err
	}

	return stats, nil
}

// collectUpcomingRents lists active tenants whose next rent due date falls
// within the lookahead window, soonest first, capped. Due days past the
// month's end are clamped to the last day of the month.
func (d *DashboardFlowImpl) collectUpcomingRents(ctx context.Context, accountID uint, now time.Time, stats *dto.DashboardStatsDTO) error {
	tenants, err := d.tenantRepo.ListActiveByAccount(ctx, accountID)
	if err != nil {
		return err
	}

	for _, tenant := range tenants {
		dueDate := utils.NextRentDueDate(tenant.RentDueDay, now)
		days := utils.DaysUntil(dueDate, now)
		if days > utils.UpcomingRentWindowDays {
			continue
		}
		stats.UpcomingRents = append(stats.UpcomingRents, dto.UpcomingRentDTO{
			TenantUUID: tenant.UUID.String(),
			TenantName: tenant.FullName(),
			RentAmount: tenant.RentAmount,
			DueDate:    dueDate,
			DaysUntil:  days,
		})
	}

	sort.Slice(stats.UpcomingRents, func(i, j int) bool {
		return stats.UpcomingRents[i].DueDate.Before(stats.UpcomingRents[j].DueDate)
	})
	if len(stats.UpcomingRents) > utils.DashboardListCap {
		stats.UpcomingRents = stats.UpcomingRents[:utils.DashboardListCap]
	}

	return nil
}

func (d *DashboardFlowImpl) collectRecentTenants(ctx context.Context, accountID uint, stats *dto.DashboardStatsDTO) error {
	recent, err := d.tenantRepo.ListRecentByAccount(ctx, accountID, utils.DashboardListCap)
	if err != nil {
		return err
	}

	for _, tenant := range recent {
		stats.RecentTenants = append(stats.RecentTenants, ToTenantDTO(tenant))
	}

	return nil
}

// collectRenewalTasks derives lease-renewal tasks from leases ending within
// the renewal window. Priority escalates as the end date approaches. A lease
// ending today or earlier has already run out and yields no task.
func (d *DashboardFlowImpl) collectRenewalTasks(ctx context.Context, accountID uint, now time.Time, stats *dto.DashboardStatsDTO) error {
	from := utils.TruncateToDay(now)
	until := from.AddDate(0, 0, utils.LeaseRenewalWindowDays+1)

	expiring, err := d.tenantRepo.ListLeaseEndingByAccount(ctx, accountID, from, until)
	if err != nil {
		return err
	}

	for _, tenant := range expiring {
		if tenant.LeaseEnd == nil {
			continue
		}
		days := utils.DaysUntil(*tenant.LeaseEnd, now)
		if days <= 0 || days > utils.LeaseRenewalWindowDays {
			continue
		}
		stats.UpcomingTasks = append(stats.UpcomingTasks, dto.RenewalTaskDTO{
			TenantUUID:       tenant.UUID.String(),
			TenantName:       tenant.FullName(),
			LeaseEnd:         *tenant.LeaseEnd,
			DaysUntilRenewal: days,
			Priority:         renewalPriority(days),
		})
	}

	return nil
}

// vacancyRate aggregates unit-level occupancy across the portfolio: a
// single_unit property counts as one unit, occupied while active; multi
// properties contribute their per-unit statuses.
func vacancyRate(properties []*models.Property) float64 {
	totalUnits := 0
	occupiedUnits := 0
	for _, property := range properties {
		if property.Structure == models.StructureSingleUnit || len(property.Units) == 0 {
			totalUnits++
			if property.Status == models.PropertyStatusActive {
				occupiedUnits++
			}
			continue
		}
		totalUnits += len(property.Units)
		occupiedUnits += property.OccupiedUnits()
	}
	if totalUnits == 0 {
		return 0
	}
	return 1 - float64(occupiedUnits)/float64(totalUnits)
}

// renewalPriority maps days-until-lease-end to a task priority
func renewalPriority(days int) string {
	switch {
	case days <= 7:
		return "high"
	case days <= 14:
		return "medium"
	default:
		return "low"
	}
}

func (d *DashboardFlowImpl) cacheStats(ctx context.Context, accountID uint, stats *dto.DashboardStatsDTO) {
	if d.rc == nil {
		return
	}
	cacheKey := redisKey(d.cacheConfig, fmt.Sprintf("%s:%d", utils.DashboardStatsCacheKey, accountID))
	if bs, err := json.Marshal(stats); err == nil {
		_ = d.rc.Set(ctx, cacheKey, bs, utils.DashboardCacheTTL).Err()
	}
}

func zeroedStats() dto.DashboardStatsDTO {
	return dto.DashboardStatsDTO{
		UpcomingRents: []dto.UpcomingRentDTO{},
		RecentTenants: []dto.TenantDTO{},
		UpcomingTasks: []dto.RenewalTaskDTO{},
		GeneratedAt:   utils.UTCNow(),
	}
}

// redisKey prefixes a cache key with the configured namespace
func redisKey(cfg *config.CacheConfig, key string) string {
	if cfg == nil || cfg.RedisPrefix == "" {
		return key
	}
	return cfg.RedisPrefix + key
}
