package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/repository"
	"github.com/rentfold/rentfold/utils"
	"github.com/xuri/excelize/v2"
)

// TenantExportFlow exports an account's tenants as a spreadsheet
type TenantExportFlow interface {
	ExportTenants(ctx context.Context, accountID uint, metadata *ClientMetadata) (filename string, content []byte, err error)
}

// TenantExportFlowImpl implements the tenant export business flow
type TenantExportFlowImpl struct {
	tenantRepo repository.TenantRepository
	auditRepo  repository.AuditLogRepository
}

// NewTenantExportFlow creates a new tenant export flow instance
func NewTenantExportFlow(
	tenantRepo repository.TenantRepository,
	auditRepo repository.AuditLogRepository,
) TenantExportFlow {
	return &TenantExportFlowImpl{
		tenantRepo: tenantRepo,
		auditRepo:  auditRepo,
	}
}

// ExportTenants builds an XLSX workbook with one row per non-deleted tenant
func (e *TenantExportFlowImpl) ExportTenants(ctx context.Context, accountID uint, metadata *ClientMetadata) (string, []byte, error) {
	tenants, err := e.tenantRepo.ListByAccount(ctx, accountID, 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("TENANT_EXPORT_FAILED", "Failed to export tenants", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Tenants"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"uuid", "first_name", "last_name", "email", "phone", "status", "rent_amount", "rent_due_day", "lease_start", "lease_end", "created_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, tenant := range tenants {
		phone := ""
		if tenant.Phone != nil {
			phone = *tenant.Phone
		}
		leaseStart := ""
		if tenant.LeaseStart != nil {
			leaseStart = tenant.LeaseStart.UTC().Format("2006-01-02")
		}
		leaseEnd := ""
		if tenant.LeaseEnd != nil {
			leaseEnd = tenant.LeaseEnd.UTC().Format("2006-01-02")
		}
		record := []string{
			tenant.UUID.String(),
			tenant.FirstName,
			tenant.LastName,
			tenant.Email,
			phone,
			tenant.Status.String(),
			strconv.FormatFloat(tenant.RentAmount, 'f', 2, 64),
			strconv.Itoa(tenant.RentDueDay),
			leaseStart,
			leaseEnd,
			tenant.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	description := fmt.Sprintf("exported %d tenants", len(tenants))
	auditLog := &models.AuditLog{
		AccountID:   &accountID,
		Action:      models.AuditActionTenantsExported,
		Description: &description,
		Success:     utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
	}
	if metadata != nil && metadata.RequestID != "" {
		auditLog.RequestID = &metadata.RequestID
	}
	_ = e.auditRepo.Save(ctx, auditLog)

	filename := fmt.Sprintf("tenants_%s.xlsx", utils.UTCNow().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}
