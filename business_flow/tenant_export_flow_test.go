package businessflow

import (
	"bytes"
	"context"
	"testing"

	"github.com/rentfold/rentfold/models"
	"github.com/rentfold/rentfold/repository"
	testingutil "github.com/rentfold/rentfold/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestTenantExportFlow(t *testing.T) {
	testDB := newFlowTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)

	tenantRepo := repository.NewTenantRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	exportFlow := NewTenantExportFlow(tenantRepo, auditRepo)

	account, err := fixtures.CreateTestAccount(models.PlanBasic)
	require.NoError(t, err)

	tenant, err := fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusActive)
	require.NoError(t, err)
	_, err = fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusPending)
	require.NoError(t, err)
	deleted, err := fixtures.CreateTestTenant(account.ID, nil, models.TenantStatusDeleted)
	require.NoError(t, err)

	filename, content, err := exportFlow.ExportTenants(context.Background(), account.ID, testMetadata())
	require.NoError(t, err)
	assert.Regexp(t, `^tenants_\d{4}-\d{2}-\d{2}\.xlsx$`, filename)
	require.NotEmpty(t, content)

	xl, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	rows, err := xl.GetRows("Tenants")
	require.NoError(t, err)

	// Header plus the two non-deleted tenants
	require.Len(t, rows, 3)
	assert.Equal(t, "uuid", rows[0][0])
	assert.Equal(t, "email", rows[0][3])

	exported := map[string]bool{}
	for _, row := range rows[1:] {
		exported[row[0]] = true
	}
	assert.True(t, exported[tenant.UUID.String()])
	assert.False(t, exported[deleted.UUID.String()])
}
