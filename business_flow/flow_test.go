package businessflow

import (
	"testing"

	testingutil "github.com/rentfold/rentfold/testing"
)

// newFlowTestDB provisions a throwaway database for a flow test. Tests are
// skipped when no PostgreSQL server is reachable.
func newFlowTestDB(t *testing.T) *testingutil.TestDB {
	t.Helper()

	testDB, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	t.Cleanup(func() {
		_ = testDB.TeardownTestDB()
	})

	return testDB
}

func testMetadata() *ClientMetadata {
	metadata := NewClientMetadata("127.0.0.1", "Test User Agent")
	metadata.SetRequestID("test-request-id")
	return metadata
}
