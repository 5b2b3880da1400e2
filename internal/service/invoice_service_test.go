package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository/memory"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

func newInvoiceServiceForTest(t *testing.T, cache *CacheService) (*InvoiceService, *memory.Store) {
	t.Helper()
	store := testStore(t)
	svc := NewInvoiceService(memory.NewInvoiceRepository(store), cache, nil)
	svc.today = func() models.Date { return models.MustDate("2024-07-08") }
	return svc, store
}

func TestInvoiceListScopesParentsToTheirChildren(t *testing.T) {
	svc, _ := newInvoiceServiceForTest(t, nil)

	page, err := svc.List(context.Background(), parent, models.InvoiceFilter{}, listing.Query{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "INV1001", page.Items[0].ID)
	assert.Equal(t, "INV1002", page.Items[1].ID)

	page, err = svc.List(context.Background(), principal, models.InvoiceFilter{}, listing.Query{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

func TestInvoiceListSearchAndSort(t *testing.T) {
	svc, _ := newInvoiceServiceForTest(t, nil)

	page, err := svc.List(context.Background(), principal, models.InvoiceFilter{Search: "fee"}, listing.Query{Sort: listing.SortState{Key: "amount", Desc: true}})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, []string{"INV1001", "INV1002", "INV1003"}, []string{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID})

	page, err = svc.List(context.Background(), principal, models.InvoiceFilter{Search: "nothing matches"}, listing.Query{})
	require.NoError(t, err)
	assert.True(t, page.Empty)
}

func TestInvoiceListRejectsUnknownSortKey(t *testing.T) {
	svc, _ := newInvoiceServiceForTest(t, nil)

	_, err := svc.List(context.Background(), principal, models.InvoiceFilter{}, listing.Query{Sort: listing.SortState{Key: "colour"}})
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	assert.Contains(t, appErr.Message, "dueDate")
}

func TestInvoiceDatasetMatchesExportLayout(t *testing.T) {
	svc, _ := newInvoiceServiceForTest(t, nil)

	named, err := svc.Dataset(context.Background(), parent, url.Values{"status": {"Pending"}})
	require.NoError(t, err)
	assert.Equal(t, "fee_invoices_pending.csv", named.Filename(models.ReportFormatCSV))

	text, err := named.Data.Text()
	require.NoError(t, err)
	assert.Equal(t, "Invoice ID,Description,Amount,Due Date,Status\nINV1002,\"Bus Fee - July\",2500,2024-07-10,Pending", text)
}

func TestInvoicePay(t *testing.T) {
	repo := newFakeCache()
	svc, _ := newInvoiceServiceForTest(t, newTestCache(repo))
	ctx := context.Background()

	paid, err := svc.Pay(ctx, parent, "INV1002")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidOn)
	assert.Equal(t, "2024-07-08", paid.PaidOn.String())
	assert.Equal(t, []string{"campusconnect:school-1:fees:*"}, repo.deleted)

	_, err = svc.Pay(ctx, parent, "INV1002")
	requireAppError(t, err, "CONFLICT")

	_, err = svc.Pay(ctx, principal, "INV404")
	requireAppError(t, err, "NOT_FOUND")

	_, err = svc.Pay(ctx, parent, "INV1003")
	requireAppError(t, err, "FORBIDDEN")

	_, err = svc.Pay(ctx, principal, "INV9001")
	requireAppError(t, err, "NOT_FOUND")
}

func TestInvoiceSummaryIsCachedPerAudience(t *testing.T) {
	repo := newFakeCache()
	svc, _ := newInvoiceServiceForTest(t, newTestCache(repo))
	ctx := context.Background()

	summary, hit, err := svc.Summary(ctx, principal, "")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, summary.Invoices)
	assert.Equal(t, int64(12000), summary.Collected)
	assert.Equal(t, int64(4000), summary.Outstanding)
	assert.Equal(t, 1, summary.Counts[models.InvoiceStatusOverdue])
	assert.Equal(t, 0, summary.Counts[models.InvoiceStatusUpcoming])

	_, hit, err = svc.Summary(ctx, principal, "")
	require.NoError(t, err)
	assert.True(t, hit)

	own, hit, err := svc.Summary(ctx, parent, "")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, own.Invoices)

	_, _, err = svc.Summary(ctx, parent, "STU2")
	requireAppError(t, err, "FORBIDDEN")

	_, err = svc.Pay(ctx, principal, "INV1003")
	require.NoError(t, err)
	after, hit, err := svc.Summary(ctx, principal, "")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(13500), after.Collected)
}

func TestSummaryAudience(t *testing.T) {
	assert.Equal(t, "student-STU1", summaryAudience(parent, "STU1"))
	assert.Equal(t, "all", summaryAudience(teacher, ""))
	multi := models.Scope{Role: models.RoleParent, StudentIDs: []string{"STU2", "STU1"}}
	assert.Equal(t, "students-STU1+STU2", summaryAudience(multi, ""))
}
