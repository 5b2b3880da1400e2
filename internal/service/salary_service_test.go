package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository/memory"
	"github.com/noah-isme/campusconnect-api/internal/seed"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

func newSalaryServiceForTest(t *testing.T) *SalaryService {
	t.Helper()
	repo := memory.NewSalaryRepository(memory.NewStore())
	for _, rec := range seed.Salaries(testSchool) {
		rec := rec
		require.NoError(t, repo.Create(context.Background(), &rec))
	}
	svc := NewSalaryService(repo, nil)
	svc.today = func() models.Date { return models.MustDate("2024-07-31") }
	return svc
}

func TestSalaryPayMovesPendingToPaid(t *testing.T) {
	svc := newSalaryServiceForTest(t)

	rec, err := svc.Pay(context.Background(), principal, "SAL003")
	require.NoError(t, err)
	assert.Equal(t, models.SalaryStatusPaid, rec.Status)
	require.NotNil(t, rec.PaidOn)
	assert.Equal(t, "2024-07-31", rec.PaidOn.String())

	_, err = svc.Pay(context.Background(), principal, "SAL003")
	requireAppError(t, err, "CONFLICT")

	_, err = svc.Pay(context.Background(), principal, "SAL999")
	requireAppError(t, err, "NOT_FOUND")
}

func TestSalaryListFiltersByMonthAndRole(t *testing.T) {
	svc := newSalaryServiceForTest(t)

	page, err := svc.List(context.Background(), principal, models.SalaryFilter{Month: "2024-07", Role: "Teacher"}, listing.Query{Sort: listing.SortState{Key: "salary", Desc: true}})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "SAL004", page.Items[0].ID)
	assert.Equal(t, "SAL005", page.Items[1].ID)
}

func TestSalaryDatasetUsesPlaceholderForUnpaid(t *testing.T) {
	svc := newSalaryServiceForTest(t)

	ds, err := svc.Dataset(context.Background(), principal, url.Values{"month": {"2024-07"}, "role": {"Warden"}})
	require.NoError(t, err)
	text, err := ds.Data.Text()
	require.NoError(t, err)
	assert.Equal(t, "Staff ID,Name,Role,Month,Salary,Status,Paid On\n"+
		`SAL007,"Vikram Singh","Warden",2024-07,30000,Pending,-`, text)
}
