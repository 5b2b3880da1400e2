package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository/memory"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

func TestAttendanceSummaryDefaultsToLinkedStudent(t *testing.T) {
	svc := NewAttendanceService(memory.NewAttendanceRepository(testStore(t)), newTestCache(newFakeCache()), nil)
	ctx := context.Background()

	summary, hit, err := svc.Summary(ctx, parent, models.AttendanceFilter{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "STU1", summary.StudentID)
	assert.Equal(t, 2, summary.Present)
	assert.Equal(t, 1, summary.Absent)
	assert.Equal(t, 1, summary.Holiday)
	assert.Equal(t, 66.67, summary.Percentage)

	_, hit, err = svc.Summary(ctx, parent, models.AttendanceFilter{})
	require.NoError(t, err)
	assert.True(t, hit)

	ranged, _, err := svc.Summary(ctx, parent, models.AttendanceFilter{From: models.MustDate("2024-07-03").Ptr()})
	require.NoError(t, err)
	assert.Equal(t, 100.0, ranged.Percentage)

	_, _, err = svc.Summary(ctx, parent, models.AttendanceFilter{StudentID: "STU2"})
	requireAppError(t, err, "FORBIDDEN")

	twoChildren := models.Scope{SchoolID: testSchool, Role: models.RoleParent, StudentIDs: []string{"STU1", "STU2"}}
	_, _, err = svc.Summary(ctx, twoChildren, models.AttendanceFilter{})
	requireAppError(t, err, "VALIDATION_ERROR")
}

func TestAttendanceListNewestFirst(t *testing.T) {
	svc := NewAttendanceService(memory.NewAttendanceRepository(testStore(t)), nil, nil)

	page, err := svc.List(context.Background(), teacher, models.AttendanceFilter{Status: "absent"}, listing.Query{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "ATT2", page.Items[0].ID)
	assert.Equal(t, "ATT5", page.Items[1].ID)
}

func TestSalaryPay(t *testing.T) {
	store := testStore(t)
	repo := memory.NewSalaryRepository(store)
	require.NoError(t, repo.Create(context.Background(), &models.StaffSalaryRecord{
		ID: "SAL1", SchoolID: testSchool, Name: "Ms. Iyer", Role: "Teacher", Month: "2024-07", Salary: 52000, Status: models.SalaryStatusPending,
	}))
	svc := NewSalaryService(repo, nil)
	svc.today = func() models.Date { return models.MustDate("2024-07-31") }

	paid, err := svc.Pay(context.Background(), principal, "SAL1")
	require.NoError(t, err)
	assert.Equal(t, models.SalaryStatusPaid, paid.Status)

	_, err = svc.Pay(context.Background(), principal, "SAL1")
	requireAppError(t, err, "CONFLICT")
	_, err = svc.Pay(context.Background(), principal, "SAL2")
	requireAppError(t, err, "NOT_FOUND")
}
