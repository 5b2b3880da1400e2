package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository/memory"
)

func TestLoadIntoMemoryStore(t *testing.T) {
	store := memory.NewStore()
	targets := Targets{
		Invoices:    memory.NewInvoiceRepository(store),
		Attendance:  memory.NewAttendanceRepository(store),
		Salaries:    memory.NewSalaryRepository(store),
		Requests:    memory.NewRequestRepository(store),
		Hostel:      memory.NewHostelRepository(store),
		Homework:    memory.NewHomeworkRepository(store),
		Performance: memory.NewPerformanceRepository(store),
	}
	anchor := models.MustDate("2024-07-31")
	require.NoError(t, Load(context.Background(), targets, "school-demo", anchor, nil))

	invoices, err := memory.NewInvoiceRepository(store).List(context.Background(), "school-demo")
	require.NoError(t, err)
	assert.Len(t, invoices, len(Invoices("x")))

	// Loading twice collides on IDs rather than duplicating rows.
	assert.Error(t, Load(context.Background(), targets, "school-demo", anchor, nil))
}

func TestAttendanceSundaysAreHolidays(t *testing.T) {
	records := Attendance("school-demo", models.MustDate("2024-07-31"), 14)
	assert.Len(t, records, 14*len(Students))
	for _, rec := range records {
		if rec.Date.Weekday() == 0 {
			assert.Equal(t, models.AttendanceStatusHoliday, rec.Status)
		}
		if rec.Status == models.AttendanceStatusAbsent {
			assert.NotNil(t, rec.Reason)
		}
	}
}
