package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository/memory"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
)

const testSchool = "school-1"

var (
	principal = models.Scope{SchoolID: testSchool, UserID: "u-principal", Name: "Dr. Rao", Role: models.RolePrincipal}
	teacher   = models.Scope{SchoolID: testSchool, UserID: "u-teacher", Name: "Ms. Iyer", Role: models.RoleTeacher}
	parent    = models.Scope{SchoolID: testSchool, UserID: "u-parent", Name: "Mr. Sharma", Role: models.RoleParent, StudentIDs: []string{"STU1"}}
	student   = models.Scope{SchoolID: testSchool, UserID: "u-student", Name: "Aarav", Role: models.RoleStudent, StudentIDs: []string{"STU1"}}
)

// testStore seeds a small school with rows for every resource.
func testStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	invoices := memory.NewInvoiceRepository(store)
	for _, inv := range []models.Invoice{
		{ID: "INV1001", SchoolID: testSchool, StudentID: "STU1", Description: "Tuition Fee - Term 1", Amount: 12000, DueDate: models.MustDate("2024-07-05"), Status: models.InvoiceStatusPaid, PaidOn: models.MustDate("2024-07-01").Ptr()},
		{ID: "INV1002", SchoolID: testSchool, StudentID: "STU1", Description: "Bus Fee - July", Amount: 2500, DueDate: models.MustDate("2024-07-10"), Status: models.InvoiceStatusPending},
		{ID: "INV1003", SchoolID: testSchool, StudentID: "STU2", Description: "Lab Fee", Amount: 1500, DueDate: models.MustDate("2024-06-30"), Status: models.InvoiceStatusOverdue},
		{ID: "INV9001", SchoolID: "school-2", StudentID: "STU9", Description: "Other school", Amount: 999, DueDate: models.MustDate("2024-07-10"), Status: models.InvoiceStatusPending},
	} {
		inv := inv
		require.NoError(t, invoices.Create(ctx, &inv))
	}

	attendance := memory.NewAttendanceRepository(store)
	reason := "Fever"
	arrival := "08:05"
	for _, rec := range []models.AttendanceRecord{
		{ID: "ATT1", SchoolID: testSchool, StudentID: "STU1", Date: models.MustDate("2024-07-01"), Status: models.AttendanceStatusPresent, Arrival: &arrival},
		{ID: "ATT2", SchoolID: testSchool, StudentID: "STU1", Date: models.MustDate("2024-07-02"), Status: models.AttendanceStatusAbsent, Reason: &reason},
		{ID: "ATT3", SchoolID: testSchool, StudentID: "STU1", Date: models.MustDate("2024-07-03"), Status: models.AttendanceStatusPresent},
		{ID: "ATT4", SchoolID: testSchool, StudentID: "STU1", Date: models.MustDate("2024-07-04"), Status: models.AttendanceStatusHoliday},
		{ID: "ATT5", SchoolID: testSchool, StudentID: "STU2", Date: models.MustDate("2024-07-01"), Status: models.AttendanceStatusAbsent},
	} {
		rec := rec
		require.NoError(t, attendance.Create(ctx, &rec))
	}

	requests := memory.NewRequestRepository(store)
	proofFor := "INV1002"
	require.NoError(t, requests.Create(ctx, &models.ParentRequest{ID: "REQ1", SchoolID: testSchool, ParentName: "Mr. Sharma", StudentID: "STU1", StudentName: "Aarav", Type: models.RequestTypePaymentProof, Details: "Paid at the bank", InvoiceID: &proofFor, SubmittedAt: time.Date(2024, 7, 9, 10, 0, 0, 0, time.UTC)}))
	require.NoError(t, requests.Create(ctx, &models.ParentRequest{ID: "REQ2", SchoolID: testSchool, ParentName: "Mrs. Gupta", StudentID: "STU2", StudentName: "Diya", Type: models.RequestTypeLeave, Details: "Family wedding", SubmittedAt: time.Date(2024, 7, 8, 9, 0, 0, 0, time.UTC)}))

	performance := memory.NewPerformanceRepository(store)
	for _, p := range []models.TeacherPerformance{
		{ID: "T1", SchoolID: testSchool, TeacherName: "Ms. Iyer", Subject: "Math", AttendanceRate: 98, PassRate: 92, Rating: 4.8, Term: "2024-T1"},
		{ID: "T2", SchoolID: testSchool, TeacherName: "Mr. Khan", Subject: "Science", AttendanceRate: 95, PassRate: 88, Rating: 4.5, Term: "2024-T1"},
		{ID: "T3", SchoolID: testSchool, TeacherName: "Mrs. Bose", Subject: "English", AttendanceRate: 97, PassRate: 92, Rating: 4.8, Term: "2024-T1"},
		{ID: "T4", SchoolID: testSchool, TeacherName: "Mr. Das", Subject: "Math", AttendanceRate: 90, PassRate: 80, Rating: 4.1, Term: "2024-T1"},
	} {
		p := p
		require.NoError(t, performance.Create(ctx, &p))
	}
	return store
}

// fakeCache is a JSON-encoding in-memory CacheRepository.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	c.deleted = append(c.deleted, pattern)
	return removed, nil
}

func newTestCache(repo CacheRepository) *CacheService {
	return NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
}

func requireAppError(t *testing.T, err error, code string) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}
