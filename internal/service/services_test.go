package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository/memory"
)

func memoryRepositories(store *memory.Store, cache CacheRepository) Repositories {
	return Repositories{
		Invoices:    memory.NewInvoiceRepository(store),
		Attendance:  memory.NewAttendanceRepository(store),
		Salaries:    memory.NewSalaryRepository(store),
		Requests:    memory.NewRequestRepository(store),
		History:     memory.NewHistoryRepository(store),
		Hostel:      memory.NewHostelRepository(store),
		Homework:    memory.NewHomeworkRepository(store),
		Performance: memory.NewPerformanceRepository(store),
		Cache:       cache,
	}
}

func TestNewServicesRegistersEveryDataset(t *testing.T) {
	svcs := NewServices(memoryRepositories(testStore(t), nil), NewMetricsService(), nil, ServicesConfig{CacheEnabled: true})

	assert.Equal(t, models.ReportTypes, svcs.Datasets.Types())
	assert.False(t, svcs.Cache.Enabled(), "cache without a backend stays off")
}

func TestNewServicesShareOneCache(t *testing.T) {
	backend := newFakeCache()
	svcs := NewServices(memoryRepositories(testStore(t), backend), NewMetricsService(), nil, ServicesConfig{CacheEnabled: true, CacheTTL: time.Minute})
	ctx := context.Background()

	_, hit, err := svcs.Invoices.Summary(ctx, principal, "")
	require.NoError(t, err)
	assert.False(t, hit)

	_, err = svcs.Requests.Act(ctx, principal, "REQ1", dto.ActOnRequest{Action: models.RequestActionApproved, Note: "Receipt verified"})
	require.NoError(t, err)
	assert.Contains(t, backend.deleted, "campusconnect:school-1:fees:*")

	_, hit, err = svcs.Invoices.Summary(ctx, principal, "")
	require.NoError(t, err)
	assert.False(t, hit, "approval of a payment proof drops cached fee summaries")
}
