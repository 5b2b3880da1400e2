package service

import (
	"time"

	"go.uber.org/zap"
)

// Repositories are the storage ports the services are built on. The memory and
// postgres drivers both fill every field.
type Repositories struct {
	Invoices    invoiceRepository
	Attendance  attendanceRepository
	Salaries    salaryRepository
	Requests    parentRequestRepository
	History     historyRepository
	Hostel      hostelRepository
	Homework    homeworkRepository
	Performance performanceRepository
	Cache       CacheRepository
}

// ServicesConfig carries the settings the domain services need.
type ServicesConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Services groups the domain services sharing one cache and metrics sink.
type Services struct {
	Cache       *CacheService
	Invoices    *InvoiceService
	Attendance  *AttendanceService
	Salaries    *SalaryService
	Requests    *RequestService
	History     *HistoryService
	Hostel      *HostelService
	Homework    *HomeworkService
	Performance *PerformanceService
	Datasets    *DatasetRegistry
}

// NewServices wires the domain services and registers their datasets for export.
func NewServices(repos Repositories, metrics *MetricsService, logger *zap.Logger, cfg ServicesConfig) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache := NewCacheService(repos.Cache, metrics, cfg.CacheTTL, logger.Named("cache"), cfg.CacheEnabled)
	s := &Services{
		Cache:       cache,
		Invoices:    NewInvoiceService(repos.Invoices, cache, logger.Named("invoices")),
		Attendance:  NewAttendanceService(repos.Attendance, cache, logger.Named("attendance")),
		Salaries:    NewSalaryService(repos.Salaries, logger.Named("salaries")),
		Requests:    NewRequestService(repos.Requests, repos.Invoices, cache, nil, logger.Named("requests")),
		History:     NewHistoryService(repos.History, nil, logger.Named("history")),
		Hostel:      NewHostelService(repos.Hostel),
		Homework:    NewHomeworkService(repos.Homework),
		Performance: NewPerformanceService(repos.Performance),
	}
	s.Datasets = NewDefaultDatasetRegistry(DatasetSources{
		Invoices:    s.Invoices,
		Attendance:  s.Attendance,
		Salaries:    s.Salaries,
		Requests:    s.Requests,
		History:     s.History,
		Hostel:      s.Hostel,
		Homework:    s.Homework,
		Performance: s.Performance,
	})
	return s
}
