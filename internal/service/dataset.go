package service

import (
	"context"
	"net/url"
	"slices"
	"strings"

	"github.com/noah-isme/campusconnect-api/internal/models"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/export"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

// NamedDataset is an export-ready table with the names used for its file and title.
type NamedDataset struct {
	Subject   string
	Qualifier string
	Title     string
	Data      export.Dataset
}

// Filename returns "<subject>_<qualifier>.<ext>".
func (n *NamedDataset) Filename(format models.ReportFormat) string {
	return export.Filename(n.Subject, n.Qualifier, string(format))
}

// DatasetBuilder produces the filtered, sorted rows of one resource as a dataset.
// Filters carry the same keys as the resource's list query string.
type DatasetBuilder func(ctx context.Context, scope models.Scope, filters url.Values) (*NamedDataset, error)

type registeredDataset struct {
	build DatasetBuilder
	roles []models.UserRole
}

// DatasetRegistry maps report types to builders and the roles allowed to pull them.
// Direct exports and asynchronous report jobs share it.
type DatasetRegistry struct {
	datasets map[models.ReportType]registeredDataset
}

// NewDatasetRegistry constructs an empty registry.
func NewDatasetRegistry() *DatasetRegistry {
	return &DatasetRegistry{datasets: make(map[models.ReportType]registeredDataset)}
}

// Register binds a builder; with no roles every authenticated role may use it.
func (r *DatasetRegistry) Register(t models.ReportType, build DatasetBuilder, roles ...models.UserRole) {
	r.datasets[t] = registeredDataset{build: build, roles: roles}
}

// Types lists the registered report types in declaration order.
func (r *DatasetRegistry) Types() []models.ReportType {
	types := make([]models.ReportType, 0, len(r.datasets))
	for _, t := range models.ReportTypes {
		if _, ok := r.datasets[t]; ok {
			types = append(types, t)
		}
	}
	return types
}

// Authorize checks that the type is known and open to role.
func (r *DatasetRegistry) Authorize(t models.ReportType, role models.UserRole) error {
	entry, ok := r.datasets[t]
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported report type")
	}
	if len(entry.roles) > 0 && !slices.Contains(entry.roles, role) {
		return appErrors.Clone(appErrors.ErrForbidden, "report not available for role")
	}
	return nil
}

// Build authorizes and builds the dataset for t.
func (r *DatasetRegistry) Build(ctx context.Context, t models.ReportType, scope models.Scope, filters url.Values) (*NamedDataset, error) {
	if err := r.Authorize(t, scope.Role); err != nil {
		return nil, err
	}
	if filters == nil {
		filters = url.Values{}
	}
	return r.datasets[t].build(ctx, scope, filters)
}

func tabulate[T any](columns []export.Column, rows []T, record func(T) export.Record) export.Dataset {
	records := make([]export.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, record(row))
	}
	return export.Dataset{Columns: columns, Rows: records}
}

func exportSort(filters url.Values) (listing.SortState, error) {
	q, err := listing.ParseQuery(filters, listing.SortState{})
	if err != nil {
		return listing.SortState{}, validationErr(err, "invalid sort parameters")
	}
	return q.Sort, nil
}

// qualifier names the file after the active filters, or "all".
func qualifier(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && !strings.EqualFold(p, "all") {
			kept = append(kept, strings.ToLower(p))
		}
	}
	if len(kept) == 0 {
		return "all"
	}
	return strings.Join(kept, "-")
}

// DatasetSources groups the services whose rows can be exported.
type DatasetSources struct {
	Invoices    *InvoiceService
	Attendance  *AttendanceService
	Salaries    *SalaryService
	Requests    *RequestService
	History     *HistoryService
	Hostel      *HostelService
	Homework    *HomeworkService
	Performance *PerformanceService
}

// Role groups used for dataset access. Row-level scoping (parents and students
// only see their own children) is applied by each builder.
var (
	LeadershipRoles = []models.UserRole{models.RoleSuperAdmin, models.RolePrincipal}
	StaffRoles      = []models.UserRole{models.RoleSuperAdmin, models.RolePrincipal, models.RoleTeacher}
)

// NewDefaultDatasetRegistry registers every exportable resource.
func NewDefaultDatasetRegistry(src DatasetSources) *DatasetRegistry {
	r := NewDatasetRegistry()
	r.Register(models.ReportTypeFeeInvoices, src.Invoices.Dataset)
	r.Register(models.ReportTypeAttendance, src.Attendance.Dataset)
	r.Register(models.ReportTypeSalary, src.Salaries.Dataset, LeadershipRoles...)
	r.Register(models.ReportTypeParentRequests, src.Requests.Dataset, LeadershipRoles...)
	r.Register(models.ReportTypeRequestHistory, src.History.Dataset, LeadershipRoles...)
	r.Register(models.ReportTypeHostelAllocations, src.Hostel.Dataset, StaffRoles...)
	r.Register(models.ReportTypeHomework, src.Homework.Dataset)
	r.Register(models.ReportTypeTeacherGrowth, src.Performance.GrowthDataset, LeadershipRoles...)
	r.Register(models.ReportTypeTeacherComparison, src.Performance.ComparisonDataset, LeadershipRoles...)
	return r
}
