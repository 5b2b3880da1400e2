package memory

import "github.com/noah-isme/campusconnect-api/internal/models"

// Store owns every in-memory table. Repositories are thin views over it.
type Store struct {
	invoices    *table[models.Invoice]
	attendance  *table[models.AttendanceRecord]
	salaries    *table[models.StaffSalaryRecord]
	requests    *table[models.ParentRequest]
	history     *table[models.RequestHistoryItem]
	hostel      *table[models.HostelAllocation]
	homework    *table[models.Homework]
	performance *table[models.TeacherPerformance]
	reports     *table[models.ReportJob]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		invoices: newTable(
			func(r models.Invoice) string { return r.ID },
			func(r models.Invoice) string { return r.SchoolID }),
		attendance: newTable(
			func(r models.AttendanceRecord) string { return r.ID },
			func(r models.AttendanceRecord) string { return r.SchoolID }),
		salaries: newTable(
			func(r models.StaffSalaryRecord) string { return r.ID },
			func(r models.StaffSalaryRecord) string { return r.SchoolID }),
		requests: newTable(
			func(r models.ParentRequest) string { return r.ID },
			func(r models.ParentRequest) string { return r.SchoolID }),
		history: newTable(
			func(r models.RequestHistoryItem) string { return r.ID },
			func(r models.RequestHistoryItem) string { return r.SchoolID }),
		hostel: newTable(
			func(r models.HostelAllocation) string { return r.ID },
			func(r models.HostelAllocation) string { return r.SchoolID }),
		homework: newTable(
			func(r models.Homework) string { return r.ID },
			func(r models.Homework) string { return r.SchoolID }),
		performance: newTable(
			func(r models.TeacherPerformance) string { return r.ID },
			func(r models.TeacherPerformance) string { return r.SchoolID }),
		// Report jobs are looked up by ID alone; the service checks tenancy.
		reports: newTable(
			func(r models.ReportJob) string { return r.ID },
			func(r models.ReportJob) string { return "" }),
	}
}
