package models

// SalaryStatus tracks staff payroll state.
type SalaryStatus string

const (
	SalaryStatusPaid    SalaryStatus = "Paid"
	SalaryStatusPending SalaryStatus = "Pending"
)

// StaffSalaryRecord is one month of pay for one staff member.
type StaffSalaryRecord struct {
	ID       string       `db:"id" json:"id"`
	SchoolID string       `db:"school_id" json:"schoolId"`
	Name     string       `db:"name" json:"name"`
	Role     string       `db:"role" json:"role"`
	Month    string       `db:"month" json:"month"`
	Salary   int64        `db:"salary" json:"salary"`
	Status   SalaryStatus `db:"status" json:"status"`
	PaidOn   *Date        `db:"paid_on" json:"paidOn,omitempty"`
}

// SalaryFilter captures list criteria for salary records.
type SalaryFilter struct {
	Search string
	Role   string
	Month  string
	Status string
}
