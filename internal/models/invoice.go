package models

// InvoiceStatus tracks where a fee invoice is in its lifecycle.
type InvoiceStatus string

const (
	InvoiceStatusPaid     InvoiceStatus = "Paid"
	InvoiceStatusPending  InvoiceStatus = "Pending"
	InvoiceStatusOverdue  InvoiceStatus = "Overdue"
	InvoiceStatusUpcoming InvoiceStatus = "Upcoming"
)

// InvoiceStatuses lists every status in display order.
var InvoiceStatuses = []InvoiceStatus{InvoiceStatusPaid, InvoiceStatusPending, InvoiceStatusOverdue, InvoiceStatusUpcoming}

// Payable reports whether an invoice in this status can still be paid.
func (s InvoiceStatus) Payable() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusOverdue || s == InvoiceStatusUpcoming
}

// Invoice is a fee charged to a student. Amounts are integer currency units.
type Invoice struct {
	ID          string        `db:"id" json:"id"`
	SchoolID    string        `db:"school_id" json:"schoolId"`
	StudentID   string        `db:"student_id" json:"studentId"`
	Description string        `db:"description" json:"description"`
	Amount      int64         `db:"amount" json:"amount"`
	DueDate     Date          `db:"due_date" json:"dueDate"`
	Status      InvoiceStatus `db:"status" json:"status"`
	PaidOn      *Date         `db:"paid_on" json:"paidOn,omitempty"`
}

// InvoiceFilter captures list criteria for invoices.
type InvoiceFilter struct {
	Search     string
	Status     string
	StudentID  string
	StudentIDs []string
	From       *Date
	To         *Date
}

// FeeSummary aggregates a school's invoices.
type FeeSummary struct {
	SchoolID    string                  `json:"schoolId"`
	StudentID   string                  `json:"studentId,omitempty"`
	Counts      map[InvoiceStatus]int   `json:"counts"`
	Totals      map[InvoiceStatus]int64 `json:"totals"`
	Collected   int64                   `json:"collected"`
	Outstanding int64                   `json:"outstanding"`
	Invoices    int                     `json:"invoices"`
}
