package models

import "time"

// RequestType classifies a parent request.
type RequestType string

const (
	RequestTypeLeave        RequestType = "Leave"
	RequestTypeCertificate  RequestType = "Certificate"
	RequestTypeFeeWaiver    RequestType = "FeeWaiver"
	RequestTypePaymentProof RequestType = "PaymentProof"
)

// RequestAction is the decision recorded when staff act on a request.
type RequestAction string

const (
	RequestActionApproved RequestAction = "Approved"
	RequestActionRejected RequestAction = "Rejected"
)

// MaxFreeEdits is how many times a history note may be edited before the edit gate engages.
// Passing the gate resets the counter and grants another MaxFreeEdits edits.
const MaxFreeEdits = 2

// ParentRequest is a pending request in the active queue.
type ParentRequest struct {
	ID          string      `db:"id" json:"id"`
	SchoolID    string      `db:"school_id" json:"schoolId"`
	ParentName  string      `db:"parent_name" json:"parentName"`
	StudentID   string      `db:"student_id" json:"studentId"`
	StudentName string      `db:"student_name" json:"studentName"`
	Type        RequestType `db:"type" json:"type"`
	Details     string      `db:"details" json:"details"`
	InvoiceID   *string     `db:"invoice_id" json:"invoiceId,omitempty"`
	SubmittedAt time.Time   `db:"submitted_at" json:"submittedAt"`
}

// RequestHistoryItem records a decision taken on a parent request.
type RequestHistoryItem struct {
	ID           string        `db:"id" json:"id"`
	SchoolID     string        `db:"school_id" json:"schoolId"`
	RequestID    string        `db:"request_id" json:"requestId"`
	ParentName   string        `db:"parent_name" json:"parentName"`
	StudentName  string        `db:"student_name" json:"studentName"`
	Type         RequestType   `db:"type" json:"type"`
	Details      string        `db:"details" json:"details"`
	Action       RequestAction `db:"action" json:"action"`
	Note         string        `db:"note" json:"note"`
	ActedBy      string        `db:"acted_by" json:"actedBy"`
	ActedAt      time.Time     `db:"acted_at" json:"actedAt"`
	EditCount    int           `db:"edit_count" json:"editCount"`
	// EditUnlocked records that the edit gate has been passed at least once.
	EditUnlocked bool          `db:"edit_unlocked" json:"editUnlocked"`
}

// CanEdit reports whether the note may be edited without passing the edit gate.
func (h RequestHistoryItem) CanEdit() bool {
	return h.EditCount < MaxFreeEdits
}

// RequestFilter captures list criteria for the active queue.
type RequestFilter struct {
	Search string
	Type   string
}

// HistoryFilter captures list criteria for the request history.
type HistoryFilter struct {
	Search string
	Action string
}
