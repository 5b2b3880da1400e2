package models

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
	AttendanceStatusHoliday AttendanceStatus = "Holiday"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusHoliday:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one student's attendance for one day. Records are immutable.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	SchoolID  string           `db:"school_id" json:"schoolId"`
	StudentID string           `db:"student_id" json:"studentId"`
	Date      Date             `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Reason    *string          `db:"reason" json:"reason,omitempty"`
	Arrival   *string          `db:"arrival" json:"arrival,omitempty"`
	Departure *string          `db:"departure" json:"departure,omitempty"`
}

// AttendanceFilter captures list criteria for attendance records.
type AttendanceFilter struct {
	StudentID  string
	StudentIDs []string
	Status     string
	From       *Date
	To         *Date
}

// AttendanceSummary counts a student's days by status over a range.
// Percentage is present / (present + absent) * 100; holidays are excluded.
type AttendanceSummary struct {
	StudentID  string  `json:"studentId"`
	From       *Date   `json:"from,omitempty"`
	To         *Date   `json:"to,omitempty"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Holiday    int     `json:"holiday"`
	Percentage float64 `json:"percentage"`
}
