package models

// TeacherPerformance holds a teacher's metrics for one term.
// Rates are percentages in [0, 100]; Rating is on a five point scale.
type TeacherPerformance struct {
	ID             string  `db:"id" json:"id"`
	SchoolID       string  `db:"school_id" json:"schoolId"`
	TeacherName    string  `db:"teacher_name" json:"teacherName"`
	Subject        string  `db:"subject" json:"subject"`
	AttendanceRate float64 `db:"attendance_rate" json:"attendanceRate"`
	PassRate       float64 `db:"pass_rate" json:"passRate"`
	Rating         float64 `db:"rating" json:"rating"`
	Term           string  `db:"term" json:"term"`
}

type PerformanceFilter struct {
	Search  string
	Subject string
	Term    string
}

// TeacherRanking is a performance row with its position in the ranking.
type TeacherRanking struct {
	Rank int `json:"rank"`
	TeacherPerformance
}
