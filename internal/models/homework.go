package models

// HomeworkStatus tracks an assignment through submission and grading.
type HomeworkStatus string

const (
	HomeworkStatusAssigned  HomeworkStatus = "Assigned"
	HomeworkStatusSubmitted HomeworkStatus = "Submitted"
	HomeworkStatusGraded    HomeworkStatus = "Graded"
	HomeworkStatusLate      HomeworkStatus = "Late"
)

type Homework struct {
	ID          string         `db:"id" json:"id"`
	SchoolID    string         `db:"school_id" json:"schoolId"`
	ClassName   string         `db:"class_name" json:"className"`
	Subject     string         `db:"subject" json:"subject"`
	Title       string         `db:"title" json:"title"`
	TeacherName string         `db:"teacher_name" json:"teacherName"`
	AssignedOn  Date           `db:"assigned_on" json:"assignedOn"`
	DueDate     Date           `db:"due_date" json:"dueDate"`
	Status      HomeworkStatus `db:"status" json:"status"`
}

type HomeworkFilter struct {
	Search    string
	ClassName string
	Subject   string
	Status    string
	From      *Date
	To        *Date
}
