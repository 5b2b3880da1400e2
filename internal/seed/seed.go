// Package seed loads the demo dataset used by the memory storage driver.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campusconnect-api/internal/models"
)

type invoiceWriter interface {
	Create(ctx context.Context, inv *models.Invoice) error
}

type attendanceWriter interface {
	Create(ctx context.Context, rec *models.AttendanceRecord) error
}

type salaryWriter interface {
	Create(ctx context.Context, rec *models.StaffSalaryRecord) error
}

type requestWriter interface {
	Create(ctx context.Context, req *models.ParentRequest) error
}

type hostelWriter interface {
	Create(ctx context.Context, a *models.HostelAllocation) error
}

type homeworkWriter interface {
	Create(ctx context.Context, h *models.Homework) error
}

type performanceWriter interface {
	Create(ctx context.Context, p *models.TeacherPerformance) error
}

// Targets are the repositories the dataset is written into.
type Targets struct {
	Invoices    invoiceWriter
	Attendance  attendanceWriter
	Salaries    salaryWriter
	Requests    requestWriter
	Hostel      hostelWriter
	Homework    homeworkWriter
	Performance performanceWriter
}

// Students known to the demo school. Parents and students in tokens reference these IDs.
var Students = []struct {
	ID   string
	Name string
}{
	{"STU1001", "Rohan Sharma"},
	{"STU1002", "Priya Patel"},
	{"STU1003", "Arjun Mehta"},
	{"STU1004", "Sara Khan"},
}

// Load writes the demo dataset for schoolID. anchor is the day attendance is generated back from.
func Load(ctx context.Context, t Targets, schoolID string, anchor models.Date, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	invoices := Invoices(schoolID)
	for i := range invoices {
		if err := t.Invoices.Create(ctx, &invoices[i]); err != nil {
			return fmt.Errorf("seed invoice %s: %w", invoices[i].ID, err)
		}
	}
	attendance := Attendance(schoolID, anchor, 30)
	for i := range attendance {
		if err := t.Attendance.Create(ctx, &attendance[i]); err != nil {
			return fmt.Errorf("seed attendance %s: %w", attendance[i].ID, err)
		}
	}
	salaries := Salaries(schoolID)
	for i := range salaries {
		if err := t.Salaries.Create(ctx, &salaries[i]); err != nil {
			return fmt.Errorf("seed salary %s: %w", salaries[i].ID, err)
		}
	}
	requests := Requests(schoolID, anchor)
	for i := range requests {
		if err := t.Requests.Create(ctx, &requests[i]); err != nil {
			return fmt.Errorf("seed request %s: %w", requests[i].ID, err)
		}
	}
	hostel := Hostel(schoolID)
	for i := range hostel {
		if err := t.Hostel.Create(ctx, &hostel[i]); err != nil {
			return fmt.Errorf("seed hostel %s: %w", hostel[i].ID, err)
		}
	}
	homework := Homework(schoolID, anchor)
	for i := range homework {
		if err := t.Homework.Create(ctx, &homework[i]); err != nil {
			return fmt.Errorf("seed homework %s: %w", homework[i].ID, err)
		}
	}
	performance := Performance(schoolID)
	for i := range performance {
		if err := t.Performance.Create(ctx, &performance[i]); err != nil {
			return fmt.Errorf("seed performance %s: %w", performance[i].ID, err)
		}
	}

	logger.Info("seed data loaded",
		zap.String("school_id", schoolID),
		zap.Int("invoices", len(invoices)),
		zap.Int("attendance", len(attendance)),
		zap.Int("salaries", len(salaries)),
		zap.Int("requests", len(requests)),
	)
	return nil
}

func Invoices(schoolID string) []models.Invoice {
	paid := func(d string) *models.Date { return models.MustDate(d).Ptr() }
	return []models.Invoice{
		{ID: "INV1001", SchoolID: schoolID, StudentID: "STU1001", Description: "Tuition Fee - July", Amount: 12000, DueDate: models.MustDate("2024-07-05"), Status: models.InvoiceStatusPaid, PaidOn: paid("2024-07-02")},
		{ID: "INV1002", SchoolID: schoolID, StudentID: "STU1001", Description: "Bus Fee - July", Amount: 2500, DueDate: models.MustDate("2024-07-10"), Status: models.InvoiceStatusPending},
		{ID: "INV1003", SchoolID: schoolID, StudentID: "STU1001", Description: "Library Fee", Amount: 500, DueDate: models.MustDate("2024-06-15"), Status: models.InvoiceStatusOverdue},
		{ID: "INV1004", SchoolID: schoolID, StudentID: "STU1001", Description: "Tuition Fee - August", Amount: 12000, DueDate: models.MustDate("2024-08-05"), Status: models.InvoiceStatusUpcoming},
		{ID: "INV1005", SchoolID: schoolID, StudentID: "STU1002", Description: "Tuition Fee - July", Amount: 12000, DueDate: models.MustDate("2024-07-05"), Status: models.InvoiceStatusPending},
		{ID: "INV1006", SchoolID: schoolID, StudentID: "STU1002", Description: `Science Lab "Kit" Fee`, Amount: 1500, DueDate: models.MustDate("2024-07-20"), Status: models.InvoiceStatusPaid, PaidOn: paid("2024-07-18")},
		{ID: "INV1007", SchoolID: schoolID, StudentID: "STU1003", Description: "Hostel Fee, Term 1", Amount: 18000, DueDate: models.MustDate("2024-06-30"), Status: models.InvoiceStatusOverdue},
		{ID: "INV1008", SchoolID: schoolID, StudentID: "STU1004", Description: "Sports Fee", Amount: 800, DueDate: models.MustDate("2024-08-15"), Status: models.InvoiceStatusUpcoming},
	}
}

// Attendance generates days records per student ending at anchor. Sundays are holidays.
func Attendance(schoolID string, anchor models.Date, days int) []models.AttendanceRecord {
	reasons := []string{"Fever", "Family function", "Medical appointment"}
	out := make([]models.AttendanceRecord, 0, days*len(Students))
	for si, student := range Students {
		for d := days - 1; d >= 0; d-- {
			date := models.NewDate(anchor.AddDate(0, 0, -d))
			rec := models.AttendanceRecord{
				ID:        fmt.Sprintf("ATT-%s-%s", student.ID, date.Format("20060102")),
				SchoolID:  schoolID,
				StudentID: student.ID,
				Date:      date,
			}
			switch {
			case date.Weekday() == time.Sunday:
				rec.Status = models.AttendanceStatusHoliday
			case (date.YearDay()+si*3)%9 == 0:
				rec.Status = models.AttendanceStatusAbsent
				reason := reasons[(date.YearDay()+si)%len(reasons)]
				rec.Reason = &reason
			default:
				rec.Status = models.AttendanceStatusPresent
				arrival := fmt.Sprintf("08:%02d", (date.YearDay()*7+si*11)%30)
				departure := "14:30"
				rec.Arrival = &arrival
				rec.Departure = &departure
			}
			out = append(out, rec)
		}
	}
	return out
}

func Salaries(schoolID string) []models.StaffSalaryRecord {
	paid := models.MustDate("2024-06-30").Ptr()
	return []models.StaffSalaryRecord{
		{ID: "SAL001", SchoolID: schoolID, Name: "Meera Iyer", Role: "Teacher", Month: "2024-06", Salary: 45000, Status: models.SalaryStatusPaid, PaidOn: paid},
		{ID: "SAL002", SchoolID: schoolID, Name: "Rahul Verma", Role: "Teacher", Month: "2024-06", Salary: 42000, Status: models.SalaryStatusPaid, PaidOn: paid},
		{ID: "SAL003", SchoolID: schoolID, Name: "Sunita Rao", Role: "Principal", Month: "2024-07", Salary: 90000, Status: models.SalaryStatusPending},
		{ID: "SAL004", SchoolID: schoolID, Name: "Meera Iyer", Role: "Teacher", Month: "2024-07", Salary: 45000, Status: models.SalaryStatusPending},
		{ID: "SAL005", SchoolID: schoolID, Name: "Rahul Verma", Role: "Teacher", Month: "2024-07", Salary: 42000, Status: models.SalaryStatusPending},
		{ID: "SAL006", SchoolID: schoolID, Name: "Kiran Das", Role: "Accountant", Month: "2024-07", Salary: 38000, Status: models.SalaryStatusPending},
		{ID: "SAL007", SchoolID: schoolID, Name: "Vikram Singh", Role: "Warden", Month: "2024-07", Salary: 30000, Status: models.SalaryStatusPending},
	}
}

func Requests(schoolID string, anchor models.Date) []models.ParentRequest {
	at := func(daysAgo, hour int) time.Time {
		return anchor.AddDate(0, 0, -daysAgo).Add(time.Duration(hour) * time.Hour)
	}
	proofFor := "INV1002"
	return []models.ParentRequest{
		{ID: "REQ001", SchoolID: schoolID, ParentName: "Anita Sharma", StudentID: "STU1001", StudentName: "Rohan Sharma", Type: models.RequestTypePaymentProof, Details: "Paid bus fee via bank transfer, ref TXN88421", InvoiceID: &proofFor, SubmittedAt: at(1, 10)},
		{ID: "REQ002", SchoolID: schoolID, ParentName: "Nikhil Patel", StudentID: "STU1002", StudentName: "Priya Patel", Type: models.RequestTypeLeave, Details: "Leave for 3 days, family wedding", SubmittedAt: at(2, 9)},
		{ID: "REQ003", SchoolID: schoolID, ParentName: "Farah Khan", StudentID: "STU1004", StudentName: "Sara Khan", Type: models.RequestTypeCertificate, Details: "Bonafide certificate for passport", SubmittedAt: at(3, 15)},
		{ID: "REQ004", SchoolID: schoolID, ParentName: "Deepak Mehta", StudentID: "STU1003", StudentName: "Arjun Mehta", Type: models.RequestTypeFeeWaiver, Details: "Request 50% hostel fee waiver, single income household", SubmittedAt: at(4, 11)},
	}
}

func Hostel(schoolID string) []models.HostelAllocation {
	allocated := models.MustDate("2024-04-01")
	return []models.HostelAllocation{
		{ID: "HST001", SchoolID: schoolID, StudentID: "STU1003", StudentName: "Arjun Mehta", Hostel: "Boys Hostel A", Room: "101", Bed: "A", Status: models.BedStatusOccupied, Fee: 18000, AllocatedOn: allocated},
		{ID: "HST002", SchoolID: schoolID, StudentID: "STU1001", StudentName: "Rohan Sharma", Hostel: "Boys Hostel A", Room: "101", Bed: "B", Status: models.BedStatusOccupied, Fee: 18000, AllocatedOn: allocated},
		{ID: "HST003", SchoolID: schoolID, Hostel: "Boys Hostel A", Room: "102", Bed: "A", Status: models.BedStatusVacant, Fee: 18000},
		{ID: "HST004", SchoolID: schoolID, StudentID: "STU1004", StudentName: "Sara Khan", Hostel: "Girls Hostel B", Room: "201", Bed: "A", Status: models.BedStatusOccupied, Fee: 20000, AllocatedOn: allocated},
		{ID: "HST005", SchoolID: schoolID, StudentID: "STU1002", StudentName: "Priya Patel", Hostel: "Girls Hostel B", Room: "201", Bed: "B", Status: models.BedStatusReserved, Fee: 20000, AllocatedOn: models.MustDate("2024-07-15")},
	}
}

func Homework(schoolID string, anchor models.Date) []models.Homework {
	day := func(offset int) models.Date { return models.NewDate(anchor.AddDate(0, 0, offset)) }
	return []models.Homework{
		{ID: "HW001", SchoolID: schoolID, ClassName: "10-A", Subject: "Mathematics", Title: "Quadratic equations worksheet", TeacherName: "Meera Iyer", AssignedOn: day(-7), DueDate: day(-2), Status: models.HomeworkStatusGraded},
		{ID: "HW002", SchoolID: schoolID, ClassName: "10-A", Subject: "Physics", Title: "Ray optics numericals", TeacherName: "Rahul Verma", AssignedOn: day(-3), DueDate: day(2), Status: models.HomeworkStatusAssigned},
		{ID: "HW003", SchoolID: schoolID, ClassName: "9-B", Subject: "English", Title: "Essay: My favourite book", TeacherName: "Sunita Rao", AssignedOn: day(-5), DueDate: day(-1), Status: models.HomeworkStatusLate},
		{ID: "HW004", SchoolID: schoolID, ClassName: "9-B", Subject: "Mathematics", Title: "Linear equations, exercise 4.2", TeacherName: "Meera Iyer", AssignedOn: day(-2), DueDate: day(3), Status: models.HomeworkStatusSubmitted},
	}
}

func Performance(schoolID string) []models.TeacherPerformance {
	return []models.TeacherPerformance{
		{ID: "TCH001", SchoolID: schoolID, TeacherName: "Meera Iyer", Subject: "Mathematics", AttendanceRate: 97.5, PassRate: 92, Rating: 4.7, Term: "2024-T1"},
		{ID: "TCH002", SchoolID: schoolID, TeacherName: "Rahul Verma", Subject: "Physics", AttendanceRate: 94, PassRate: 85.5, Rating: 4.2, Term: "2024-T1"},
		{ID: "TCH003", SchoolID: schoolID, TeacherName: "Sunita Rao", Subject: "English", AttendanceRate: 99, PassRate: 95, Rating: 4.8, Term: "2024-T1"},
		{ID: "TCH004", SchoolID: schoolID, TeacherName: "Anil Kapoor", Subject: "Chemistry", AttendanceRate: 88, PassRate: 78, Rating: 3.9, Term: "2024-T1"},
		{ID: "TCH005", SchoolID: schoolID, TeacherName: "Leela Nair", Subject: "Biology", AttendanceRate: 92.5, PassRate: 88, Rating: 4.2, Term: "2024-T1"},
	}
}
