package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campusconnect-api/internal/models"
)

// HostelRepository reads hostel bed allocations.
type HostelRepository struct {
	db *sqlx.DB
}

// NewHostelRepository constructs a HostelRepository.
func NewHostelRepository(db *sqlx.DB) *HostelRepository {
	return &HostelRepository{db: db}
}

// List returns the school's hostel allocations.
func (r *HostelRepository) List(ctx context.Context, schoolID string) ([]models.HostelAllocation, error) {
	const query = `SELECT id, school_id, student_id, student_name, hostel, room, bed, status, fee, allocated_on
FROM hostel_allocations WHERE school_id = $1 ORDER BY hostel ASC, room ASC, bed ASC`
	var rows []models.HostelAllocation
	if err := r.db.SelectContext(ctx, &rows, query, schoolID); err != nil {
		return nil, fmt.Errorf("list hostel allocations: %w", err)
	}
	return rows, nil
}

// Create inserts a hostel allocation.
func (r *HostelRepository) Create(ctx context.Context, a *models.HostelAllocation) error {
	const query = `INSERT INTO hostel_allocations (id, school_id, student_id, student_name, hostel, room, bed, status, fee, allocated_on)
VALUES (:id, :school_id, :student_id, :student_name, :hostel, :room, :bed, :status, :fee, :allocated_on)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create hostel allocation: %w", err)
	}
	return nil
}

// HomeworkRepository reads homework assignments.
type HomeworkRepository struct {
	db *sqlx.DB
}

// NewHomeworkRepository constructs a HomeworkRepository.
func NewHomeworkRepository(db *sqlx.DB) *HomeworkRepository {
	return &HomeworkRepository{db: db}
}

// List returns the school's homework assignments.
func (r *HomeworkRepository) List(ctx context.Context, schoolID string) ([]models.Homework, error) {
	const query = `SELECT id, school_id, class_name, subject, title, teacher_name, assigned_on, due_date, status
FROM homework WHERE school_id = $1 ORDER BY due_date ASC`
	var rows []models.Homework
	if err := r.db.SelectContext(ctx, &rows, query, schoolID); err != nil {
		return nil, fmt.Errorf("list homework: %w", err)
	}
	return rows, nil
}

// Create inserts a homework assignment.
func (r *HomeworkRepository) Create(ctx context.Context, h *models.Homework) error {
	const query = `INSERT INTO homework (id, school_id, class_name, subject, title, teacher_name, assigned_on, due_date, status)
VALUES (:id, :school_id, :class_name, :subject, :title, :teacher_name, :assigned_on, :due_date, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, h); err != nil {
		return fmt.Errorf("create homework: %w", err)
	}
	return nil
}

// PerformanceRepository reads teacher performance metrics.
type PerformanceRepository struct {
	db *sqlx.DB
}

// NewPerformanceRepository constructs a PerformanceRepository.
func NewPerformanceRepository(db *sqlx.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// List returns the school's teacher performance rows.
func (r *PerformanceRepository) List(ctx context.Context, schoolID string) ([]models.TeacherPerformance, error) {
	const query = `SELECT id, school_id, teacher_name, subject, attendance_rate, pass_rate, rating, term
FROM teacher_performance WHERE school_id = $1 ORDER BY teacher_name ASC`
	var rows []models.TeacherPerformance
	if err := r.db.SelectContext(ctx, &rows, query, schoolID); err != nil {
		return nil, fmt.Errorf("list teacher performance: %w", err)
	}
	return rows, nil
}

// Create inserts a teacher performance row.
func (r *PerformanceRepository) Create(ctx context.Context, p *models.TeacherPerformance) error {
	const query = `INSERT INTO teacher_performance (id, school_id, teacher_name, subject, attendance_rate, pass_rate, rating, term)
VALUES (:id, :school_id, :teacher_name, :subject, :attendance_rate, :pass_rate, :rating, :term)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create teacher performance: %w", err)
	}
	return nil
}
