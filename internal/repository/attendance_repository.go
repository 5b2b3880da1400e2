package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campusconnect-api/internal/models"
)

// AttendanceRepository reads daily attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns the school's attendance records.
func (r *AttendanceRepository) List(ctx context.Context, schoolID string) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, school_id, student_id, date, status, reason, arrival, departure
FROM attendance_records WHERE school_id = $1 ORDER BY date ASC, student_id ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, schoolID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// Create inserts an attendance record.
func (r *AttendanceRepository) Create(ctx context.Context, rec *models.AttendanceRecord) error {
	const query = `INSERT INTO attendance_records (id, school_id, student_id, date, status, reason, arrival, departure)
VALUES (:id, :school_id, :student_id, :date, :status, :reason, :arrival, :departure)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}
