package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campusconnect-api/internal/models"
)

const salaryColumns = `id, school_id, name, role, month, salary, status, paid_on`

// SalaryRepository persists staff payroll rows.
type SalaryRepository struct {
	db *sqlx.DB
}

// NewSalaryRepository constructs a SalaryRepository.
func NewSalaryRepository(db *sqlx.DB) *SalaryRepository {
	return &SalaryRepository{db: db}
}

// List returns the school's staff salary records.
func (r *SalaryRepository) List(ctx context.Context, schoolID string) ([]models.StaffSalaryRecord, error) {
	query := `SELECT ` + salaryColumns + ` FROM staff_salaries WHERE school_id = $1 ORDER BY month DESC, name ASC`
	var rows []models.StaffSalaryRecord
	if err := r.db.SelectContext(ctx, &rows, query, schoolID); err != nil {
		return nil, fmt.Errorf("list salaries: %w", err)
	}
	return rows, nil
}

// Create inserts a salary record.
func (r *SalaryRepository) Create(ctx context.Context, rec *models.StaffSalaryRecord) error {
	const query = `INSERT INTO staff_salaries (id, school_id, name, role, month, salary, status, paid_on)
VALUES (:id, :school_id, :name, :role, :month, :salary, :status, :paid_on)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create salary: %w", err)
	}
	return nil
}

// MarkPaid moves a pending salary to paid.
func (r *SalaryRepository) MarkPaid(ctx context.Context, schoolID, id string, paidOn models.Date) (*models.StaffSalaryRecord, error) {
	query := `UPDATE staff_salaries SET status = 'Paid', paid_on = $1
WHERE school_id = $2 AND id = $3 AND status = 'Pending'
RETURNING ` + salaryColumns
	var rec models.StaffSalaryRecord
	err := r.db.GetContext(ctx, &rec, query, paidOn, schoolID, id)
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pay salary: %w", err)
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM staff_salaries WHERE school_id = $1 AND id = $2)`, schoolID, id); err != nil {
		return nil, fmt.Errorf("check salary: %w", err)
	}
	if !exists {
		return nil, sql.ErrNoRows
	}
	return nil, fmt.Errorf("salary %s already paid: %w", id, ErrStateConflict)
}
