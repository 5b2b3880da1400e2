package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campusconnect-api/internal/models"
)

const requestColumns = `id, school_id, parent_name, student_id, student_name, type, details, invoice_id, submitted_at`

// ResolveRequestParams describes moving a request from the queue into history.
type ResolveRequestParams struct {
	SchoolID  string
	RequestID string
	Item      models.RequestHistoryItem
	// SettleInvoiceID, when set, is marked paid on PaidOn as part of the move.
	SettleInvoiceID string
	PaidOn          models.Date
}

// RequestRepository persists the parent request queue.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs a RequestRepository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// ListPending returns the school's pending parent requests.
func (r *RequestRepository) ListPending(ctx context.Context, schoolID string) ([]models.ParentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM parent_requests WHERE school_id = $1 ORDER BY submitted_at ASC`
	var rows []models.ParentRequest
	if err := r.db.SelectContext(ctx, &rows, query, schoolID); err != nil {
		return nil, fmt.Errorf("list parent requests: %w", err)
	}
	return rows, nil
}

// FindPending fetches a pending parent request by ID.
func (r *RequestRepository) FindPending(ctx context.Context, schoolID, id string) (*models.ParentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM parent_requests WHERE school_id = $1 AND id = $2`
	var req models.ParentRequest
	if err := r.db.GetContext(ctx, &req, query, schoolID, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// Create inserts a pending parent request.
func (r *RequestRepository) Create(ctx context.Context, req *models.ParentRequest) error {
	const query = `INSERT INTO parent_requests (id, school_id, parent_name, student_id, student_name, type, details, invoice_id, submitted_at)
VALUES (:id, :school_id, :parent_name, :student_id, :student_name, :type, :details, :invoice_id, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create parent request: %w", err)
	}
	return nil
}

// Resolve deletes the queued request, inserts the history item and optionally
// settles the linked invoice inside one transaction.
func (r *RequestRepository) Resolve(ctx context.Context, params ResolveRequestParams) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin resolve request: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM parent_requests WHERE school_id = $1 AND id = $2`, params.SchoolID, params.RequestID)
	if err != nil {
		return fmt.Errorf("dequeue parent request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	if params.SettleInvoiceID != "" {
		_, err = markInvoicePaid(ctx, tx, params.SchoolID, params.SettleInvoiceID, params.PaidOn)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrLinkedInvoiceMissing
		case errors.Is(err, ErrStateConflict):
			err = nil
		case err != nil:
			return err
		}
	}

	const insert = `INSERT INTO request_history (id, school_id, request_id, parent_name, student_name, type, details, action, note, acted_by, acted_at, edit_count, edit_unlocked)
VALUES (:id, :school_id, :request_id, :parent_name, :student_name, :type, :details, :action, :note, :acted_by, :acted_at, :edit_count, :edit_unlocked)`
	if _, err = tx.NamedExecContext(ctx, insert, params.Item); err != nil {
		return fmt.Errorf("record request history: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit resolve request: %w", err)
	}
	return nil
}
