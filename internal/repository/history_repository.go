package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campusconnect-api/internal/models"
)

const historyColumns = `id, school_id, request_id, parent_name, student_name, type, details, action, note, acted_by, acted_at, edit_count, edit_unlocked`

// HistoryRepository persists decisions taken on parent requests.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs a HistoryRepository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// List returns the school's resolved request history.
func (r *HistoryRepository) List(ctx context.Context, schoolID string) ([]models.RequestHistoryItem, error) {
	query := `SELECT ` + historyColumns + ` FROM request_history WHERE school_id = $1 ORDER BY acted_at DESC`
	var rows []models.RequestHistoryItem
	if err := r.db.SelectContext(ctx, &rows, query, schoolID); err != nil {
		return nil, fmt.Errorf("list request history: %w", err)
	}
	return rows, nil
}

// FindByID fetches a history item by ID within a school.
func (r *HistoryRepository) FindByID(ctx context.Context, schoolID, id string) (*models.RequestHistoryItem, error) {
	query := `SELECT ` + historyColumns + ` FROM request_history WHERE school_id = $1 AND id = $2`
	var item models.RequestHistoryItem
	if err := r.db.GetContext(ctx, &item, query, schoolID, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateNote edits the note while the edit allowance lasts.
func (r *HistoryRepository) UpdateNote(ctx context.Context, schoolID, id, note string) (*models.RequestHistoryItem, error) {
	query := fmt.Sprintf(`UPDATE request_history SET note = $1, edit_count = edit_count + 1
WHERE school_id = $2 AND id = $3 AND edit_count < %d
RETURNING `+historyColumns, models.MaxFreeEdits)
	var item models.RequestHistoryItem
	err := r.db.GetContext(ctx, &item, query, note, schoolID, id)
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update history note: %w", err)
	}
	if _, findErr := r.FindByID(ctx, schoolID, id); findErr != nil {
		return nil, findErr
	}
	return nil, fmt.Errorf("history %s edit limit reached: %w", id, ErrStateConflict)
}

// Unlock passes the edit gate, restoring the edit allowance.
func (r *HistoryRepository) Unlock(ctx context.Context, schoolID, id string) (*models.RequestHistoryItem, error) {
	query := `UPDATE request_history SET edit_count = 0, edit_unlocked = TRUE
WHERE school_id = $1 AND id = $2
RETURNING ` + historyColumns
	var item models.RequestHistoryItem
	if err := r.db.GetContext(ctx, &item, query, schoolID, id); err != nil {
		return nil, err
	}
	return &item, nil
}
