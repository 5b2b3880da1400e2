package memory

import (
	"context"
	"fmt"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository"
)

// HistoryRepository keeps resolved request history in the in-memory store.
type HistoryRepository struct {
	store *Store
}

// NewHistoryRepository constructs a HistoryRepository.
func NewHistoryRepository(store *Store) *HistoryRepository {
	return &HistoryRepository{store: store}
}

// List returns the school's resolved request history.
func (r *HistoryRepository) List(ctx context.Context, schoolID string) ([]models.RequestHistoryItem, error) {
	return r.store.history.list(schoolID), nil
}

// FindByID fetches a history item by ID within a school.
func (r *HistoryRepository) FindByID(ctx context.Context, schoolID, id string) (*models.RequestHistoryItem, error) {
	item, err := r.store.history.find(schoolID, id)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateNote edits the note while the edit allowance lasts.
func (r *HistoryRepository) UpdateNote(ctx context.Context, schoolID, id, note string) (*models.RequestHistoryItem, error) {
	item, err := r.store.history.update(schoolID, id, func(h *models.RequestHistoryItem) error {
		if !h.CanEdit() {
			return fmt.Errorf("history %s edited %d times: %w", h.ID, h.EditCount, repository.ErrStateConflict)
		}
		h.Note = note
		h.EditCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Unlock passes the edit gate, restoring the edit allowance.
func (r *HistoryRepository) Unlock(ctx context.Context, schoolID, id string) (*models.RequestHistoryItem, error) {
	item, err := r.store.history.update(schoolID, id, func(h *models.RequestHistoryItem) error {
		h.EditCount = 0
		h.EditUnlocked = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}
