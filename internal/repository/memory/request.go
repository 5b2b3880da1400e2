package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository"
)

// RequestRepository keeps pending parent requests in the in-memory store.
type RequestRepository struct {
	store *Store
}

// NewRequestRepository constructs a RequestRepository.
func NewRequestRepository(store *Store) *RequestRepository {
	return &RequestRepository{store: store}
}

// ListPending returns the school's pending parent requests.
func (r *RequestRepository) ListPending(ctx context.Context, schoolID string) ([]models.ParentRequest, error) {
	return r.store.requests.list(schoolID), nil
}

// FindPending fetches a pending parent request by ID.
func (r *RequestRepository) FindPending(ctx context.Context, schoolID, id string) (*models.ParentRequest, error) {
	req, err := r.store.requests.find(schoolID, id)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Create inserts a pending parent request.
func (r *RequestRepository) Create(ctx context.Context, req *models.ParentRequest) error {
	return r.store.requests.insert(*req)
}

// Resolve removes the request from the queue, records the history item and,
// when asked, settles the linked invoice. Either every change applies or none.
func (r *RequestRepository) Resolve(ctx context.Context, params repository.ResolveRequestParams) error {
	s := r.store
	s.requests.mu.Lock()
	defer s.requests.mu.Unlock()
	s.history.mu.Lock()
	defer s.history.mu.Unlock()
	s.invoices.mu.Lock()
	defer s.invoices.mu.Unlock()

	if _, err := s.requests.findLocked(params.SchoolID, params.RequestID); err != nil {
		return err
	}
	if s.history.indexLocked(params.Item.SchoolID, params.Item.ID) >= 0 {
		return fmt.Errorf("duplicate history id %s", params.Item.ID)
	}
	if params.SettleInvoiceID != "" {
		_, err := s.invoices.updateLocked(params.SchoolID, params.SettleInvoiceID, settleInvoice(params.PaidOn))
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return repository.ErrLinkedInvoiceMissing
		case err != nil && !errors.Is(err, repository.ErrStateConflict):
			return err
		}
	}
	if err := s.history.insertLocked(params.Item); err != nil {
		return err
	}
	_, err := s.requests.removeLocked(params.SchoolID, params.RequestID)
	return err
}
