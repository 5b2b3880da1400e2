package memory

import (
	"context"
	"fmt"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository"
)

// SalaryRepository keeps staff salary records in the in-memory store.
type SalaryRepository struct {
	store *Store
}

// NewSalaryRepository constructs a SalaryRepository.
func NewSalaryRepository(store *Store) *SalaryRepository {
	return &SalaryRepository{store: store}
}

// List returns the school's staff salary records.
func (r *SalaryRepository) List(ctx context.Context, schoolID string) ([]models.StaffSalaryRecord, error) {
	return r.store.salaries.list(schoolID), nil
}

// Create inserts a salary record.
func (r *SalaryRepository) Create(ctx context.Context, rec *models.StaffSalaryRecord) error {
	return r.store.salaries.insert(*rec)
}

// MarkPaid moves a pending salary to paid.
func (r *SalaryRepository) MarkPaid(ctx context.Context, schoolID, id string, paidOn models.Date) (*models.StaffSalaryRecord, error) {
	rec, err := r.store.salaries.update(schoolID, id, func(s *models.StaffSalaryRecord) error {
		if s.Status != models.SalaryStatusPending {
			return fmt.Errorf("salary %s is %s: %w", s.ID, s.Status, repository.ErrStateConflict)
		}
		s.Status = models.SalaryStatusPaid
		s.PaidOn = paidOn.Ptr()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
