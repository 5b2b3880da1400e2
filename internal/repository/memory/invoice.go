package memory

import (
	"context"
	"fmt"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository"
)

// InvoiceRepository keeps fee invoices in the in-memory store.
type InvoiceRepository struct {
	store *Store
}

// NewInvoiceRepository constructs an InvoiceRepository.
func NewInvoiceRepository(store *Store) *InvoiceRepository {
	return &InvoiceRepository{store: store}
}

// List returns the school's fee invoices.
func (r *InvoiceRepository) List(ctx context.Context, schoolID string) ([]models.Invoice, error) {
	return r.store.invoices.list(schoolID), nil
}

// FindByID fetches an invoice by ID within a school.
func (r *InvoiceRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Invoice, error) {
	inv, err := r.store.invoices.find(schoolID, id)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserts an invoice.
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	return r.store.invoices.insert(*inv)
}

// MarkPaid settles a payable invoice. Already paid invoices yield ErrStateConflict.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, schoolID, id string, paidOn models.Date) (*models.Invoice, error) {
	inv, err := r.store.invoices.update(schoolID, id, settleInvoice(paidOn))
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func settleInvoice(paidOn models.Date) func(*models.Invoice) error {
	return func(inv *models.Invoice) error {
		if !inv.Status.Payable() {
			return fmt.Errorf("invoice %s is %s: %w", inv.ID, inv.Status, repository.ErrStateConflict)
		}
		inv.Status = models.InvoiceStatusPaid
		inv.PaidOn = paidOn.Ptr()
		return nil
	}
}
