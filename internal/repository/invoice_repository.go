package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campusconnect-api/internal/models"
)

const invoiceColumns = `id, school_id, student_id, description, amount, due_date, status, paid_on`

// InvoiceRepository persists fee invoices in PostgreSQL.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository constructs an InvoiceRepository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// List returns every invoice of a school ordered by due date.
func (r *InvoiceRepository) List(ctx context.Context, schoolID string) ([]models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE school_id = $1 ORDER BY due_date ASC, id ASC`
	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, schoolID); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// FindByID fetches an invoice by ID within a school.
func (r *InvoiceRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE school_id = $1 AND id = $2`
	var inv models.Invoice
	if err := r.db.GetContext(ctx, &inv, query, schoolID, id); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserts an invoice.
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	const query = `INSERT INTO invoices (id, school_id, student_id, description, amount, due_date, status, paid_on)
VALUES (:id, :school_id, :student_id, :description, :amount, :due_date, :status, :paid_on)`
	if _, err := r.db.NamedExecContext(ctx, query, inv); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

// MarkPaid settles a payable invoice. Already paid invoices yield ErrStateConflict.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, schoolID, id string, paidOn models.Date) (*models.Invoice, error) {
	return markInvoicePaid(ctx, r.db, schoolID, id, paidOn)
}

const settleInvoiceQuery = `UPDATE invoices SET status = 'Paid', paid_on = $1
WHERE school_id = $2 AND id = $3 AND status <> 'Paid'
RETURNING ` + invoiceColumns

func markInvoicePaid(ctx context.Context, q sqlx.QueryerContext, schoolID, id string, paidOn models.Date) (*models.Invoice, error) {
	var inv models.Invoice
	err := sqlx.GetContext(ctx, q, &inv, settleInvoiceQuery, paidOn, schoolID, id)
	if err == nil {
		return &inv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settle invoice: %w", err)
	}
	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS(SELECT 1 FROM invoices WHERE school_id = $1 AND id = $2)`, schoolID, id); err != nil {
		return nil, fmt.Errorf("check invoice: %w", err)
	}
	if !exists {
		return nil, sql.ErrNoRows
	}
	return nil, fmt.Errorf("invoice %s already paid: %w", id, ErrStateConflict)
}
