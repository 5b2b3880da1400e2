package repository

import "errors"

var (
	// ErrStateConflict is returned when a conditional write finds the row in a state
	// that no longer permits the change (already paid, edit limit reached).
	ErrStateConflict = errors.New("row state does not permit change")
	// ErrLinkedInvoiceMissing is returned when a payment proof points at an unknown invoice.
	ErrLinkedInvoiceMissing = errors.New("linked invoice not found")
)
