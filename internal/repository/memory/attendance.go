package memory

import (
	"context"

	"github.com/noah-isme/campusconnect-api/internal/models"
)

// AttendanceRepository keeps attendance records in the in-memory store.
type AttendanceRepository struct {
	store *Store
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(store *Store) *AttendanceRepository {
	return &AttendanceRepository{store: store}
}

// List returns the school's attendance records.
func (r *AttendanceRepository) List(ctx context.Context, schoolID string) ([]models.AttendanceRecord, error) {
	return r.store.attendance.list(schoolID), nil
}

// Create inserts an attendance record.
func (r *AttendanceRepository) Create(ctx context.Context, rec *models.AttendanceRecord) error {
	return r.store.attendance.insert(*rec)
}
