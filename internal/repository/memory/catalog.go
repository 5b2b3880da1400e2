package memory

import (
	"context"

	"github.com/noah-isme/campusconnect-api/internal/models"
)

// HostelRepository keeps hostel allocations in the in-memory store.
type HostelRepository struct {
	store *Store
}

// NewHostelRepository constructs a HostelRepository.
func NewHostelRepository(store *Store) *HostelRepository {
	return &HostelRepository{store: store}
}

// List returns the school's hostel allocations.
func (r *HostelRepository) List(ctx context.Context, schoolID string) ([]models.HostelAllocation, error) {
	return r.store.hostel.list(schoolID), nil
}

// Create inserts a hostel allocation.
func (r *HostelRepository) Create(ctx context.Context, a *models.HostelAllocation) error {
	return r.store.hostel.insert(*a)
}

// HomeworkRepository keeps homework assignments in the in-memory store.
type HomeworkRepository struct {
	store *Store
}

// NewHomeworkRepository constructs a HomeworkRepository.
func NewHomeworkRepository(store *Store) *HomeworkRepository {
	return &HomeworkRepository{store: store}
}

// List returns the school's homework assignments.
func (r *HomeworkRepository) List(ctx context.Context, schoolID string) ([]models.Homework, error) {
	return r.store.homework.list(schoolID), nil
}

// Create inserts a homework assignment.
func (r *HomeworkRepository) Create(ctx context.Context, h *models.Homework) error {
	return r.store.homework.insert(*h)
}

// PerformanceRepository keeps teacher performance rows in the in-memory store.
type PerformanceRepository struct {
	store *Store
}

// NewPerformanceRepository constructs a PerformanceRepository.
func NewPerformanceRepository(store *Store) *PerformanceRepository {
	return &PerformanceRepository{store: store}
}

// List returns the school's teacher performance rows.
func (r *PerformanceRepository) List(ctx context.Context, schoolID string) ([]models.TeacherPerformance, error) {
	return r.store.performance.list(schoolID), nil
}

// Create inserts a teacher performance row.
func (r *PerformanceRepository) Create(ctx context.Context, p *models.TeacherPerformance) error {
	return r.store.performance.insert(*p)
}
