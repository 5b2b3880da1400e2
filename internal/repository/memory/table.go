// Package memory holds tenant-scoped repositories backed by process memory.
// Data lives for the lifetime of the process and is seeded at startup.
package memory

import (
	"database/sql"
	"fmt"
	"sync"
)

// table is an insertion-ordered collection guarded by a RWMutex.
// Methods suffixed Locked expect the caller to hold mu.
type table[T any] struct {
	mu     sync.RWMutex
	rows   []T
	id     func(T) string
	school func(T) string
}

func newTable[T any](id, school func(T) string) *table[T] {
	return &table[T]{id: id, school: school}
}

func (t *table[T]) list(schoolID string) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if t.school(row) == schoolID {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) find(schoolID, id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.findLocked(schoolID, id)
}

func (t *table[T]) findLocked(schoolID, id string) (T, error) {
	if i := t.indexLocked(schoolID, id); i >= 0 {
		return t.rows[i], nil
	}
	var zero T
	return zero, sql.ErrNoRows
}

func (t *table[T]) indexLocked(schoolID, id string) int {
	for i, row := range t.rows {
		if t.id(row) == id && t.school(row) == schoolID {
			return i
		}
	}
	return -1
}

func (t *table[T]) insert(row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.insertLocked(row)
}

func (t *table[T]) insertLocked(row T) error {
	if t.indexLocked(t.school(row), t.id(row)) >= 0 {
		return fmt.Errorf("duplicate id %s", t.id(row))
	}
	t.rows = append(t.rows, row)
	return nil
}

// update applies fn to the stored row. The row is only replaced when fn succeeds.
func (t *table[T]) update(schoolID, id string, fn func(*T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updateLocked(schoolID, id, fn)
}

func (t *table[T]) updateLocked(schoolID, id string, fn func(*T) error) (T, error) {
	var zero T
	i := t.indexLocked(schoolID, id)
	if i < 0 {
		return zero, sql.ErrNoRows
	}
	row := t.rows[i]
	if err := fn(&row); err != nil {
		return zero, err
	}
	t.rows[i] = row
	return row, nil
}

func (t *table[T]) removeLocked(schoolID, id string) (T, error) {
	var zero T
	i := t.indexLocked(schoolID, id)
	if i < 0 {
		return zero, sql.ErrNoRows
	}
	row := t.rows[i]
	t.rows = append(t.rows[:i:i], t.rows[i+1:]...)
	return row, nil
}

// all returns every row regardless of tenant.
func (t *table[T]) all() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]T(nil), t.rows...)
}
