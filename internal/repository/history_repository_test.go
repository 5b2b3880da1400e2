package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var historyRowColumns = []string{"id", "school_id", "request_id", "parent_name", "student_name", "type", "details", "action", "note", "acted_by", "acted_at", "edit_count", "edit_unlocked"}

func historyRow(editCount int, unlocked bool, note string) *sqlmock.Rows {
	return sqlmock.NewRows(historyRowColumns).
		AddRow("HIS1", "school-1", "REQ1", "Anita Sharma", "Rohan Sharma", "Leave", "Family function", "Approved", note, "principal-1", time.Now(), editCount, unlocked)
}

func TestHistoryRepositoryUpdateNote(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE request_history SET note = $1, edit_count = edit_count + 1 WHERE school_id = $2 AND id = $3 AND edit_count < 2")).
		WithArgs("approved for two days", "school-1", "HIS1").
		WillReturnRows(historyRow(1, false, "approved for two days"))

	item, err := repo.UpdateNote(context.Background(), "school-1", "HIS1", "approved for two days")
	require.NoError(t, err)
	assert.Equal(t, 1, item.EditCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepositoryUpdateNoteGate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE request_history SET note")).
		WillReturnRows(sqlmock.NewRows(historyRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("FROM request_history WHERE school_id = $1 AND id = $2")).
		WithArgs("school-1", "HIS1").
		WillReturnRows(historyRow(2, false, "second edit"))

	_, err := repo.UpdateNote(context.Background(), "school-1", "HIS1", "third edit")
	assert.ErrorIs(t, err, ErrStateConflict)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE request_history SET note")).
		WillReturnRows(sqlmock.NewRows(historyRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("FROM request_history WHERE school_id = $1 AND id = $2")).
		WithArgs("school-1", "HIS404").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.UpdateNote(context.Background(), "school-1", "HIS404", "x")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepositoryUnlock(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE request_history SET edit_count = 0, edit_unlocked = TRUE")).
		WithArgs("school-1", "HIS1").
		WillReturnRows(historyRow(0, true, "second edit"))

	item, err := repo.Unlock(context.Background(), "school-1", "HIS1")
	require.NoError(t, err)
	assert.Equal(t, 0, item.EditCount)
	assert.True(t, item.EditUnlocked)
	require.NoError(t, mock.ExpectationsWereMet())
}
