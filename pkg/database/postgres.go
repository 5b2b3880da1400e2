package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/campusconnect-api/pkg/config"
)

// DSN renders the lib/pq connection string for cfg.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the tables used by the postgres repositories when they are missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		student_id TEXT NOT NULL,
		description TEXT NOT NULL,
		amount BIGINT NOT NULL,
		due_date DATE NOT NULL,
		status TEXT NOT NULL,
		paid_on DATE
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_records (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		student_id TEXT NOT NULL,
		date DATE NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		arrival TEXT,
		departure TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS staff_salaries (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		month TEXT NOT NULL,
		salary BIGINT NOT NULL,
		status TEXT NOT NULL,
		paid_on DATE
	)`,
	`CREATE TABLE IF NOT EXISTS parent_requests (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		parent_name TEXT NOT NULL,
		student_id TEXT NOT NULL,
		student_name TEXT NOT NULL,
		type TEXT NOT NULL,
		details TEXT NOT NULL,
		invoice_id TEXT,
		submitted_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS request_history (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		request_id TEXT NOT NULL,
		parent_name TEXT NOT NULL,
		student_name TEXT NOT NULL,
		type TEXT NOT NULL,
		details TEXT NOT NULL,
		action TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		acted_by TEXT NOT NULL,
		acted_at TIMESTAMPTZ NOT NULL,
		edit_count INT NOT NULL DEFAULT 0,
		edit_unlocked BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS hostel_allocations (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		student_id TEXT NOT NULL,
		student_name TEXT NOT NULL,
		hostel TEXT NOT NULL,
		room TEXT NOT NULL,
		bed TEXT NOT NULL,
		status TEXT NOT NULL,
		fee BIGINT NOT NULL,
		allocated_on DATE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS homework (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		class_name TEXT NOT NULL,
		subject TEXT NOT NULL,
		title TEXT NOT NULL,
		teacher_name TEXT NOT NULL,
		assigned_on DATE NOT NULL,
		due_date DATE NOT NULL,
		status TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS teacher_performance (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		teacher_name TEXT NOT NULL,
		subject TEXT NOT NULL,
		attendance_rate DOUBLE PRECISION NOT NULL,
		pass_rate DOUBLE PRECISION NOT NULL,
		rating DOUBLE PRECISION NOT NULL,
		term TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS report_jobs (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		type TEXT NOT NULL,
		params JSONB NOT NULL,
		status TEXT NOT NULL,
		progress INT NOT NULL DEFAULT 0,
		result_url TEXT,
		created_by TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		error_message TEXT
	)`,
}
