/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements benefits.Dataset (report reads) and benefits.Writer (import
  and seed writes) using SQLite. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  workers:      identity records, upserted on worker_id (last write wins)
  enrollments:  append-only benefit elections
  time_entries: append-only worked-hours records (not aggregated)
  audit_log:    append-only provenance trail of mutating operations

APPEND-ONLY ENFORCEMENT:
  enrollments, time_entries, and audit_log have no UPDATE or DELETE paths.
  Reset() exists for tests and demo seeding only.

DATE REPRESENTATION:
  Calendar dates (hire, birth, effective, time-entry) are stored as
  YYYY-MM-DD strings so range predicates compare lexicographically;
  timestamps are RFC3339. Monetary values are decimal strings.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, and WAL mode so readers don't
  block. Each report request recomputes from current store state; there
  is no cache to invalidate.

USAGE:
  store, err := sqlite.New("./data/benefits.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - benefits/types.go: interface definitions
  - store/memory: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/openhcm/benefits-engine/benefits"
)

const dateLayout = "2006-01-02"

// Store implements benefits.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Workers (identity records, upserted by worker_id)
	CREATE TABLE IF NOT EXISTS workers (
		worker_id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		department TEXT NOT NULL,
		job_title TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		birth_date TEXT NOT NULL,
		salary TEXT NOT NULL,
		manager_id TEXT,
		status TEXT NOT NULL DEFAULT 'Active',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_workers_department
		ON workers(department);
	CREATE INDEX IF NOT EXISTS idx_workers_last_name
		ON workers(last_name);

	-- Enrollments (append-only; worker_id intentionally unconstrained,
	-- orphaned rows are tolerated by the aggregation path)
	CREATE TABLE IF NOT EXISTS enrollments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		worker_id TEXT NOT NULL,
		plan_type TEXT NOT NULL,
		coverage_level TEXT NOT NULL,
		employee_prem TEXT NOT NULL,
		employer_prem TEXT NOT NULL,
		effective_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_enrollments_worker
		ON enrollments(worker_id);
	CREATE INDEX IF NOT EXISTS idx_enrollments_effective_date
		ON enrollments(effective_date);

	-- Time entries (append-only; shares the store, not aggregated)
	CREATE TABLE IF NOT EXISTS time_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		worker_id TEXT NOT NULL,
		date TEXT NOT NULL,
		hours TEXT NOT NULL,
		time_type TEXT NOT NULL DEFAULT 'Regular',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_time_entries_worker_date
		ON time_entries(worker_id, date);

	-- Audit log (append-only provenance trail)
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		entity TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		before_json TEXT,
		after_json TEXT,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_entity
		ON audit_log(entity, entity_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITER (benefits.Writer interface)
// =============================================================================

// UpsertWorker creates or replaces a worker keyed on worker_id.
func (s *Store) UpsertWorker(ctx context.Context, w benefits.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO workers
		(worker_id, first_name, last_name, email, department, job_title,
		 hire_date, birth_date, salary, manager_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			department = excluded.department,
			job_title = excluded.job_title,
			hire_date = excluded.hire_date,
			birth_date = excluded.birth_date,
			salary = excluded.salary,
			manager_id = excluded.manager_id,
			status = excluded.status,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		w.WorkerID, w.FirstName, w.LastName, w.Email, w.Department, w.JobTitle,
		w.HireDate.Format(dateLayout), w.BirthDate.Format(dateLayout),
		w.Salary.String(), nullString(w.ManagerID), w.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert worker: %w", err)
	}
	return nil
}

// AppendEnrollment appends a benefit election. Enrollments are immutable.
func (s *Store) AppendEnrollment(ctx context.Context, e benefits.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO enrollments
		(worker_id, plan_type, coverage_level, employee_prem, employer_prem, effective_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.WorkerID, e.PlanType, e.CoverageLevel,
		e.EmployeePrem.String(), e.EmployerPrem.String(),
		e.EffectiveDate.Format(dateLayout),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append enrollment: %w", err)
	}
	return nil
}

// AppendTimeEntry appends a worked-hours record.
func (s *Store) AppendTimeEntry(ctx context.Context, t benefits.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO time_entries (worker_id, date, hours, time_type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		t.WorkerID, t.Date.Format(dateLayout), t.Hours.String(), t.TimeType,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append time entry: %w", err)
	}
	return nil
}

// AppendAudit appends a provenance record.
func (s *Store) AppendAudit(ctx context.Context, a benefits.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_log (id, actor, action, entity, entity_id, before_json, after_json, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.Actor, a.Action, a.Entity, a.EntityID,
		nullString(a.Before), nullString(a.After), nullString(a.Reason),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// =============================================================================
// DATASET (benefits.Dataset interface)
// =============================================================================

const workerColumns = `worker_id, first_name, last_name, email, department, job_title,
	       hire_date, birth_date, salary, manager_id, status`

// WorkersByDepartment returns workers in storage order, optionally
// filtered by exact department match. Ordering by rowid keeps ties stable
// for the aggregator's last-name sort.
func (s *Store) WorkersByDepartment(ctx context.Context, dept string) ([]benefits.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + workerColumns + ` FROM workers ORDER BY rowid ASC`
	args := []any{}
	if dept != "" {
		query = `SELECT ` + workerColumns + ` FROM workers WHERE department = ? ORDER BY rowid ASC`
		args = append(args, dept)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer rows.Close()

	var workers []benefits.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// EnrollmentsInWindow returns enrollments with effective_date inside the
// inclusive window.
func (s *Store) EnrollmentsInWindow(ctx context.Context, w benefits.Window) ([]benefits.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT worker_id, plan_type, coverage_level, employee_prem, employer_prem, effective_date
		FROM enrollments
		WHERE effective_date >= ? AND effective_date <= ?
		ORDER BY rowid ASC
	`

	return s.queryEnrollments(ctx, query,
		benefits.Day(w.From).Format(dateLayout), benefits.Day(w.To).Format(dateLayout))
}

// AllEnrollments returns every enrollment regardless of date.
func (s *Store) AllEnrollments(ctx context.Context) ([]benefits.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT worker_id, plan_type, coverage_level, employee_prem, employer_prem, effective_date
		FROM enrollments
		ORDER BY rowid ASC
	`

	return s.queryEnrollments(ctx, query)
}

func (s *Store) queryEnrollments(ctx context.Context, query string, args ...any) ([]benefits.Enrollment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []benefits.Enrollment
	for rows.Next() {
		var (
			e             benefits.Enrollment
			employeePrem  string
			employerPrem  string
			effectiveDate string
		)
		if err := rows.Scan(&e.WorkerID, &e.PlanType, &e.CoverageLevel,
			&employeePrem, &employerPrem, &effectiveDate); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		e.EmployeePrem = parseDecimal(employeePrem)
		e.EmployerPrem = parseDecimal(employerPrem)
		e.EffectiveDate, _ = time.Parse(dateLayout, effectiveDate)
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

func scanWorker(rows *sql.Rows) (benefits.Worker, error) {
	var (
		w         benefits.Worker
		hireDate  string
		birthDate string
		salary    string
		managerID sql.NullString
	)

	err := rows.Scan(&w.WorkerID, &w.FirstName, &w.LastName, &w.Email,
		&w.Department, &w.JobTitle, &hireDate, &birthDate, &salary,
		&managerID, &w.Status)
	if err != nil {
		return w, fmt.Errorf("failed to scan worker: %w", err)
	}

	w.HireDate, _ = time.Parse(dateLayout, hireDate)
	w.BirthDate, _ = time.Parse(dateLayout, birthDate)
	w.Salary = parseDecimal(salary)
	w.ManagerID = managerID.String
	return w, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Stats holds row counts per table (for the CLI and demo seeding).
type Stats struct {
	Workers     int
	Enrollments int
	TimeEntries int
	AuditRows   int
}

// Count returns row counts for every table.
func (s *Store) Count(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	counts := []struct {
		table string
		dest  *int
	}{
		{"workers", &st.Workers},
		{"enrollments", &st.Enrollments},
		{"time_entries", &st.TimeEntries},
		{"audit_log", &st.AuditRows},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return st, nil
}

// Reset clears all data (for testing/demo seeding).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"audit_log", "time_entries", "enrollments", "workers"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
