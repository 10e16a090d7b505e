/*
Package benefits contains the core domain model and the cost aggregation
engine.

PURPOSE:
  Defines the stored entities (Worker, Enrollment, TimeEntry, AuditEntry),
  the canonical report rows computed from them (CostRecord, DeptRollup,
  TrendPoint), and the storage interfaces the engine consumes.

KEY CONCEPTS IN THIS FILE (types.go):
  - Worker/Enrollment: the joined inputs of every report
  - CostRecord: the canonical per-worker output row; all three rendering
    surfaces (JSON, CSV, XML envelope) are projections of the same records
  - Window: inclusive [from, to] date range at day granularity

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every monetary value - no float drift
  2. Explicit nulls: pctSalary uses decimal.NullDecimal so zero-salary
     workers carry an absent value, never 0 or NaN
  3. Day granularity: report dates are calendar dates, not instants

SEE ALSO:
  - aggregate.go: report computations over these types
  - projection.go: rendering CostRecords into output encodings
*/
package benefits

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// WorkerID is the stable external worker identifier (e.g. "W1001").
type WorkerID string

// =============================================================================
// STORED ENTITIES
// =============================================================================

// Worker is an identity record with compensation attributes.
// Imports upsert on WorkerID; last write wins per field.
type Worker struct {
	WorkerID   WorkerID
	FirstName  string
	LastName   string
	Email      string
	Department string
	JobTitle   string
	HireDate   time.Time
	BirthDate  time.Time
	Salary     decimal.Decimal
	ManagerID  string
	Status     string
}

// Enrollment is one benefit election effective for a coverage period.
// Append-only; never updated. The WorkerID reference is not enforced, so
// orphaned enrollments exist and must not break aggregation.
type Enrollment struct {
	WorkerID      WorkerID
	PlanType      string
	CoverageLevel string
	EmployeePrem  decimal.Decimal
	EmployerPrem  decimal.Decimal
	EffectiveDate time.Time
}

// Premium is the combined monthly contribution of one enrollment.
func (e Enrollment) Premium() decimal.Decimal {
	return e.EmployeePrem.Add(e.EmployerPrem)
}

// TimeEntry is a worked-hours record. It shares the store with the
// benefits data but is not consumed by the aggregation engine.
type TimeEntry struct {
	WorkerID WorkerID
	Date     time.Time
	Hours    decimal.Decimal
	TimeType string
}

// AuditEntry records a mutating operation (imports, seeds). Append-only
// provenance trail; the engine never reads it.
type AuditEntry struct {
	ID        string
	Actor     string
	Action    string
	Entity    string
	EntityID  string
	Before    string // JSON snapshot, empty for creates
	After     string // JSON snapshot
	Reason    string
	CreatedAt time.Time
}

// =============================================================================
// CANONICAL REPORT ROWS (computed, never stored)
// =============================================================================

// CostRecord is the per-worker output row of the aggregation engine.
// JSON tags are the contract field names shared by every surface.
type CostRecord struct {
	WorkerID       WorkerID            `json:"workerId"`
	FirstName      string              `json:"firstName"`
	LastName       string              `json:"lastName"`
	Department     string              `json:"department"`
	Salary         decimal.Decimal     `json:"salary"`
	YearsOfService int                 `json:"yearsOfService"`
	BenefitsCost   decimal.Decimal     `json:"benefitsCost"`
	PctSalary      decimal.NullDecimal `json:"pctSalary"`
	TotalComp      decimal.Decimal     `json:"totalComp"`
}

// DeptRollup is the department-level aggregation of cost records.
// avg_pct_salary averages the per-worker ratios (zero-salary workers are
// skipped), which is a different number than total cost / total salary.
type DeptRollup struct {
	Department             string              `json:"department"`
	Employees              int                 `json:"employees"`
	TotalBenefitsCost      decimal.Decimal     `json:"total_benefits_cost"`
	AvgBenefitsPerEmployee decimal.Decimal     `json:"avg_benefits_per_employee"`
	AvgSalary              decimal.Decimal     `json:"avg_salary"`
	AvgPctSalary           decimal.NullDecimal `json:"avg_pct_salary"`
}

// TrendPoint is one month of summed premiums. Months without enrollments
// are omitted entirely (sparse series).
type TrendPoint struct {
	Month        string          `json:"month"` // first day of month, YYYY-MM-DD
	Department   string          `json:"department,omitempty"`
	BenefitsCost decimal.Decimal `json:"benefits_cost"`
}

// =============================================================================
// TIME WINDOW
// =============================================================================

// Window is an inclusive [From, To] date range at day granularity.
type Window struct {
	From time.Time
	To   time.Time
}

// DefaultWindow is epoch start through today: the range used when a caller
// supplies no bounds.
func DefaultWindow(now time.Time) Window {
	return Window{
		From: time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   Day(now),
	}
}

// Contains reports whether d falls inside the window, inclusive on both ends.
func (w Window) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(Day(w.From)) && !d.After(Day(w.To))
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WholeYears returns the number of complete years between from and now,
// floored. Negative spans clamp to zero.
func WholeYears(from, now time.Time) int {
	years := now.Year() - from.Year()
	anniversary := time.Date(from.Year()+years, from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	if Day(now).Before(anniversary) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// =============================================================================
// STORAGE INTERFACES
// =============================================================================

// Dataset is the read contract the aggregation engine consumes. Both the
// SQLite store and the in-memory store implement it; rows come back in
// storage (insertion) order so stable sorts preserve ties.
type Dataset interface {
	// WorkersByDepartment returns workers with an exact department match,
	// or all workers when dept is empty.
	WorkersByDepartment(ctx context.Context, dept string) ([]Worker, error)

	// EnrollmentsInWindow returns enrollments whose effective date falls
	// inside the inclusive window.
	EnrollmentsInWindow(ctx context.Context, w Window) ([]Enrollment, error)

	// AllEnrollments returns every enrollment regardless of date.
	AllEnrollments(ctx context.Context) ([]Enrollment, error)
}

// Writer is the mutation contract used by the import pipeline and the
// fixture loader. Workers upsert; everything else appends.
type Writer interface {
	UpsertWorker(ctx context.Context, w Worker) error
	AppendEnrollment(ctx context.Context, e Enrollment) error
	AppendTimeEntry(ctx context.Context, t TimeEntry) error
	AppendAudit(ctx context.Context, a AuditEntry) error
}

// Store combines both sides; the HTTP handler takes one of these.
type Store interface {
	Dataset
	Writer
}
