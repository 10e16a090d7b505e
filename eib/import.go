/*
Package eib implements bulk CSV imports.

PURPOSE:
  Parses uploaded CSV files into domain entities and writes them through a
  benefits.Writer, one audit entry per imported row. Imports are row-atomic
  only: a bad row is reported and skipped, the rest of the file still lands.

CSV CONTRACT:
  First row is a header; columns are matched by name, not position, so
  reordered or extra columns are fine. Errors carry 1-based data row
  numbers (the header is row 0 for reporting purposes).
*/
package eib

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openhcm/benefits-engine/benefits"
)

const (
	importActor  = "integration@demo.local"
	importReason = "EIB import"
)

// Result is the outcome of one import run. Errors is always present in
// JSON, empty on a clean run.
type Result struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// Importer writes parsed rows into a store.
type Importer struct {
	writer benefits.Writer
	Now    func() time.Time
}

func NewImporter(w benefits.Writer) *Importer {
	return &Importer{writer: w, Now: time.Now}
}

// =============================================================================
// WORKERS
// =============================================================================

// ImportWorkers reads worker rows and upserts each by workerId.
// Expected columns: workerId, firstName, lastName, email, department,
// jobTitle, hireDate, birthDate, salary, managerId, status.
func (im *Importer) ImportWorkers(ctx context.Context, r io.Reader) (Result, error) {
	return im.run(ctx, r, func(ctx context.Context, row row) error {
		workerID := row.get("workerId")
		email := row.get("email")
		if workerID == "" || email == "" {
			return fmt.Errorf("workerId and email required")
		}

		hireDate, err := parseDate(row.get("hireDate"))
		if err != nil {
			return fmt.Errorf("invalid hireDate")
		}
		birthDate, err := parseDate(row.get("birthDate"))
		if err != nil {
			return fmt.Errorf("invalid birthDate")
		}
		salary, err := parseAmount(row.get("salary"))
		if err != nil {
			return fmt.Errorf("invalid salary")
		}

		status := row.get("status")
		if status == "" {
			status = "Active"
		}

		w := benefits.Worker{
			WorkerID:   benefits.WorkerID(workerID),
			FirstName:  row.get("firstName"),
			LastName:   row.get("lastName"),
			Email:      email,
			Department: row.get("department"),
			JobTitle:   row.get("jobTitle"),
			HireDate:   hireDate,
			BirthDate:  birthDate,
			Salary:     salary,
			ManagerID:  row.get("managerId"),
			Status:     status,
		}
		if err := im.writer.UpsertWorker(ctx, w); err != nil {
			return err
		}
		return im.audit(ctx, "Worker", workerID, w)
	})
}

// =============================================================================
// ENROLLMENTS
// =============================================================================

// ImportEnrollments appends enrollment rows. The workerId reference is
// not checked against existing workers; orphaned rows are accepted.
// Expected columns: workerId, planType, coverageLevel, employeePrem,
// employerPrem, effectiveDate.
func (im *Importer) ImportEnrollments(ctx context.Context, r io.Reader) (Result, error) {
	return im.run(ctx, r, func(ctx context.Context, row row) error {
		workerID := row.get("workerId")
		if workerID == "" {
			return fmt.Errorf("workerId required")
		}

		effectiveDate, err := parseDate(row.get("effectiveDate"))
		if err != nil {
			return fmt.Errorf("invalid effectiveDate")
		}
		employeePrem, err := parseAmount(row.get("employeePrem"))
		if err != nil {
			return fmt.Errorf("invalid employeePrem/employerPrem")
		}
		employerPrem, err := parseAmount(row.get("employerPrem"))
		if err != nil {
			return fmt.Errorf("invalid employeePrem/employerPrem")
		}

		e := benefits.Enrollment{
			WorkerID:      benefits.WorkerID(workerID),
			PlanType:      row.get("planType"),
			CoverageLevel: row.get("coverageLevel"),
			EmployeePrem:  employeePrem,
			EmployerPrem:  employerPrem,
			EffectiveDate: effectiveDate,
		}
		if err := im.writer.AppendEnrollment(ctx, e); err != nil {
			return err
		}
		return im.audit(ctx, "Enrollment", workerID, e)
	})
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

// ImportTimeEntries appends worked-hours rows.
// Expected columns: workerId, date, hours, timeType.
func (im *Importer) ImportTimeEntries(ctx context.Context, r io.Reader) (Result, error) {
	return im.run(ctx, r, func(ctx context.Context, row row) error {
		workerID := row.get("workerId")
		if workerID == "" {
			return fmt.Errorf("workerId required")
		}

		date, err := parseDate(row.get("date"))
		if err != nil {
			return fmt.Errorf("invalid date")
		}
		hours, err := parseAmount(row.get("hours"))
		if err != nil {
			return fmt.Errorf("invalid hours")
		}

		timeType := row.get("timeType")
		if timeType == "" {
			timeType = "Regular"
		}

		t := benefits.TimeEntry{
			WorkerID: benefits.WorkerID(workerID),
			Date:     date,
			Hours:    hours,
			TimeType: timeType,
		}
		if err := im.writer.AppendTimeEntry(ctx, t); err != nil {
			return err
		}
		return im.audit(ctx, "TimeEntry", workerID, t)
	})
}

// =============================================================================
// PIPELINE
// =============================================================================

// row is one parsed CSV record keyed by header column.
type row map[string]string

func (r row) get(col string) string { return strings.TrimSpace(r[col]) }

// run drives header-mapped CSV parsing and per-row error collection. Only
// a broken file (unreadable header, ragged quoting) aborts the run.
func (im *Importer) run(ctx context.Context, r io.Reader, importRow func(context.Context, row) error) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	result := Result{Errors: []string{}}
	for n := 1; ; n++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("read row %d: %w", n, err)
		}

		fields := make(row, len(header))
		for i, col := range header {
			if i < len(record) {
				fields[col] = record[i]
			}
		}

		if err := importRow(ctx, fields); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", n, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

// audit appends one provenance row for an imported entity.
func (im *Importer) audit(ctx context.Context, entity, entityID string, after any) error {
	snapshot, err := json.Marshal(after)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", entity, err)
	}
	return im.writer.AppendAudit(ctx, benefits.AuditEntry{
		ID:        uuid.NewString(),
		Actor:     importActor,
		Action:    "IMPORT",
		Entity:    entity,
		EntityID:  entityID,
		After:     string(snapshot),
		Reason:    importReason,
		CreatedAt: im.Now(),
	})
}

// =============================================================================
// FIELD PARSING
// =============================================================================

// parseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return benefits.Day(t), nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(s)
}
