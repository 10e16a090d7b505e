/*
Package fixture generates deterministic demo data.

PURPOSE:
  Produces a repeatable population of workers, monthly benefit
  enrollments, and weekday time entries from a seeded PRNG, plus the
  small sample CSV files served by the import endpoints. Same seed,
  same dataset, on every run and every platform.
*/
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openhcm/benefits-engine/benefits"
)

var (
	departments = []string{"Engineering", "Finance", "Sales", "HR", "IT", "Marketing", "Operations", "Support"}
	planTypes   = []string{"Medical", "Dental", "Vision"}
	coverages   = []string{"Employee", "Employee+Spouse", "Employee+Children", "Family"}

	firstNames = []string{
		"Ada", "Bruno", "Carmen", "Devon", "Elif", "Franklin", "Grace", "Hiro",
		"Ingrid", "Jamal", "Katya", "Lucas", "Maeve", "Noor", "Otis", "Priya",
		"Quinn", "Rosa", "Stefan", "Tara", "Umar", "Vera", "Wendell", "Ximena",
		"Yusuf", "Zoe",
	}
	lastNames = []string{
		"Abbott", "Berg", "Castillo", "Dumont", "Eriksen", "Fong", "Gallagher",
		"Hassan", "Ivanov", "Jimenez", "Kowalski", "Larsen", "Mbeki", "Novak",
		"Okafor", "Petrov", "Quigley", "Reyes", "Sato", "Tanaka", "Ueda",
		"Varga", "Whitfield", "Xu", "Yilmaz", "Zhang",
	}
	jobTitles = []string{
		"Analyst", "Senior Analyst", "Engineer", "Senior Engineer", "Manager",
		"Coordinator", "Specialist", "Director", "Associate", "Consultant",
	}
)

// Config controls the generated volumes. Zero values fall back to the
// defaults via Normalize.
type Config struct {
	Seed    int64
	Workers int
	Now     time.Time // anchor for all relative dates
}

// Normalize fills unset fields with the standard demo volumes.
func (c Config) Normalize() Config {
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.Workers <= 0 {
		c.Workers = 1000
	}
	if c.Now.IsZero() {
		c.Now = time.Now().UTC()
	}
	c.Now = benefits.Day(c.Now)
	return c
}

// Dataset is one generated population, before it hits a store.
type Dataset struct {
	Workers     []benefits.Worker
	Enrollments []benefits.Enrollment
	TimeEntries []benefits.TimeEntry
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate builds the full population from cfg. Pure function of the
// config: no clock, no store, no global state.
func Generate(cfg Config) Dataset {
	cfg = cfg.Normalize()
	rng := rand.New(rand.NewSource(cfg.Seed))

	var ds Dataset
	for i := 0; i < cfg.Workers; i++ {
		w := makeWorker(rng, cfg.Now, i)
		ds.Workers = append(ds.Workers, w)
		ds.Enrollments = append(ds.Enrollments, makeEnrollments(rng, cfg.Now, w.WorkerID)...)
		ds.TimeEntries = append(ds.TimeEntries, makeTimeEntries(rng, cfg.Now, w.WorkerID)...)
	}
	return ds
}

func makeWorker(rng *rand.Rand, now time.Time, i int) benefits.Worker {
	workerID := benefits.WorkerID(fmt.Sprintf("W%d", 1000+i))
	first := pick(rng, firstNames)
	last := pick(rng, lastNames)

	// Hired within the last 8 years, born 22-60 years ago.
	hireDate := daysAgo(now, rng.Intn(8*365)+1)
	birthDate := daysAgo(now, (rng.Intn(60-22)+22)*365+rng.Intn(365))
	salary := decimal.NewFromInt(int64(rng.Intn(190000-55000+1) + 55000))

	return benefits.Worker{
		WorkerID:   workerID,
		FirstName:  first,
		LastName:   last,
		Email:      strings.ToLower(fmt.Sprintf("%s.%s.%s@example.com", first, last, workerID)),
		Department: pick(rng, departments),
		JobTitle:   pick(rng, jobTitles),
		HireDate:   hireDate,
		BirthDate:  birthDate,
		Salary:     salary,
		Status:     "Active",
	}
}

// makeEnrollments emits one row per plan per month: each worker carries
// 1-3 plan types for a 12-24 month run starting within the last 2 years.
func makeEnrollments(rng *rand.Rand, now time.Time, workerID benefits.WorkerID) []benefits.Enrollment {
	planCount := rng.Intn(3) + 1
	plans := pickN(rng, planTypes, planCount)
	months := rng.Intn(24-12+1) + 12
	start := daysAgo(now, rng.Intn(2*365)+1)

	var out []benefits.Enrollment
	for _, plan := range plans {
		for m := 0; m < months; m++ {
			out = append(out, benefits.Enrollment{
				WorkerID:      workerID,
				PlanType:      plan,
				CoverageLevel: pick(rng, coverages),
				EmployeePrem:  decimal.NewFromInt(int64(rng.Intn(400-100+1) + 100)),
				EmployerPrem:  decimal.NewFromInt(int64(rng.Intn(1200-300+1) + 300)),
				EffectiveDate: start.AddDate(0, m, 0),
			})
		}
	}
	return out
}

// makeTimeEntries emits 60-120 consecutive weekday entries starting
// within the last year; roughly 1 in 15 days is a 10-hour OT day.
func makeTimeEntries(rng *rand.Rand, now time.Time, workerID benefits.WorkerID) []benefits.TimeEntry {
	days := rng.Intn(120-60+1) + 60
	start := daysAgo(now, rng.Intn(365)+1)

	var out []benefits.TimeEntry
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		hours, timeType := 8, "Regular"
		if rng.Intn(15) == 0 {
			hours, timeType = 10, "OT"
		}
		out = append(out, benefits.TimeEntry{
			WorkerID: workerID,
			Date:     date,
			Hours:    decimal.NewFromInt(int64(hours)),
			TimeType: timeType,
		})
	}
	return out
}

// =============================================================================
// LOADING
// =============================================================================

// Load generates a population and writes it through w, finishing with a
// single SEED audit entry summarizing the volumes.
func Load(ctx context.Context, w benefits.Writer, cfg Config) (Dataset, error) {
	cfg = cfg.Normalize()
	ds := Generate(cfg)

	for _, worker := range ds.Workers {
		if err := w.UpsertWorker(ctx, worker); err != nil {
			return ds, fmt.Errorf("seed worker %s: %w", worker.WorkerID, err)
		}
	}
	for _, e := range ds.Enrollments {
		if err := w.AppendEnrollment(ctx, e); err != nil {
			return ds, fmt.Errorf("seed enrollment for %s: %w", e.WorkerID, err)
		}
	}
	for _, t := range ds.TimeEntries {
		if err := w.AppendTimeEntry(ctx, t); err != nil {
			return ds, fmt.Errorf("seed time entry for %s: %w", t.WorkerID, err)
		}
	}

	summary, _ := json.Marshal(map[string]int{
		"workers":     len(ds.Workers),
		"enrollments": len(ds.Enrollments),
		"timeEntries": len(ds.TimeEntries),
	})
	err := w.AppendAudit(ctx, benefits.AuditEntry{
		ID:        uuid.NewString(),
		Actor:     "seed@system",
		Action:    "SEED",
		Entity:    "System",
		EntityID:  "-",
		After:     string(summary),
		Reason:    "Initial demo dataset",
		CreatedAt: cfg.Now,
	})
	if err != nil {
		return ds, fmt.Errorf("seed audit: %w", err)
	}
	return ds, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

// pickN returns n distinct elements in stable option order.
func pickN(rng *rand.Rand, options []string, n int) []string {
	idx := rng.Perm(len(options))[:n]
	chosen := make(map[int]bool, n)
	for _, i := range idx {
		chosen[i] = true
	}
	var out []string
	for i, o := range options {
		if chosen[i] {
			out = append(out, o)
		}
	}
	return out
}

func daysAgo(now time.Time, days int) time.Time {
	return benefits.Day(now).AddDate(0, 0, -days)
}
