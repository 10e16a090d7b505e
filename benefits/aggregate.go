/*
aggregate.go - The three report computations

PURPOSE:
  Implements the cost aggregation contracts over a Dataset:
    CostByWorker:     per-worker left join of workers and windowed enrollments
    CostByDepartment: all-time department roll-up
    MonthlyTrend:     premiums bucketed by calendar month

  Each computation is a single pure function over fetched rows, so it is
  unit-testable against an in-memory fixture dataset and independent of
  the live store's SQL dialect.

FAILURE SEMANTICS:
  A failed Dataset call fails the whole report. There are no partial
  results and no per-row failures at query time.

SEE ALSO:
  - types.go: entities and canonical rows
  - store/sqlite: durable Dataset implementation
  - store/memory: fixture Dataset implementation
*/
package benefits

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Query is the canonical report query both front ends translate into.
type Query struct {
	Window Window
	Dept   string // empty = unfiltered
}

// Aggregator computes reports against a Dataset. It is stateless and
// request-scoped; Now is injectable for deterministic tests.
type Aggregator struct {
	data Dataset
	Now  func() time.Time
}

func NewAggregator(data Dataset) *Aggregator {
	return &Aggregator{data: data, Now: time.Now}
}

// =============================================================================
// PER-WORKER REPORT
// =============================================================================

// CostByWorker returns one CostRecord per worker matching the department
// filter, ordered by last name ascending (storage order on ties). Workers
// without enrollments in the window get a zero benefits cost, not an
// absent row. Zero salary yields a null pctSalary, never a division error.
func (a *Aggregator) CostByWorker(ctx context.Context, q Query) ([]CostRecord, error) {
	workers, err := a.data.WorkersByDepartment(ctx, q.Dept)
	if err != nil {
		return nil, fmt.Errorf("load workers: %w", err)
	}

	enrollments, err := a.data.EnrollmentsInWindow(ctx, q.Window)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}

	costs := sumPremiums(enrollments)
	now := a.Now()

	records := make([]CostRecord, 0, len(workers))
	for _, w := range workers {
		cost := costs[w.WorkerID] // zero value when no enrollments matched
		records = append(records, CostRecord{
			WorkerID:       w.WorkerID,
			FirstName:      w.FirstName,
			LastName:       w.LastName,
			Department:     w.Department,
			Salary:         w.Salary,
			YearsOfService: WholeYears(w.HireDate, now),
			BenefitsCost:   cost,
			PctSalary:      pctOfSalary(cost, w.Salary),
			TotalComp:      w.Salary.Add(cost),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastName < records[j].LastName
	})
	return records, nil
}

// =============================================================================
// DEPARTMENT ROLL-UP
// =============================================================================

// CostByDepartment groups workers by department over their all-time
// enrollment totals. The missing time window is intentional: it matches
// the behavior callers depend on, even though the per-worker report is
// windowed. Ordered by total benefits cost descending, department name
// ascending on ties.
func (a *Aggregator) CostByDepartment(ctx context.Context) ([]DeptRollup, error) {
	workers, err := a.data.WorkersByDepartment(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load workers: %w", err)
	}

	enrollments, err := a.data.AllEnrollments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}

	costs := sumPremiums(enrollments)

	type deptAccum struct {
		employees int
		totalCost decimal.Decimal
		totalSal  decimal.Decimal
		pctSum    decimal.Decimal
		pctCount  int
	}

	accums := make(map[string]*deptAccum)
	var order []string
	for _, w := range workers {
		acc, ok := accums[w.Department]
		if !ok {
			acc = &deptAccum{}
			accums[w.Department] = acc
			order = append(order, w.Department)
		}

		cost := costs[w.WorkerID]
		acc.employees++
		acc.totalCost = acc.totalCost.Add(cost)
		acc.totalSal = acc.totalSal.Add(w.Salary)
		if w.Salary.IsPositive() {
			acc.pctSum = acc.pctSum.Add(cost.Div(w.Salary))
			acc.pctCount++
		}
	}

	rollups := make([]DeptRollup, 0, len(order))
	for _, dept := range order {
		acc := accums[dept]
		n := decimal.NewFromInt(int64(acc.employees))

		var avgPct decimal.NullDecimal
		if acc.pctCount > 0 {
			avgPct = decimal.NullDecimal{
				Decimal: acc.pctSum.Div(decimal.NewFromInt(int64(acc.pctCount))),
				Valid:   true,
			}
		}

		rollups = append(rollups, DeptRollup{
			Department:             dept,
			Employees:              acc.employees,
			TotalBenefitsCost:      acc.totalCost,
			AvgBenefitsPerEmployee: acc.totalCost.Div(n),
			AvgSalary:              acc.totalSal.Div(n),
			AvgPctSalary:           avgPct,
		})
	}

	sort.SliceStable(rollups, func(i, j int) bool {
		if !rollups[i].TotalBenefitsCost.Equal(rollups[j].TotalBenefitsCost) {
			return rollups[i].TotalBenefitsCost.GreaterThan(rollups[j].TotalBenefitsCost)
		}
		return rollups[i].Department < rollups[j].Department
	})
	return rollups, nil
}

// =============================================================================
// MONTHLY TREND
// =============================================================================

// MonthlyTrend sums premiums by calendar month of effective date, ordered
// by month ascending. Workers are joined only to apply the department
// filter; with no filter, orphaned enrollments count too. Months with no
// enrollments are omitted, so callers must not assume contiguous months.
func (a *Aggregator) MonthlyTrend(ctx context.Context, dept string) ([]TrendPoint, error) {
	enrollments, err := a.data.AllEnrollments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}

	if dept != "" {
		workers, err := a.data.WorkersByDepartment(ctx, dept)
		if err != nil {
			return nil, fmt.Errorf("load workers: %w", err)
		}
		members := make(map[WorkerID]bool, len(workers))
		for _, w := range workers {
			members[w.WorkerID] = true
		}

		filtered := enrollments[:0:0]
		for _, e := range enrollments {
			if members[e.WorkerID] {
				filtered = append(filtered, e)
			}
		}
		enrollments = filtered
	}

	byMonth := make(map[string]decimal.Decimal)
	for _, e := range enrollments {
		month := monthStart(e.EffectiveDate)
		byMonth[month] = byMonth[month].Add(e.Premium())
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	points := make([]TrendPoint, 0, len(months))
	for _, m := range months {
		points = append(points, TrendPoint{
			Month:        m,
			Department:   dept, // empty when unfiltered; omitted from JSON
			BenefitsCost: byMonth[m],
		})
	}
	return points, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func sumPremiums(enrollments []Enrollment) map[WorkerID]decimal.Decimal {
	costs := make(map[WorkerID]decimal.Decimal)
	for _, e := range enrollments {
		costs[e.WorkerID] = costs[e.WorkerID].Add(e.Premium())
	}
	return costs
}

func pctOfSalary(cost, salary decimal.Decimal) decimal.NullDecimal {
	if !salary.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: cost.Div(salary), Valid: true}
}

// monthStart renders the first day of t's month, the trend bucket key.
func monthStart(t time.Time) string {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
