package benefits_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhcm/benefits-engine/benefits"
	"github.com/openhcm/benefits-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testNow = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func newTestAggregator(t *testing.T) (*benefits.Aggregator, *memory.Store) {
	store := memory.New()
	agg := benefits.NewAggregator(store)
	agg.Now = func() time.Time { return testNow }
	return agg, store
}

func worker(id, first, last, dept string, salary int64, hired time.Time) benefits.Worker {
	return benefits.Worker{
		WorkerID:   benefits.WorkerID(id),
		FirstName:  first,
		LastName:   last,
		Department: dept,
		Salary:     decimal.NewFromInt(salary),
		HireDate:   hired,
		Status:     "Active",
	}
}

func enrollment(id string, employee, employer int64, effective time.Time) benefits.Enrollment {
	return benefits.Enrollment{
		WorkerID:      benefits.WorkerID(id),
		PlanType:      "Medical",
		CoverageLevel: "Employee",
		EmployeePrem:  decimal.NewFromInt(employee),
		EmployerPrem:  decimal.NewFromInt(employer),
		EffectiveDate: effective,
	}
}

func mustAdd(t *testing.T, store *memory.Store, workers []benefits.Worker, enrollments []benefits.Enrollment) {
	ctx := context.Background()
	for _, w := range workers {
		require.NoError(t, store.UpsertWorker(ctx, w))
	}
	for _, e := range enrollments {
		require.NoError(t, store.AppendEnrollment(ctx, e))
	}
}

func defaultQuery() benefits.Query {
	return benefits.Query{Window: benefits.DefaultWindow(testNow)}
}

// =============================================================================
// PER-WORKER REPORT
// =============================================================================

func TestCostByWorker_SumsPremiumsAndDerivesRatios(t *testing.T) {
	// GIVEN: One worker with two enrollments summing to 1600/month
	// THEN: benefitsCost=1600, pctSalary=0.016, totalComp=101600

	agg, store := newTestAggregator(t)
	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	mustAdd(t, store,
		[]benefits.Worker{worker("W1001", "Ada", "Abbott", "Engineering", 100000, jan.AddDate(-3, 0, 0))},
		[]benefits.Enrollment{
			enrollment("W1001", 200, 800, jan),
			enrollment("W1001", 100, 500, jan.AddDate(0, 1, 0)),
		},
	)

	records, err := agg.CostByWorker(context.Background(), defaultQuery())
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, benefits.WorkerID("W1001"), r.WorkerID)
	assert.True(t, r.BenefitsCost.Equal(decimal.NewFromInt(1600)), "benefitsCost = %s", r.BenefitsCost)
	require.True(t, r.PctSalary.Valid)
	assert.True(t, r.PctSalary.Decimal.Equal(decimal.RequireFromString("0.016")), "pctSalary = %s", r.PctSalary.Decimal)
	assert.True(t, r.TotalComp.Equal(decimal.NewFromInt(101600)), "totalComp = %s", r.TotalComp)
	assert.Equal(t, 3, r.YearsOfService)
}

func TestCostByWorker_NoEnrollments_ZeroCostRow(t *testing.T) {
	// A worker with no enrollments still gets a row, with zero cost and
	// totalComp equal to salary.

	agg, store := newTestAggregator(t)
	mustAdd(t, store,
		[]benefits.Worker{worker("W2000", "Bruno", "Berg", "Finance", 80000, testNow.AddDate(-1, 0, 0))},
		nil,
	)

	records, err := agg.CostByWorker(context.Background(), defaultQuery())
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.True(t, r.BenefitsCost.IsZero())
	require.True(t, r.PctSalary.Valid)
	assert.True(t, r.PctSalary.Decimal.IsZero())
	assert.True(t, r.TotalComp.Equal(decimal.NewFromInt(80000)))
}

func TestCostByWorker_ZeroSalary_NullPctSalary(t *testing.T) {
	agg, store := newTestAggregator(t)
	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	mustAdd(t, store,
		[]benefits.Worker{worker("W3000", "Carmen", "Castillo", "Sales", 0, jan)},
		[]benefits.Enrollment{enrollment("W3000", 100, 300, jan)},
	)

	records, err := agg.CostByWorker(context.Background(), defaultQuery())
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.False(t, records[0].PctSalary.Valid, "zero salary must yield a null ratio")
	assert.True(t, records[0].BenefitsCost.Equal(decimal.NewFromInt(400)))
}

func TestCostByWorker_WindowFiltersEnrollments(t *testing.T) {
	// Only enrollments effective inside the inclusive window count.

	agg, store := newTestAggregator(t)
	hire := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	mustAdd(t, store,
		[]benefits.Worker{worker("W1001", "Ada", "Abbott", "Engineering", 100000, hire)},
		[]benefits.Enrollment{
			enrollment("W1001", 100, 400, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)),
			enrollment("W1001", 100, 400, time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)),
			enrollment("W1001", 100, 400, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)),
		},
	)

	q := benefits.Query{Window: benefits.Window{
		From: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
	}}
	records, err := agg.CostByWorker(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].BenefitsCost.Equal(decimal.NewFromInt(500)))
}

func TestCostByWorker_DeptFilterAndOrdering(t *testing.T) {
	// Records come back ordered by last name; the filter matches the
	// department exactly.

	agg, store := newTestAggregator(t)
	hire := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	mustAdd(t, store,
		[]benefits.Worker{
			worker("W1", "Stefan", "Zhang", "Engineering", 90000, hire),
			worker("W2", "Grace", "Abbott", "Engineering", 95000, hire),
			worker("W3", "Noor", "Berg", "Finance", 70000, hire),
		},
		nil,
	)

	q := defaultQuery()
	q.Dept = "Engineering"
	records, err := agg.CostByWorker(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Abbott", records[0].LastName)
	assert.Equal(t, "Zhang", records[1].LastName)
}

func TestCostByWorker_OrphanedEnrollmentIgnored(t *testing.T) {
	// Enrollments for unknown workers must not break the report or
	// produce phantom rows.

	agg, store := newTestAggregator(t)
	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	mustAdd(t, store,
		[]benefits.Worker{worker("W1", "Ada", "Abbott", "Engineering", 100000, jan)},
		[]benefits.Enrollment{enrollment("W-GONE", 999, 999, jan)},
	)

	records, err := agg.CostByWorker(context.Background(), defaultQuery())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, benefits.WorkerID("W1"), records[0].WorkerID)
	assert.True(t, records[0].BenefitsCost.IsZero())
}

func TestCostByWorker_YearsOfServiceFloors(t *testing.T) {
	// Hired 2 years minus a day ago: the anniversary has not passed,
	// so years of service is 1.

	agg, store := newTestAggregator(t)
	mustAdd(t, store,
		[]benefits.Worker{worker("W1", "Ada", "Abbott", "Engineering", 100000, testNow.AddDate(-2, 0, 1))},
		nil,
	)

	records, err := agg.CostByWorker(context.Background(), defaultQuery())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].YearsOfService)
}

// =============================================================================
// DEPARTMENT ROLL-UP
// =============================================================================

func TestCostByDepartment_AveragesPerWorkerRatios(t *testing.T) {
	// Two engineering workers: cost 1000 on salary 50000 (0.02) and cost
	// 3000 on salary 100000 (0.03). avg_pct_salary is the mean of the
	// ratios (0.025), not total cost over total salary.

	agg, store := newTestAggregator(t)
	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	mustAdd(t, store,
		[]benefits.Worker{
			worker("W1", "Ada", "Abbott", "Engineering", 50000, jan),
			worker("W2", "Bruno", "Berg", "Engineering", 100000, jan),
		},
		[]benefits.Enrollment{
			enrollment("W1", 500, 500, jan),
			enrollment("W2", 1000, 2000, jan),
		},
	)

	rollups, err := agg.CostByDepartment(context.Background())
	require.NoError(t, err)
	require.Len(t, rollups, 1)

	r := rollups[0]
	assert.Equal(t, "Engineering", r.Department)
	assert.Equal(t, 2, r.Employees)
	assert.True(t, r.TotalBenefitsCost.Equal(decimal.NewFromInt(4000)))
	assert.True(t, r.AvgBenefitsPerEmployee.Equal(decimal.NewFromInt(2000)))
	assert.True(t, r.AvgSalary.Equal(decimal.NewFromInt(75000)))
	require.True(t, r.AvgPctSalary.Valid)
	assert.True(t, r.AvgPctSalary.Decimal.Equal(decimal.RequireFromString("0.025")), "avg pct = %s", r.AvgPctSalary.Decimal)
}

func TestCostByDepartment_OrderedByTotalCostDesc(t *testing.T) {
	agg, store := newTestAggregator(t)
	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	mustAdd(t, store,
		[]benefits.Worker{
			worker("W1", "Ada", "Abbott", "Finance", 50000, jan),
			worker("W2", "Bruno", "Berg", "Engineering", 50000, jan),
		},
		[]benefits.Enrollment{
			enrollment("W1", 100, 100, jan),
			enrollment("W2", 500, 500, jan),
		},
	)

	rollups, err := agg.CostByDepartment(context.Background())
	require.NoError(t, err)
	require.Len(t, rollups, 2)
	assert.Equal(t, "Engineering", rollups[0].Department)
	assert.Equal(t, "Finance", rollups[1].Department)
}

func TestCostByDepartment_AllZeroSalaries_NullAvgPct(t *testing.T) {
	agg, store := newTestAggregator(t)
	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	mustAdd(t, store,
		[]benefits.Worker{worker("W1", "Ada", "Abbott", "Interns", 0, jan)},
		[]benefits.Enrollment{enrollment("W1", 50, 150, jan)},
	)

	rollups, err := agg.CostByDepartment(context.Background())
	require.NoError(t, err)
	require.Len(t, rollups, 1)
	assert.False(t, rollups[0].AvgPctSalary.Valid)
	assert.True(t, rollups[0].TotalBenefitsCost.Equal(decimal.NewFromInt(200)))
}

func TestCostByDepartment_IgnoresEnrollmentWindow(t *testing.T) {
	// The roll-up is all-time: a years-old enrollment still counts.

	agg, store := newTestAggregator(t)
	mustAdd(t, store,
		[]benefits.Worker{worker("W1", "Ada", "Abbott", "Engineering", 100000, testNow.AddDate(-5, 0, 0))},
		[]benefits.Enrollment{enrollment("W1", 100, 400, time.Date(2019, time.July, 1, 0, 0, 0, 0, time.UTC))},
	)

	rollups, err := agg.CostByDepartment(context.Background())
	require.NoError(t, err)
	require.Len(t, rollups, 1)
	assert.True(t, rollups[0].TotalBenefitsCost.Equal(decimal.NewFromInt(500)))
}

// =============================================================================
// MONTHLY TREND
// =============================================================================

func TestMonthlyTrend_SparseMonthsOmitted(t *testing.T) {
	// Enrollments in January and March only: no February point.

	agg, store := newTestAggregator(t)
	mustAdd(t, store,
		[]benefits.Worker{worker("W1", "Ada", "Abbott", "Engineering", 100000, testNow.AddDate(-2, 0, 0))},
		[]benefits.Enrollment{
			enrollment("W1", 100, 400, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)),
			enrollment("W1", 100, 400, time.Date(2025, time.January, 25, 0, 0, 0, 0, time.UTC)),
			enrollment("W1", 200, 300, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)),
		},
	)

	points, err := agg.MonthlyTrend(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2025-01-01", points[0].Month)
	assert.True(t, points[0].BenefitsCost.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "2025-03-01", points[1].Month)
	assert.True(t, points[1].BenefitsCost.Equal(decimal.NewFromInt(500)))
}

func TestMonthlyTrend_DeptFilterExcludesOrphans(t *testing.T) {
	// With a department filter, enrollments of unknown or other-dept
	// workers drop out. Without one, orphans still count.

	agg, store := newTestAggregator(t)
	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	mustAdd(t, store,
		[]benefits.Worker{
			worker("W1", "Ada", "Abbott", "Engineering", 100000, jan),
			worker("W2", "Bruno", "Berg", "Finance", 80000, jan),
		},
		[]benefits.Enrollment{
			enrollment("W1", 100, 400, jan),
			enrollment("W2", 50, 150, jan),
			enrollment("W-GONE", 1000, 1000, jan),
		},
	)

	filtered, err := agg.MonthlyTrend(context.Background(), "Engineering")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Engineering", filtered[0].Department)
	assert.True(t, filtered[0].BenefitsCost.Equal(decimal.NewFromInt(500)))

	all, err := agg.MonthlyTrend(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Department)
	assert.True(t, all[0].BenefitsCost.Equal(decimal.NewFromInt(2700)))
}

func TestMonthlyTrend_MonthsSortedAscending(t *testing.T) {
	agg, store := newTestAggregator(t)
	mustAdd(t, store,
		[]benefits.Worker{worker("W1", "Ada", "Abbott", "Engineering", 100000, testNow.AddDate(-2, 0, 0))},
		[]benefits.Enrollment{
			enrollment("W1", 100, 100, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)),
			enrollment("W1", 100, 100, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)),
			enrollment("W1", 100, 100, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)),
		},
	)

	points, err := agg.MonthlyTrend(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "2024-12-01", points[0].Month)
	assert.Equal(t, "2025-01-01", points[1].Month)
	assert.Equal(t, "2025-03-01", points[2].Month)
}
