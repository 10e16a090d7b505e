package fixture

import (
	"encoding/csv"
	"strings"
	"time"

	"github.com/openhcm/benefits-engine/benefits"
)

// sampleConfig keeps the downloadable sample files small and stable.
// The anchor date is fixed so the files never change between deploys.
var sampleConfig = Config{
	Seed:    7,
	Workers: 5,
	Now:     time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
}

// SampleWorkersCSV renders a small workers file in the import column order.
func SampleWorkersCSV() string {
	ds := Generate(sampleConfig)
	rows := [][]string{{"workerId", "firstName", "lastName", "email", "department", "jobTitle", "hireDate", "birthDate", "salary", "managerId", "status"}}
	for _, w := range ds.Workers {
		rows = append(rows, []string{
			string(w.WorkerID), w.FirstName, w.LastName, w.Email, w.Department,
			w.JobTitle, day(w.HireDate), day(w.BirthDate), w.Salary.String(),
			w.ManagerID, w.Status,
		})
	}
	return renderCSV(rows)
}

// SampleEnrollmentsCSV renders a small enrollments file, capped at the
// first few rows per worker so the download stays readable.
func SampleEnrollmentsCSV() string {
	ds := Generate(sampleConfig)
	rows := [][]string{{"workerId", "planType", "coverageLevel", "employeePrem", "employerPrem", "effectiveDate"}}
	perWorker := make(map[benefits.WorkerID]int)
	for _, e := range ds.Enrollments {
		if perWorker[e.WorkerID] >= 3 {
			continue
		}
		perWorker[e.WorkerID]++
		rows = append(rows, []string{
			string(e.WorkerID), e.PlanType, e.CoverageLevel,
			e.EmployeePrem.String(), e.EmployerPrem.String(), day(e.EffectiveDate),
		})
	}
	return renderCSV(rows)
}

// SampleTimeEntriesCSV renders a small time-entries file, capped per worker.
func SampleTimeEntriesCSV() string {
	ds := Generate(sampleConfig)
	rows := [][]string{{"workerId", "date", "hours", "timeType"}}
	perWorker := make(map[benefits.WorkerID]int)
	for _, t := range ds.TimeEntries {
		if perWorker[t.WorkerID] >= 5 {
			continue
		}
		perWorker[t.WorkerID]++
		rows = append(rows, []string{
			string(t.WorkerID), day(t.Date), t.Hours.String(), t.TimeType,
		})
	}
	return renderCSV(rows)
}

func renderCSV(rows [][]string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.WriteAll(rows)
	w.Flush()
	return b.String()
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}
