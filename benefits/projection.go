/*
projection.go - Rendering canonical records into output encodings

PURPOSE:
  One projector interface, one implementation per surface. Every surface
  is a lossless re-encoding of the same immutable CostRecord slice - the
  projectors never recompute, filter, or reorder.

  JSON and CSV live here; the XML envelope projector lives in the soap
  package because it owes its shape to the protocol, not to the records.

NULL HANDLING:
  A null pctSalary renders as JSON null, as an empty CSV field, and as an
  omitted XML element. It must never surface as 0 or NaN.

CSV DIALECT:
  RFC 4180 with every field double-quoted and embedded quotes doubled.
  encoding/csv cannot force-quote unconditionally, so rows are quoted by
  hand here; consumers parse the output with any standard RFC 4180 parser.
*/
package benefits

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// Projector renders a canonical record sequence onto a writer.
type Projector interface {
	ContentType() string
	Project(w io.Writer, records []CostRecord) error
}

// =============================================================================
// JSON
// =============================================================================

type JSONProjector struct{}

func (JSONProjector) ContentType() string { return "application/json" }

func (JSONProjector) Project(w io.Writer, records []CostRecord) error {
	if records == nil {
		records = []CostRecord{} // empty array, not null
	}
	return json.NewEncoder(w).Encode(records)
}

// =============================================================================
// CSV
// =============================================================================

// CSVHeader is the canonical fixed column order of the CSV projection.
const CSVHeader = `"workerId","firstName","lastName","department","salary","yearsOfService","benefitsCost","pctSalary","totalComp"`

type CSVProjector struct{}

func (CSVProjector) ContentType() string { return "text/csv" }

func (CSVProjector) Project(w io.Writer, records []CostRecord) error {
	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteByte('\n')

	for _, r := range records {
		pct := ""
		if r.PctSalary.Valid {
			pct = r.PctSalary.Decimal.String()
		}
		fields := []string{
			string(r.WorkerID),
			r.FirstName,
			r.LastName,
			r.Department,
			r.Salary.String(),
			strconv.Itoa(r.YearsOfService),
			r.BenefitsCost.String(),
			pct,
			r.TotalComp.String(),
		}
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(csvQuote(f))
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
