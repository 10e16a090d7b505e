package benefits_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhcm/benefits-engine/benefits"
)

func sampleRecord() benefits.CostRecord {
	return benefits.CostRecord{
		WorkerID:       "W1001",
		FirstName:      "Ada",
		LastName:       "Abbott",
		Department:     "Engineering",
		Salary:         decimal.NewFromInt(100000),
		YearsOfService: 3,
		BenefitsCost:   decimal.NewFromInt(1600),
		PctSalary:      decimal.NullDecimal{Decimal: decimal.RequireFromString("0.016"), Valid: true},
		TotalComp:      decimal.NewFromInt(101600),
	}
}

// =============================================================================
// JSON
// =============================================================================

func TestJSONProjector_FieldNamesAndNull(t *testing.T) {
	rec := sampleRecord()
	rec.PctSalary = decimal.NullDecimal{}

	var buf bytes.Buffer
	require.NoError(t, benefits.JSONProjector{}.Project(&buf, []benefits.CostRecord{rec}))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "W1001", row["workerId"])
	assert.Contains(t, row, "pctSalary")
	assert.Nil(t, row["pctSalary"], "null ratio must render as JSON null, not 0")
	assert.Equal(t, "101600", row["totalComp"])
}

func TestJSONProjector_EmptyIsArrayNotNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, benefits.JSONProjector{}.Project(&buf, nil))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

// =============================================================================
// CSV
// =============================================================================

func TestCSVProjector_AllFieldsQuoted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, benefits.CSVProjector{}.Project(&buf, []benefits.CostRecord{sampleRecord()}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, benefits.CSVHeader, lines[0])
	assert.Equal(t, `"W1001","Ada","Abbott","Engineering","100000","3","1600","0.016","101600"`, lines[1])
}

func TestCSVProjector_NullRatioEmptyField(t *testing.T) {
	rec := sampleRecord()
	rec.PctSalary = decimal.NullDecimal{}

	var buf bytes.Buffer
	require.NoError(t, benefits.CSVProjector{}.Project(&buf, []benefits.CostRecord{rec}))

	assert.Contains(t, buf.String(), `"1600","","101600"`)
}

func TestCSVProjector_EmbeddedQuotesDoubled(t *testing.T) {
	rec := sampleRecord()
	rec.LastName = `O'Neil "Oni"`

	var buf bytes.Buffer
	require.NoError(t, benefits.CSVProjector{}.Project(&buf, []benefits.CostRecord{rec}))

	// A standard RFC 4180 reader must round-trip the value.
	reader := csv.NewReader(&buf)
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `O'Neil "Oni"`, rows[1][2])
}

func TestCSVProjector_SameValuesAsJSON(t *testing.T) {
	// Both projections of the same records must carry identical values;
	// only the encoding differs.

	records := []benefits.CostRecord{sampleRecord()}

	var jsonBuf bytes.Buffer
	require.NoError(t, benefits.JSONProjector{}.Project(&jsonBuf, records))
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &rows))

	var csvBuf bytes.Buffer
	require.NoError(t, benefits.CSVProjector{}.Project(&csvBuf, records))
	parsed, err := csv.NewReader(&csvBuf).ReadAll()
	require.NoError(t, err)

	header, row := parsed[0], parsed[1]
	for i, col := range header {
		jsonVal := rows[0][col]
		switch v := jsonVal.(type) {
		case string:
			assert.Equal(t, v, row[i], "column %s", col)
		case float64:
			assert.Equal(t, "3", row[i], "column %s", col) // yearsOfService
		}
	}
}

func TestCSVProjector_HeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, benefits.CSVProjector{}.Project(&buf, nil))
	assert.Equal(t, benefits.CSVHeader+"\n", buf.String())
}
