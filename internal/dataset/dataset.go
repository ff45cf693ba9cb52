package dataset

import (
	"time"
)

// Well-known column names in the two CSV artifacts.
const (
	// ColEmployeeNumber keys both tables.
	ColEmployeeNumber = "EmployeeNumber"

	// ColPrediction is the uniform name of the churn probability column.
	// The source column (config data.prediction_column, default
	// "Attrition.Yes") is renamed to this on load.
	ColPrediction = "Prediction"

	// ColYearsAtCompany is the tenure column used for summary statistics.
	ColYearsAtCompany = "YearsAtCompany"

	// ContribPrefix tags attribution columns ("contrib_Age", "contrib_OverTime").
	ContribPrefix = "contrib_"

	// BiasColumn is the model bias term; excluded from feature rankings.
	BiasColumn = "contrib_bias"
)

// Record is one employee row from the predictions table.
// Values holds every source column as raw text, keyed by (renamed) column
// name, so the table view can project arbitrary feature columns.
type Record struct {
	EmployeeNumber int
	Prediction     float64
	YearsAtCompany float64
	Values         map[string]string
}

// Table is the immutable in-memory predictions table. One row per employee.
// Callers must not modify a Table after Load returns it.
type Table struct {
	// Columns preserves the source column order, with the probability
	// column renamed to "Prediction".
	Columns []string
	Rows    []Record

	byID map[int]int // EmployeeNumber → Rows index
}

// NewTable builds a Table from pre-parsed rows, indexing them by employee
// number. Later duplicates of an employee number win.
func NewTable(columns []string, rows []Record) *Table {
	t := &Table{Columns: columns, Rows: rows, byID: make(map[int]int, len(rows))}
	for i, r := range rows {
		t.byID[r.EmployeeNumber] = i
	}
	return t
}

// Len returns the number of employee rows.
func (t *Table) Len() int { return len(t.Rows) }

// Row returns the record for the given employee number.
func (t *Table) Row(employeeNumber int) (Record, bool) {
	i, ok := t.byID[employeeNumber]
	if !ok {
		return Record{}, false
	}
	return t.Rows[i], true
}

// AttributionRow holds one employee's signed per-feature contributions.
type AttributionRow struct {
	EmployeeNumber int
	// Contribs is keyed by the raw column name (including the contrib_ prefix).
	Contribs map[string]float64
	Bias     float64
}

// AttributionMatrix is the immutable per-employee feature attribution table.
type AttributionMatrix struct {
	// Features lists the contribution columns in source order, bias excluded.
	// Names keep the contrib_ prefix; strip it for display.
	Features []string
	Rows     []AttributionRow

	byID map[int]int
}

// NewAttributionMatrix builds an AttributionMatrix from pre-parsed rows.
func NewAttributionMatrix(features []string, rows []AttributionRow) *AttributionMatrix {
	m := &AttributionMatrix{Features: features, Rows: rows, byID: make(map[int]int, len(rows))}
	for i, r := range rows {
		m.byID[r.EmployeeNumber] = i
	}
	return m
}

// Len returns the number of employee rows.
func (m *AttributionMatrix) Len() int { return len(m.Rows) }

// Row returns the attribution row for the given employee number.
func (m *AttributionMatrix) Row(employeeNumber int) (AttributionRow, bool) {
	i, ok := m.byID[employeeNumber]
	if !ok {
		return AttributionRow{}, false
	}
	return m.Rows[i], true
}

// Dataset bundles the two tables loaded from disk. It is immutable after
// Load; reloads produce a fresh Dataset rather than mutating in place.
type Dataset struct {
	Predictions  *Table
	Attributions *AttributionMatrix
	LoadedAt     time.Time
}
