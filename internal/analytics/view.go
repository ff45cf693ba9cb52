package analytics

import (
	"errors"
	"math"

	"github.com/churnsight/churnsight/internal/dataset"
)

// DefaultRowsPerPage bounds the table listing when the caller passes a
// non-positive limit.
const DefaultRowsPerPage = 10

// ErrEmptyTable means the predictions table has zero rows, which makes the
// churn fraction undefined. The dataset is fixed at load time, so hitting
// this past startup indicates a configuration error.
var ErrEmptyTable = errors.New("analytics: predictions table is empty")

// ChurnView is the derived, non-persisted view of employees whose predicted
// churn probability exceeds a threshold, plus the three summary statistics
// the dashboard renders.
type ChurnView struct {
	Threshold float64

	// Count is the number of employees with Prediction > Threshold.
	Count int

	// Fraction is Count over the total employee count, in [0, 1].
	Fraction float64

	// AverageTenure is the mean YearsAtCompany across selected employees,
	// rounded to the nearest integer. Nil when no employee exceeds the
	// threshold — the mean of an empty set is undefined, not zero.
	AverageTenure *int

	// Total is the full employee count, independent of the threshold.
	Total int

	// Columns is the projected column order for Rows:
	// EmployeeNumber, the top-N feature columns, Prediction.
	Columns []string

	// Rows is one page of the selected employees, projected to Columns.
	Rows []TableRow

	// Offset is the page start within the full selection.
	Offset int
}

// TableRow is one selected employee projected to the view columns.
type TableRow struct {
	EmployeeNumber int
	Prediction     float64

	// Cells holds the raw values aligned with ChurnView.Columns.
	Cells []string
}

// BuildView filters t to rows with Prediction strictly greater than
// threshold and derives the summary statistics. topFeatures is the ranked
// feature column list (display names) used for the row projection;
// offset/limit page the row listing.
//
// BuildView is a pure function of its inputs; it is re-run synchronously on
// every threshold change.
func BuildView(t *dataset.Table, threshold float64, topFeatures []string, offset, limit int) (*ChurnView, error) {
	total := t.Len()
	if total == 0 {
		return nil, ErrEmptyTable
	}
	if limit <= 0 {
		limit = DefaultRowsPerPage
	}
	if offset < 0 {
		offset = 0
	}

	var selected []dataset.Record
	var tenureSum float64
	for _, r := range t.Rows {
		if r.Prediction > threshold {
			selected = append(selected, r)
			tenureSum += r.YearsAtCompany
		}
	}

	view := &ChurnView{
		Threshold: threshold,
		Count:     len(selected),
		Fraction:  float64(len(selected)) / float64(total),
		Total:     total,
		Columns:   projectedColumns(topFeatures),
		Offset:    offset,
	}

	if len(selected) > 0 {
		avg := int(math.Round(tenureSum / float64(len(selected))))
		view.AverageTenure = &avg
	}

	if offset > len(selected) {
		offset = len(selected)
	}
	end := offset + limit
	if end > len(selected) {
		end = len(selected)
	}
	view.Rows = make([]TableRow, 0, end-offset)
	for _, r := range selected[offset:end] {
		view.Rows = append(view.Rows, projectRow(r, view.Columns))
	}

	return view, nil
}

// projectedColumns builds the view column order: identifier first, then the
// ranked features, then the score.
func projectedColumns(topFeatures []string) []string {
	cols := make([]string, 0, len(topFeatures)+2)
	cols = append(cols, dataset.ColEmployeeNumber)
	cols = append(cols, topFeatures...)
	cols = append(cols, dataset.ColPrediction)
	return cols
}

// projectRow extracts the raw cell values for cols from r.
func projectRow(r dataset.Record, cols []string) TableRow {
	cells := make([]string, len(cols))
	for i, col := range cols {
		cells[i] = r.Values[col]
	}
	return TableRow{
		EmployeeNumber: r.EmployeeNumber,
		Prediction:     r.Prediction,
		Cells:          cells,
	}
}
