package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/churnsight/churnsight/internal/config"
)

// Load failure classes. Both are fatal at startup — the server cannot run
// without a well-formed dataset.
var (
	// ErrMissingColumn means a required column is absent from a header row.
	ErrMissingColumn = errors.New("required column missing")

	// ErrMalformedRow means a data row could not be parsed (wrong field
	// count or an unparseable numeric cell).
	ErrMalformedRow = errors.New("malformed row")
)

// Load reads the predictions and attributions CSVs named in cfg and returns
// them as immutable in-memory tables keyed by employee number.
func Load(cfg config.DataConfig) (*Dataset, error) {
	preds, err := loadPredictions(cfg.PredictionsPath, cfg.PredictionColumn)
	if err != nil {
		return nil, err
	}

	attrs, err := loadAttributions(cfg.AttributionsPath)
	if err != nil {
		return nil, err
	}

	slog.Info("dataset loaded",
		"employees", preds.Len(),
		"features", len(attrs.Features),
		"predictions_path", cfg.PredictionsPath,
		"attributions_path", cfg.AttributionsPath,
	)

	return &Dataset{
		Predictions:  preds,
		Attributions: attrs,
		LoadedAt:     time.Now().UTC(),
	}, nil
}

// loadPredictions parses the predictions CSV. The source probability column
// (predictionCol) is renamed to "Prediction" in both header and row values.
func loadPredictions(path, predictionCol string) (*Table, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: predictions %q: %w", path, err)
	}

	idIdx := indexOf(header, ColEmployeeNumber)
	predIdx := indexOf(header, predictionCol)
	tenureIdx := indexOf(header, ColYearsAtCompany)
	for _, c := range []struct {
		idx  int
		name string
	}{
		{idIdx, ColEmployeeNumber},
		{predIdx, predictionCol},
		{tenureIdx, ColYearsAtCompany},
	} {
		if c.idx < 0 {
			return nil, fmt.Errorf("dataset: predictions %q: %w: %q", path, ErrMissingColumn, c.name)
		}
	}

	// Rename the probability column in the exposed header.
	columns := make([]string, len(header))
	copy(columns, header)
	columns[predIdx] = ColPrediction

	records := make([]Record, 0, len(rows))
	for n, row := range rows {
		id, err := strconv.Atoi(strings.TrimSpace(row[idIdx]))
		if err != nil {
			return nil, rowErr(path, n, ColEmployeeNumber, row[idIdx])
		}
		pred, err := strconv.ParseFloat(strings.TrimSpace(row[predIdx]), 64)
		if err != nil {
			return nil, rowErr(path, n, predictionCol, row[predIdx])
		}
		tenure, err := strconv.ParseFloat(strings.TrimSpace(row[tenureIdx]), 64)
		if err != nil {
			return nil, rowErr(path, n, ColYearsAtCompany, row[tenureIdx])
		}

		values := make(map[string]string, len(columns))
		for i, col := range columns {
			values[col] = row[i]
		}
		records = append(records, Record{
			EmployeeNumber: id,
			Prediction:     pred,
			YearsAtCompany: tenure,
			Values:         values,
		})
	}

	return NewTable(columns, records), nil
}

// loadAttributions parses the attributions CSV. Every contrib_* column except
// contrib_bias becomes a feature; all other columns besides EmployeeNumber
// are ignored.
func loadAttributions(path string) (*AttributionMatrix, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: attributions %q: %w", path, err)
	}

	idIdx := indexOf(header, ColEmployeeNumber)
	if idIdx < 0 {
		return nil, fmt.Errorf("dataset: attributions %q: %w: %q", path, ErrMissingColumn, ColEmployeeNumber)
	}

	var features []string
	biasIdx := -1
	colIdx := make(map[string]int)
	for i, col := range header {
		switch {
		case col == BiasColumn:
			biasIdx = i
		case strings.HasPrefix(col, ContribPrefix):
			features = append(features, col)
			colIdx[col] = i
		}
	}

	records := make([]AttributionRow, 0, len(rows))
	for n, row := range rows {
		id, err := strconv.Atoi(strings.TrimSpace(row[idIdx]))
		if err != nil {
			return nil, rowErr(path, n, ColEmployeeNumber, row[idIdx])
		}

		contribs := make(map[string]float64, len(features))
		for _, f := range features {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[colIdx[f]]), 64)
			if err != nil {
				return nil, rowErr(path, n, f, row[colIdx[f]])
			}
			contribs[f] = v
		}

		var bias float64
		if biasIdx >= 0 {
			bias, err = strconv.ParseFloat(strings.TrimSpace(row[biasIdx]), 64)
			if err != nil {
				return nil, rowErr(path, n, BiasColumn, row[biasIdx])
			}
		}

		records = append(records, AttributionRow{
			EmployeeNumber: id,
			Contribs:       contribs,
			Bias:           bias,
		})
	}

	return NewAttributionMatrix(features, records), nil
}

// readCSV reads a whole CSV file into a header row plus data rows.
// encoding/csv enforces a uniform field count; a mismatch surfaces as
// ErrMalformedRow.
func readCSV(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err = r.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: empty file", ErrMalformedRow)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			return header, rows, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		rows = append(rows, row)
	}
}

// rowErr wraps an unparseable cell as ErrMalformedRow. n is the zero-based
// data row index; the reported line accounts for the header.
func rowErr(path string, n int, column, value string) error {
	return fmt.Errorf("dataset: %q line %d: %w: column %q value %q",
		path, n+2, ErrMalformedRow, column, value)
}

// indexOf returns the index of name in header, or -1.
func indexOf(header []string, name string) int {
	for i, col := range header {
		if col == name {
			return i
		}
	}
	return -1
}
