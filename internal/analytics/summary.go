package analytics

import (
	"github.com/churnsight/churnsight/internal/dataset"
)

// Summary is the dataset-level aggregate produced at load and reload time.
// The alerts engine evaluates its rules against these numbers.
type Summary struct {
	// Threshold is the cutoff the churn numbers were computed at
	// (the configured slider default).
	Threshold float64

	EmployeeCount  int
	ChurnCount     int     // employees with Prediction > Threshold
	ChurnFraction  float64 // ChurnCount / EmployeeCount; 0 for an empty table
	MeanPrediction float64 // mean score across all employees
}

// Summarize computes the dataset summary at the given threshold.
func Summarize(t *dataset.Table, threshold float64) Summary {
	s := Summary{Threshold: threshold, EmployeeCount: t.Len()}
	if s.EmployeeCount == 0 {
		return s
	}

	var predSum float64
	for _, r := range t.Rows {
		predSum += r.Prediction
		if r.Prediction > threshold {
			s.ChurnCount++
		}
	}
	s.ChurnFraction = float64(s.ChurnCount) / float64(s.EmployeeCount)
	s.MeanPrediction = predSum / float64(s.EmployeeCount)
	return s
}
