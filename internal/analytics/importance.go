package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/churnsight/churnsight/internal/dataset"
)

// Direction labels for per-employee attributions. A positive contribution
// pushes the predicted churn probability up.
const (
	DirectionIncreases = "increases risk"
	DirectionDecreases = "decreases risk"
)

var (
	// ErrNoFeatures means the attribution matrix has no rankable feature
	// columns (or no rows). Fatal at startup — a dashboard with no factors
	// to show is a broken artifact, not an empty state.
	ErrNoFeatures = errors.New("analytics: no attribution features to rank")

	// ErrUnknownEmployee means the requested employee number is not in the
	// dataset.
	ErrUnknownEmployee = errors.New("analytics: unknown employee")
)

// FeatureImportance is one feature's aggregate influence on predictions:
// the mean absolute attribution across all employees.
type FeatureImportance struct {
	Feature    string  // display name, contrib_ prefix stripped
	Importance float64
}

// TopFeatures ranks features by mean absolute attribution and returns the
// top n in ASCENDING order of importance, so a horizontal bar rendering
// places the most important feature at the top.
//
// The bias column never participates (the loader already excludes it).
// Ties keep source column order. If n exceeds the available feature count,
// all features are returned. The ranking does not depend on any threshold.
func TopFeatures(m *dataset.AttributionMatrix, n int) ([]FeatureImportance, error) {
	if len(m.Features) == 0 || m.Len() == 0 {
		return nil, ErrNoFeatures
	}

	ranked := make([]FeatureImportance, 0, len(m.Features))
	for _, f := range m.Features {
		var sum float64
		for _, row := range m.Rows {
			sum += math.Abs(row.Contribs[f])
		}
		ranked = append(ranked, FeatureImportance{
			Feature:    strings.TrimPrefix(f, dataset.ContribPrefix),
			Importance: sum / float64(m.Len()),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}

	reverse(ranked)
	return ranked, nil
}

// EmployeeAttribution is one feature's signed contribution to a single
// employee's predicted score, paired with that employee's actual value for
// the feature.
type EmployeeAttribution struct {
	Feature      string
	Value        string // the employee's raw feature value, e.g. "Yes" or "41"
	Contribution float64
	Direction    string // DirectionIncreases | DirectionDecreases
}

// EmployeeAttributions returns the top n contributions for one employee,
// ranked by absolute value and returned in ascending order (same bar-chart
// convention as TopFeatures). Feature values are looked up in the
// predictions table; a feature absent there gets an empty Value.
func EmployeeAttributions(ds *dataset.Dataset, employeeNumber, n int) ([]EmployeeAttribution, error) {
	row, ok := ds.Attributions.Row(employeeNumber)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEmployee, employeeNumber)
	}

	var values map[string]string
	if rec, ok := ds.Predictions.Row(employeeNumber); ok {
		values = rec.Values
	}

	out := make([]EmployeeAttribution, 0, len(ds.Attributions.Features))
	for _, f := range ds.Attributions.Features {
		name := strings.TrimPrefix(f, dataset.ContribPrefix)
		contrib := row.Contribs[f]
		dir := DirectionIncreases
		if contrib < 0 {
			dir = DirectionDecreases
		}
		out = append(out, EmployeeAttribution{
			Feature:      name,
			Value:        values[name],
			Contribution: contrib,
			Direction:    dir,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Contribution) > math.Abs(out[j].Contribution)
	})
	if n < len(out) {
		out = out[:n]
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// reverse flips a FeatureImportance slice in place.
func reverse(s []FeatureImportance) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
