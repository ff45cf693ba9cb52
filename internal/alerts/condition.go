package alerts

import (
	"strconv"
	"strings"

	"github.com/churnsight/churnsight/internal/analytics"
)

// evalCondition evaluates a rule condition string against a dataset summary.
//
// Supported expressions (field operator value):
//
//	churn_fraction > 0.3
//	churn_count > 100
//	mean_prediction > 0.5
//	employee_count < 500
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, sum analytics.Summary) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	v, ok := numericField(field, sum)
	if !ok {
		return false, 0
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// numericField maps a field name to its value in the summary.
func numericField(field string, sum analytics.Summary) (float64, bool) {
	switch field {
	case "churn_fraction":
		return sum.ChurnFraction, true
	case "churn_count":
		return float64(sum.ChurnCount), true
	case "mean_prediction":
		return sum.MeanPrediction, true
	case "employee_count":
		return float64(sum.EmployeeCount), true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
