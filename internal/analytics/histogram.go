package analytics

import (
	"github.com/churnsight/churnsight/internal/dataset"
)

// DefaultBinWidth matches the slider step, so histogram bars line up with
// the positions a user can pick.
const DefaultBinWidth = 0.1

// Bin is one histogram bucket over the prediction score domain [0, 1].
// Low is inclusive; High is exclusive except for the last bin, which also
// absorbs a score of exactly 1.0.
type Bin struct {
	Low   float64
	High  float64
	Count int
}

// Histogram buckets every prediction score into bins of binWidth over [0, 1].
// A non-positive binWidth falls back to DefaultBinWidth. Scores outside
// [0, 1] are clamped into the edge bins rather than dropped.
func Histogram(t *dataset.Table, binWidth float64) []Bin {
	if binWidth <= 0 {
		binWidth = DefaultBinWidth
	}

	n := int(1/binWidth + 0.5)
	if n < 1 {
		n = 1
	}
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Low = float64(i) * binWidth
		bins[i].High = float64(i+1) * binWidth
	}
	bins[n-1].High = 1

	for _, r := range t.Rows {
		i := int(r.Prediction / binWidth)
		if i < 0 {
			i = 0
		}
		if i >= n {
			i = n - 1
		}
		bins[i].Count++
	}
	return bins
}
