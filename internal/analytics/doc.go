// Package analytics derives everything the dashboard shows from the loaded
// dataset: the feature importance ranking (mean absolute attribution, bias
// excluded), the threshold-filtered churn view with its three summary
// statistics, the prediction score histogram, and per-employee attribution
// breakdowns.
//
// All computations are pure functions of their inputs. The importance
// ranking is independent of the threshold, so Snapshot computes it once per
// dataset load instead of on every request.
package analytics
