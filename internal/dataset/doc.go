// Package dataset loads the two precomputed CSV artifacts — the per-employee
// churn predictions and the per-employee feature attribution (Shapley) values —
// into immutable in-memory tables keyed by employee number.
//
// Both tables are loaded once at startup and shared read-only across all
// sessions; a reload (see Watch) builds a fresh Dataset rather than mutating
// the one in use. The raw probability column is renamed to "Prediction" on
// load so the rest of the server never sees the source column name.
package dataset
