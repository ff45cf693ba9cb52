// Package session manages per-browser threshold state. Every UI session
// owns its own churn cutoff, created at the slider default and mutated only
// by the threshold control; idle sessions are evicted by TTL.
package session
