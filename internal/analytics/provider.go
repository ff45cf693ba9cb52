package analytics

import (
	"sync"

	"github.com/churnsight/churnsight/internal/dataset"
)

// Snapshot bundles a loaded dataset with the derived values that are fixed
// for its lifetime: the importance ranking (threshold-independent, so it is
// computed once here rather than on every render) and the table column
// projection derived from it.
type Snapshot struct {
	Data *dataset.Dataset

	// Importance is the top-N ranking, ascending by importance.
	Importance []FeatureImportance

	// TopColumns is the display-name column list in the same ascending
	// order, used to project the at-risk employee table.
	TopColumns []string
}

// NewSnapshot computes the derived state for ds. topN is the importance
// ranking depth (config data.top_features).
func NewSnapshot(ds *dataset.Dataset, topN int) (*Snapshot, error) {
	imp, err := TopFeatures(ds.Attributions, topN)
	if err != nil {
		return nil, err
	}

	cols := make([]string, len(imp))
	for i, fi := range imp {
		cols[i] = fi.Feature
	}

	return &Snapshot{Data: ds, Importance: imp, TopColumns: cols}, nil
}

// Provider hands the current Snapshot to request handlers. The snapshot
// itself is immutable; a dataset reload swaps in a whole new one, so
// readers never observe a partially updated dataset.
type Provider struct {
	mu  sync.RWMutex
	cur *Snapshot
}

// NewProvider creates a Provider serving s.
func NewProvider(s *Snapshot) *Provider {
	return &Provider{cur: s}
}

// Current returns the active snapshot.
func (p *Provider) Current() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cur
}

// Swap replaces the active snapshot.
func (p *Provider) Swap(s *Snapshot) {
	p.mu.Lock()
	p.cur = s
	p.mu.Unlock()
}
