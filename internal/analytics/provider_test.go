package analytics

import (
	"errors"
	"testing"

	"github.com/churnsight/churnsight/internal/dataset"
)

func snapshotDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	return &dataset.Dataset{
		Predictions: predTable(t, [3]float64{1, 0.6, 4}),
		Attributions: attrMatrix(t,
			[]string{"contrib_Age", "contrib_OverTime", "contrib_Income"},
			[][]float64{{0.1}, {0.5}, {0.3}},
		),
	}
}

func TestNewSnapshot_CachesImportanceAndColumns(t *testing.T) {
	s, err := NewSnapshot(snapshotDataset(t), 2)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	if len(s.Importance) != 2 {
		t.Fatalf("Importance: got %d entries, want 2", len(s.Importance))
	}
	// Ascending: Income (0.3) then OverTime (0.5).
	if s.Importance[0].Feature != "Income" || s.Importance[1].Feature != "OverTime" {
		t.Errorf("Importance order: got [%s %s], want [Income OverTime]",
			s.Importance[0].Feature, s.Importance[1].Feature)
	}
	if len(s.TopColumns) != 2 || s.TopColumns[0] != "Income" || s.TopColumns[1] != "OverTime" {
		t.Errorf("TopColumns: got %v, want [Income OverTime]", s.TopColumns)
	}
}

func TestNewSnapshot_NoFeatures(t *testing.T) {
	ds := &dataset.Dataset{
		Predictions:  predTable(t, [3]float64{1, 0.6, 4}),
		Attributions: dataset.NewAttributionMatrix(nil, nil),
	}
	if _, err := NewSnapshot(ds, 5); !errors.Is(err, ErrNoFeatures) {
		t.Fatalf("err: got %v, want ErrNoFeatures", err)
	}
}

func TestProvider_Swap(t *testing.T) {
	s1, err := NewSnapshot(snapshotDataset(t), 2)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	p := NewProvider(s1)
	if p.Current() != s1 {
		t.Fatal("Current: want the initial snapshot")
	}

	s2, err := NewSnapshot(snapshotDataset(t), 3)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	p.Swap(s2)
	if p.Current() != s2 {
		t.Fatal("Current after Swap: want the new snapshot")
	}
}
