package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/churnsight/churnsight/internal/config"
)

// --- helpers ----------------------------------------------------------------

const predictionsCSV = `EmployeeNumber,Age,OverTime,YearsAtCompany,Attrition.Yes
1,41,Yes,6,0.72
2,35,No,10,0.15
4,28,Yes,2,0.55
`

const attributionsCSV = `EmployeeNumber,contrib_Age,contrib_OverTime,contrib_bias
1,0.12,-0.30,0.05
2,-0.04,0.01,0.05
4,0.20,0.45,0.05
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func testDataConfig(t *testing.T, predictions, attributions string) config.DataConfig {
	t.Helper()
	dir := t.TempDir()
	return config.DataConfig{
		PredictionsPath:  writeFile(t, dir, "predictions.csv", predictions),
		AttributionsPath: writeFile(t, dir, "shapley_values.csv", attributions),
		PredictionColumn: "Attrition.Yes",
		TopFeatures:      5,
	}
}

// --- Load -------------------------------------------------------------------

func TestLoad_RenamesPredictionColumn(t *testing.T) {
	ds, err := Load(testDataConfig(t, predictionsCSV, attributionsCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, col := range ds.Predictions.Columns {
		if col == "Attrition.Yes" {
			t.Error("Columns: source probability column name leaked through")
		}
	}
	if got := indexOf(ds.Predictions.Columns, ColPrediction); got < 0 {
		t.Errorf("Columns: %q not present in %v", ColPrediction, ds.Predictions.Columns)
	}

	r, ok := ds.Predictions.Row(1)
	if !ok {
		t.Fatal("Row(1): not found")
	}
	if r.Prediction != 0.72 {
		t.Errorf("Prediction: got %v, want 0.72", r.Prediction)
	}
	if r.Values[ColPrediction] != "0.72" {
		t.Errorf("Values[Prediction]: got %q, want \"0.72\"", r.Values[ColPrediction])
	}
}

func TestLoad_ParsesTenureAndID(t *testing.T) {
	ds, err := Load(testDataConfig(t, predictionsCSV, attributionsCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Predictions.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", ds.Predictions.Len())
	}
	r, _ := ds.Predictions.Row(4)
	if r.YearsAtCompany != 2 {
		t.Errorf("YearsAtCompany: got %v, want 2", r.YearsAtCompany)
	}
	if _, ok := ds.Predictions.Row(3); ok {
		t.Error("Row(3): expected absent employee number to miss")
	}
}

func TestLoad_AttributionFeaturesExcludeBias(t *testing.T) {
	ds, err := Load(testDataConfig(t, predictionsCSV, attributionsCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	m := ds.Attributions
	if len(m.Features) != 2 {
		t.Fatalf("Features: got %v, want 2 contrib columns", m.Features)
	}
	for _, f := range m.Features {
		if f == BiasColumn {
			t.Errorf("Features: bias column %q included", BiasColumn)
		}
	}

	row, ok := m.Row(1)
	if !ok {
		t.Fatal("Row(1): not found")
	}
	if row.Contribs["contrib_OverTime"] != -0.30 {
		t.Errorf("contrib_OverTime: got %v, want -0.30", row.Contribs["contrib_OverTime"])
	}
	if row.Bias != 0.05 {
		t.Errorf("Bias: got %v, want 0.05", row.Bias)
	}
}

func TestLoad_MissingPredictionColumn(t *testing.T) {
	bad := `EmployeeNumber,Age,YearsAtCompany
1,41,6
`
	_, err := Load(testDataConfig(t, bad, attributionsCSV))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err: got %v, want ErrMissingColumn", err)
	}
}

func TestLoad_MissingTenureColumn(t *testing.T) {
	bad := `EmployeeNumber,Age,Attrition.Yes
1,41,0.72
`
	_, err := Load(testDataConfig(t, bad, attributionsCSV))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err: got %v, want ErrMissingColumn", err)
	}
}

func TestLoad_FieldCountMismatch(t *testing.T) {
	bad := `EmployeeNumber,YearsAtCompany,Attrition.Yes
1,6
`
	_, err := Load(testDataConfig(t, bad, attributionsCSV))
	if !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("err: got %v, want ErrMalformedRow", err)
	}
}

func TestLoad_UnparseableProbability(t *testing.T) {
	bad := `EmployeeNumber,YearsAtCompany,Attrition.Yes
1,6,not-a-number
`
	_, err := Load(testDataConfig(t, bad, attributionsCSV))
	if !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("err: got %v, want ErrMalformedRow", err)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	_, err := Load(testDataConfig(t, "", attributionsCSV))
	if !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("err: got %v, want ErrMalformedRow", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg := testDataConfig(t, predictionsCSV, attributionsCSV)
	cfg.PredictionsPath = filepath.Join(t.TempDir(), "nope.csv")
	if _, err := Load(cfg); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoad_DuplicateEmployeeLastWins(t *testing.T) {
	dup := `EmployeeNumber,YearsAtCompany,Attrition.Yes
1,6,0.72
1,9,0.20
`
	ds, err := Load(testDataConfig(t, dup, attributionsCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r, _ := ds.Predictions.Row(1)
	if r.Prediction != 0.20 {
		t.Errorf("Prediction after duplicate: got %v, want 0.20", r.Prediction)
	}
}
