package forest

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// synthetic builds a separable dataset following the bin labelling rules.
func synthetic(n int, seed uint64) Dataset {
	rng := rand.New(rand.NewPCG(seed, seed))
	var ds Dataset
	for i := 0; i < n; i++ {
		gas := float64(200 + rng.IntN(1300))
		dist := float64(1 + rng.IntN(27))
		delta := float64(rng.IntN(100) - 50)
		label := 0
		switch {
		case i%10 == 0:
			delta = float64(600 + rng.IntN(400))
			label = 3
		case gas > 800:
			label = 2
		case dist < 5:
			label = 1
		}
		ds.X = append(ds.X, []float64{gas, dist, delta})
		ds.Y = append(ds.Y, label)
	}
	return ds
}

func TestFitPredict(t *testing.T) {
	ds := synthetic(400, 1)
	train, test := ds.Split(0.2, 42)

	opts := DefaultOptions()
	opts.Trees = 25
	f, err := Fit(train, FeatureNames, 4, opts)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if len(f.Trees) != 25 {
		t.Fatalf("expected 25 trees, got %d", len(f.Trees))
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("fitted model fails validation: %v", err)
	}

	pred, err := f.PredictAll(test.X)
	if err != nil {
		t.Fatalf("PredictAll: %v", err)
	}
	report, err := Evaluate(test.Y, pred, []string{"normal", "full", "decomposing", "anomalous"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Accuracy < 0.9 {
		t.Errorf("accuracy %.2f on separable data, want >= 0.9\n%s", report.Accuracy, report)
	}
}

func TestFitDeterministic(t *testing.T) {
	ds := synthetic(120, 7)
	opts := Options{Trees: 5, Seed: 42, MinSamplesSplit: 2}

	a, err := Fit(ds, FeatureNames, 4, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Fit(ds, FeatureNames, 4, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Trees {
		if len(a.Trees[i].Nodes) != len(b.Trees[i].Nodes) {
			t.Fatalf("tree %d differs between runs with the same seed", i)
		}
		for j := range a.Trees[i].Nodes {
			if a.Trees[i].Nodes[j] != b.Trees[i].Nodes[j] {
				t.Fatalf("tree %d node %d differs between runs", i, j)
			}
		}
	}
}

func TestFitErrors(t *testing.T) {
	if _, err := Fit(Dataset{}, FeatureNames, 4, DefaultOptions()); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}

	short := Dataset{X: [][]float64{{1, 2}}, Y: []int{0}}
	if _, err := Fit(short, FeatureNames, 4, DefaultOptions()); !errors.Is(err, ErrFeatureCount) {
		t.Errorf("expected ErrFeatureCount, got %v", err)
	}

	badLabel := Dataset{X: [][]float64{{1, 2, 3}}, Y: []int{9}}
	if _, err := Fit(badLabel, FeatureNames, 4, DefaultOptions()); err == nil {
		t.Error("expected error for label outside class range")
	}

	if _, err := Fit(synthetic(10, 1), FeatureNames, 4, Options{Trees: 0}); err == nil {
		t.Error("expected error for zero trees")
	}
}

func TestPredictSingleClass(t *testing.T) {
	ds := Dataset{
		X: [][]float64{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}},
		Y: []int{2, 2, 2},
	}
	f, err := Fit(ds, FeatureNames, 4, Options{Trees: 3, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.Predict([]float64{10, 10, 10})
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Errorf("Predict = %d, want 2", got)
	}
}

func TestPredictFeatureCount(t *testing.T) {
	f, err := Fit(synthetic(30, 3), FeatureNames, 4, Options{Trees: 2, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Predict([]float64{1, 2}); !errors.Is(err, ErrFeatureCount) {
		t.Errorf("expected ErrFeatureCount, got %v", err)
	}

	empty := &Forest{Format: FormatVersion, Features: FeatureNames, Classes: 4}
	if _, err := empty.Predict([]float64{1, 2, 3}); !errors.Is(err, ErrNoTrees) {
		t.Errorf("expected ErrNoTrees, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	f, err := Fit(synthetic(60, 5), FeatureNames, 4, Options{Trees: 4, Seed: 42})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := Save(path, f); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, x := range [][]float64{{300, 20, 0}, {1400, 20, 10}, {400, 2, 0}, {700, 10, 900}} {
		want, _ := f.Predict(x)
		got, err := loaded.Predict(x)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Predict(%v) after reload = %d, want %d", x, got, want)
		}
	}
}

func TestLoadRejectsCorruptModels(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "garbage"},
		{"wrong format", `{"format":9,"features":["a"],"classes":2,"trees":[{"nodes":[{"c":0,"leaf":true}]}]}`},
		{"no trees", `{"format":1,"features":["a"],"classes":2,"trees":[]}`},
		{"label out of range", `{"format":1,"features":["a"],"classes":2,"trees":[{"nodes":[{"c":5,"leaf":true}]}]}`},
		{"child cycle", `{"format":1,"features":["a"],"classes":2,"trees":[{"nodes":[{"f":0,"t":1,"l":0,"r":0,"c":0}]}]}`},
		{"bad feature", `{"format":1,"features":["a"],"classes":2,"trees":[{"nodes":[{"f":3,"t":1,"l":1,"r":2,"c":0},{"c":0,"leaf":true},{"c":1,"leaf":true}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.json")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	names := []string{"normal", "full", "decomposing", "anomalous"}
	yTrue := []int{0, 0, 1, 1, 2, 3}
	yPred := []int{0, 1, 1, 1, 2, 0}

	r, err := Evaluate(yTrue, yPred, names)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := r.Accuracy, 4.0/6.0; got != want {
		t.Errorf("accuracy = %v, want %v", got, want)
	}
	full := r.Classes[1]
	if full.Precision != 2.0/3.0 || full.Recall != 1 || full.Support != 2 {
		t.Errorf("full scores = %+v", full)
	}
	if r.Classes[3].F1 != 0 {
		t.Errorf("anomalous F1 = %v, want 0", r.Classes[3].F1)
	}
	if r.Confusion.At(3, 0) != 1 {
		t.Errorf("confusion[3][0] = %v, want 1", r.Confusion.At(3, 0))
	}

	out := r.String()
	for _, name := range names {
		if !strings.Contains(out, name) {
			t.Errorf("report missing class %q:\n%s", name, out)
		}
	}

	if _, err := Evaluate([]int{0}, []int{0, 1}, names); err == nil {
		t.Error("expected length mismatch error")
	}
	if _, err := Evaluate([]int{5}, []int{0}, names); err == nil {
		t.Error("expected out-of-range label error")
	}
}
