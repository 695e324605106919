// Package forest trains and evaluates the random-forest bin classifier and
// reads and writes its model artifact.
package forest

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/floats"
)

const FormatVersion = 1

var (
	ErrFeatureCount = errors.New("feature count mismatch")
	ErrNoTrees      = errors.New("model has no trees")
)

type Options struct {
	Trees           int
	Seed            uint64
	MaxDepth        int // 0 grows until leaves are pure
	MinSamplesSplit int
	MaxFeatures     int // 0 means floor(sqrt(features))
}

func DefaultOptions() Options {
	return Options{Trees: 100, Seed: 42, MinSamplesSplit: 2}
}

type Forest struct {
	Format   int      `json:"format"`
	Features []string `json:"features"`
	Classes  int      `json:"classes"`
	Trees    []Tree   `json:"trees"`
}

// Fit grows opts.Trees CART trees, each on a bootstrap sample of ds.
// The result is fully determined by opts.Seed.
func Fit(ds Dataset, features []string, classes int, opts Options) (*Forest, error) {
	if ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if opts.Trees <= 0 {
		return nil, fmt.Errorf("trees must be positive, got %d", opts.Trees)
	}
	for i, row := range ds.X {
		if len(row) != len(features) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrFeatureCount, i, len(row), len(features))
		}
		if ds.Y[i] < 0 || ds.Y[i] >= classes {
			return nil, fmt.Errorf("row %d: label %d outside 0..%d", i, ds.Y[i], classes-1)
		}
	}

	maxFeatures := opts.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(len(features)))))
	}
	maxFeatures = min(maxFeatures, len(features))

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	f := &Forest{
		Format:   FormatVersion,
		Features: slices.Clone(features),
		Classes:  classes,
		Trees:    make([]Tree, 0, opts.Trees),
	}
	for range opts.Trees {
		b := &builder{
			x:           ds.X,
			y:           ds.Y,
			classes:     classes,
			maxFeatures: maxFeatures,
			maxDepth:    opts.MaxDepth,
			minSplit:    max(opts.MinSamplesSplit, 2),
			rng:         rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64())),
		}
		b.grow(bootstrap(b.rng, ds.Len()), 0)
		f.Trees = append(f.Trees, Tree{Nodes: b.nodes})
	}
	return f, nil
}

func bootstrap(rng *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.IntN(n)
	}
	return idx
}

// Predict returns the majority vote. Ties go to the lowest label.
func (f *Forest) Predict(x []float64) (int, error) {
	votes, err := f.Votes(x)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(votes), nil
}

// Votes returns the share of trees voting for each class.
func (f *Forest) Votes(x []float64) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, ErrNoTrees
	}
	if len(x) != len(f.Features) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(x), len(f.Features))
	}
	votes := make([]float64, f.Classes)
	for _, t := range f.Trees {
		votes[t.predict(x)]++
	}
	floats.Scale(1/float64(len(f.Trees)), votes)
	return votes, nil
}

func (f *Forest) PredictAll(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i, x := range X {
		label, err := f.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = label
	}
	return out, nil
}
