package forest

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Node is one CART node. Children always sit after their parent in the
// node slice, so a tree can be walked without cycle checks.
type Node struct {
	Feature   int     `json:"f,omitempty"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Label     int     `json:"c"`
	Leaf      bool    `json:"leaf,omitempty"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t Tree) predict(x []float64) int {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Label
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type builder struct {
	x           [][]float64
	y           []int
	classes     int
	maxFeatures int
	maxDepth    int
	minSplit    int
	rng         *rand.Rand
	nodes       []Node
}

type split struct {
	feature   int
	threshold float64
	score     float64
}

func (b *builder) grow(idx []int, depth int) int {
	counts := b.counts(idx)
	id := len(b.nodes)
	label := floats.MaxIdx(counts)
	b.nodes = append(b.nodes, Node{Leaf: true, Label: label})

	pure := floats.Max(counts) == float64(len(idx))
	if pure || len(idx) < b.minSplit || (b.maxDepth > 0 && depth >= b.maxDepth) {
		return id
	}

	s, ok := b.bestSplit(idx)
	if !ok {
		return id
	}

	left, right := b.partition(idx, s.feature, s.threshold)
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[id] = Node{Feature: s.feature, Threshold: s.threshold, Left: l, Right: r, Label: label}
	return id
}

// bestSplit samples maxFeatures candidate features, and keeps drawing past
// that budget only while no valid split has been found.
func (b *builder) bestSplit(idx []int) (split, bool) {
	best := split{score: math.Inf(1)}
	found := false
	for visited, f := range b.rng.Perm(len(b.x[0])) {
		if visited >= b.maxFeatures && found {
			break
		}
		if s, ok := b.splitOn(idx, f); ok && s.score < best.score {
			best, found = s, true
		}
	}
	return best, found
}

// splitOn returns the threshold on feature f minimising weighted Gini impurity.
func (b *builder) splitOn(idx []int, f int) (split, bool) {
	order := slices.Clone(idx)
	slices.SortFunc(order, func(i, j int) int {
		return cmp.Compare(b.x[i][f], b.x[j][f])
	})

	left := make([]float64, b.classes)
	right := b.counts(order)
	n := len(order)

	best := split{feature: f, score: math.Inf(1)}
	found := false
	for i := 0; i < n-1; i++ {
		c := b.y[order[i]]
		left[c]++
		right[c]--

		lo, hi := b.x[order[i]][f], b.x[order[i+1]][f]
		if lo == hi {
			continue
		}

		nl, nr := float64(i+1), float64(n-i-1)
		score := nl*gini(left, nl) + nr*gini(right, nr)
		if score < best.score {
			best.score = score
			best.threshold = lo + (hi-lo)/2
			if best.threshold == hi {
				best.threshold = lo
			}
			found = true
		}
	}
	return best, found
}

func (b *builder) partition(idx []int, f int, threshold float64) (left, right []int) {
	for _, i := range idx {
		if b.x[i][f] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func (b *builder) counts(idx []int) []float64 {
	counts := make([]float64, b.classes)
	for _, i := range idx {
		counts[b.y[i]]++
	}
	return counts
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	return 1 - floats.Dot(counts, counts)/(n*n)
}
