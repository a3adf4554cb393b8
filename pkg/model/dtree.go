package model

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// DecisionTreeClassifier is a CART-style classifier over numeric features.
type DecisionTreeClassifier struct {
	MaxDepth            int     // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit     int     // minimum samples to attempt a split
	MinSamplesLeaf      int     // minimum samples required in each leaf
	Criterion           string  // "gini" (default) or "entropy"
	MaxFeatures         int     // 0 => all features, >0 => features sampled per split
	MinImpurityDecrease float64 // minimal impurity decrease to accept a split
	RandomState         int64   // seed for feature subsampling

	root     *TreeNode
	classes  []int
	classPos map[int]int
}

// TreeNode is one node of a fitted tree. Internal nodes send rows with
// x[Feature] <= Threshold to Left.
type TreeNode struct {
	Leaf      bool
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode

	Samples  int
	Impurity float64
	Counts   []int // per class, aligned with Classes()
	Class    int   // majority label
}

// TreeOption configures a DecisionTreeClassifier.
type TreeOption func(*DecisionTreeClassifier)

func WithMaxDepth(d int) TreeOption { return func(t *DecisionTreeClassifier) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) TreeOption {
	return func(t *DecisionTreeClassifier) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) TreeOption {
	return func(t *DecisionTreeClassifier) { t.MinSamplesLeaf = n }
}
func WithCriterion(c string) TreeOption { return func(t *DecisionTreeClassifier) { t.Criterion = c } }
func WithMaxFeatures(k int) TreeOption  { return func(t *DecisionTreeClassifier) { t.MaxFeatures = k } }
func WithMinImpurityDecrease(v float64) TreeOption {
	return func(t *DecisionTreeClassifier) { t.MinImpurityDecrease = v }
}
func WithRandomState(seed int64) TreeOption {
	return func(t *DecisionTreeClassifier) { t.RandomState = seed }
}

// NewDecisionTreeClassifier returns a classifier with sensible defaults.
func NewDecisionTreeClassifier(opts ...TreeOption) *DecisionTreeClassifier {
	d := &DecisionTreeClassifier{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
		RandomState:     42,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Fit trains the tree on X (n x p) and labels y.
func (t *DecisionTreeClassifier) Fit(X *mat.Dense, y []int) error {
	if err := checkXY(X, y); err != nil {
		return err
	}
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	return t.fitIndices(X, y, idx)
}

// fitIndices grows the tree on the rows listed in idx. Repeated indices
// count as repeated samples.
func (t *DecisionTreeClassifier) fitIndices(X *mat.Dense, y []int, idx []int) error {
	if len(idx) == 0 {
		return errors.New("dtree: no samples")
	}
	if t.Criterion != "gini" && t.Criterion != "entropy" {
		return errors.New("dtree: criterion must be gini or entropy")
	}
	t.classes, t.classPos = uniqueLabels(y)

	impurity := giniFromCounts
	if t.Criterion == "entropy" {
		impurity = entropyFromCounts
	}
	rnd := rand.New(rand.NewSource(t.RandomState))
	t.root = t.buildNode(X, y, idx, 0, impurity, rnd)
	return nil
}

// Classes returns the sorted labels seen during Fit.
func (t *DecisionTreeClassifier) Classes() []int { return t.classes }

// Root returns the root of the fitted tree, nil before Fit.
func (t *DecisionTreeClassifier) Root() *TreeNode { return t.root }

// Predict returns the majority label of the leaf each row falls into.
func (t *DecisionTreeClassifier) Predict(X *mat.Dense) ([]int, error) {
	if t.root == nil {
		return nil, ErrNotFitted
	}
	r, _ := X.Dims()
	out := make([]int, r)
	parallelRows(r, func(s, e int) {
		for i := s; i < e; i++ {
			out[i] = t.leaf(X.RawRowView(i)).Class
		}
	})
	return out, nil
}

// PredictProba returns the class frequencies of the leaf each row falls into.
func (t *DecisionTreeClassifier) PredictProba(X *mat.Dense) (*mat.Dense, error) {
	if t.root == nil {
		return nil, ErrNotFitted
	}
	r, _ := X.Dims()
	out := mat.NewDense(r, len(t.classes), nil)
	parallelRows(r, func(s, e int) {
		for i := s; i < e; i++ {
			leaf := t.leaf(X.RawRowView(i))
			row := out.RawRowView(i)
			for k, c := range leaf.Counts {
				row[k] = float64(c) / float64(leaf.Samples)
			}
		}
	})
	return out, nil
}

// Depth returns the length of the longest root to leaf path.
func (t *DecisionTreeClassifier) Depth() int { return depth(t.root) }

func depth(n *TreeNode) int {
	if n == nil || n.Leaf {
		return 0
	}
	return 1 + max(depth(n.Left), depth(n.Right))
}

func (t *DecisionTreeClassifier) leaf(x []float64) *TreeNode {
	node := t.root
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// splitResult is the best split found for a single feature.
type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	leftIdx   []int
	rightIdx  []int
}

type pair struct {
	v float64
	i int
}

func (t *DecisionTreeClassifier) buildNode(X *mat.Dense, y []int, idx []int, d int, impurity func([]int) float64, rnd *rand.Rand) *TreeNode {
	counts := make([]int, len(t.classes))
	for _, i := range idx {
		counts[t.classPos[y[i]]]++
	}
	node := &TreeNode{
		Leaf:     true,
		Samples:  len(idx),
		Impurity: impurity(counts),
		Counts:   counts,
		Class:    t.classes[argmax(counts)],
	}
	if isPure(counts) || len(idx) < t.MinSamplesSplit || (t.MaxDepth > 0 && d >= t.MaxDepth) {
		return node
	}

	_, p := X.Dims()
	features := make([]int, p)
	for j := range features {
		features[j] = j
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		rnd.Shuffle(p, func(a, b int) { features[a], features[b] = features[b], features[a] })
		features = features[:t.MaxFeatures]
		sort.Ints(features)
	}

	// One goroutine per candidate feature; results are indexed so the
	// winner does not depend on scheduling.
	results := make([]splitResult, len(features))
	var wg sync.WaitGroup
	for k, f := range features {
		wg.Add(1)
		go func(k, f int) {
			defer wg.Done()
			results[k] = t.bestSplitForFeature(X, y, idx, f, node.Impurity, impurity)
		}(k, f)
	}
	wg.Wait()

	best := splitResult{feature: -1}
	for _, r := range results {
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}
	if best.feature == -1 || best.gain <= t.MinImpurityDecrease {
		return node
	}

	node.Leaf = false
	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = t.buildNode(X, y, best.leftIdx, d+1, impurity, rnd)
	node.Right = t.buildNode(X, y, best.rightIdx, d+1, impurity, rnd)
	return node
}

// bestSplitForFeature sorts the rows by feature f and sweeps every boundary
// between distinct values, moving one row at a time from the right class
// counts to the left ones.
func (t *DecisionTreeClassifier) bestSplitForFeature(X *mat.Dense, y []int, idx []int, f int, parentImpurity float64, impurity func([]int) float64) splitResult {
	result := splitResult{feature: -1}
	n := len(idx)
	vals := make([]pair, n)
	for k, i := range idx {
		vals[k] = pair{X.At(i, f), i}
	}
	sort.Slice(vals, func(a, b int) bool { return vals[a].v < vals[b].v })

	nc := len(t.classes)
	left := make([]int, nc)
	right := make([]int, nc)
	for _, pv := range vals {
		right[t.classPos[y[pv.i]]]++
	}

	split := -1
	for s := 1; s < n; s++ {
		c := t.classPos[y[vals[s-1].i]]
		left[c]++
		right[c]--
		if vals[s].v == vals[s-1].v {
			continue
		}
		if s < t.MinSamplesLeaf || n-s < t.MinSamplesLeaf {
			continue
		}
		weighted := float64(s)/float64(n)*impurity(left) + float64(n-s)/float64(n)*impurity(right)
		gain := parentImpurity - weighted
		if gain > result.gain {
			result.gain = gain
			result.feature = f
			result.threshold = (vals[s-1].v + vals[s].v) / 2.0
			split = s
		}
	}
	if split < 0 {
		return result
	}
	result.leftIdx = make([]int, 0, split)
	result.rightIdx = make([]int, 0, n-split)
	for k, pv := range vals {
		if k < split {
			result.leftIdx = append(result.leftIdx, pv.i)
		} else {
			result.rightIdx = append(result.rightIdx, pv.i)
		}
	}
	return result
}

func giniFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		p := float64(c) / n
		res += p * (1 - p)
	}
	return res
}

func entropyFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		res -= p * math.Log2(p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func argmax(counts []int) int {
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return best
}
