package regression

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// treeNode is a node of a CART regression tree on a single predictor.
// Samples with x <= threshold go left.
type treeNode struct {
	leaf      bool
	value     float64
	threshold float64
	left      *treeNode
	right     *treeNode
}

type treeConfig struct {
	maxDepth       int // 0 = unlimited
	minSamplesLeaf int
}

// buildTree grows a variance-reduction tree over the rows listed in idx.
// idx may contain repeated rows (bootstrap samples).
func buildTree(x, y []float64, idx []int, depth int, cfg treeConfig) *treeNode {
	targets := make([]float64, len(idx))
	for i, row := range idx {
		targets[i] = y[row]
	}
	node := &treeNode{leaf: true, value: stat.Mean(targets, nil)}

	if cfg.maxDepth > 0 && depth >= cfg.maxDepth {
		return node
	}
	if len(idx) < 2*cfg.minSamplesLeaf || constant(targets) {
		return node
	}

	sorted := make([]int, len(idx))
	copy(sorted, idx)
	sort.SliceStable(sorted, func(i, j int) bool { return x[sorted[i]] < x[sorted[j]] })

	total := 0.0
	for _, row := range sorted {
		total += y[row]
	}
	n := float64(len(sorted))
	bestScore := total * total / n
	bestSplit := -1

	// Maximising sL²/nL + sR²/nR minimises the summed squared error of the children.
	left := 0.0
	for k := 1; k < len(sorted); k++ {
		left += y[sorted[k-1]]
		if k < cfg.minSamplesLeaf || len(sorted)-k < cfg.minSamplesLeaf {
			continue
		}
		if x[sorted[k-1]] == x[sorted[k]] {
			continue
		}
		right := total - left
		nl, nr := float64(k), n-float64(k)
		score := left*left/nl + right*right/nr
		if score > bestScore+1e-12 {
			bestScore = score
			bestSplit = k
		}
	}

	if bestSplit < 0 {
		return node
	}

	node.leaf = false
	node.threshold = (x[sorted[bestSplit-1]] + x[sorted[bestSplit]]) / 2
	node.left = buildTree(x, y, sorted[:bestSplit], depth+1, cfg)
	node.right = buildTree(x, y, sorted[bestSplit:], depth+1, cfg)
	return node
}

func (n *treeNode) predict(x float64) float64 {
	for !n.leaf {
		if x <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
