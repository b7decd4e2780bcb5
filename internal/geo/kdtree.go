package geo

import (
	"sort"

	"github.com/sells-group/canopy-cli/internal/model"
)

// kdNode is one node of the k-d tree. Each node exclusively owns its two
// subtrees; nothing outside the tree aliases into them.
type kdNode struct {
	tree  *model.Tree
	axis  int // 0 = latitude, 1 = longitude
	left  *kdNode
	right *kdNode
}

// KDTree is a balanced 2-d spatial index over a tree collection. Built once
// and immutable; queries are read-only and safe to run concurrently.
type KDTree struct {
	root *kdNode
	size int
}

// NewKDTree builds a balanced index over the given trees. The input slice
// is not modified. Construction sorts the working subset at every level,
// which is O(n log² n) but runs exactly once per pipeline.
func NewKDTree(trees []*model.Tree) *KDTree {
	working := make([]*model.Tree, len(trees))
	copy(working, trees)
	return &KDTree{root: build(working, 0), size: len(trees)}
}

// Size returns the number of indexed trees.
func (t *KDTree) Size() int { return t.size }

// build recursively partitions by alternating axis. The exact middle of the
// sorted subset (⌊n/2⌋) becomes this node's point, so equal coordinates may
// land on either side; the subtree invariant is ≤/≥, not strict.
func build(trees []*model.Tree, depth int) *kdNode {
	if len(trees) == 0 {
		return nil
	}
	axis := depth % 2
	sort.SliceStable(trees, func(i, j int) bool {
		return coord(trees[i], axis) < coord(trees[j], axis)
	})
	mid := len(trees) / 2
	return &kdNode{
		tree:  trees[mid],
		axis:  axis,
		left:  build(trees[:mid], depth+1),
		right: build(trees[mid+1:], depth+1),
	}
}

func coord(t *model.Tree, axis int) float64 {
	if axis == 0 {
		return t.Latitude
	}
	return t.Longitude
}

// NearestDistances returns the geodesic distances in meters from target to
// its k nearest indexed trees, sorted ascending. The target itself is
// excluded by pointer identity, so querying a tree that is in the index
// never returns a zero self-distance. Fewer than k distances are returned
// when the index holds fewer other trees.
func (t *KDTree) NearestDistances(target *model.Tree, k int) []float64 {
	if t.root == nil || k <= 0 {
		return nil
	}
	best := make([]float64, 0, k)
	t.root.search(target, k, &best)
	return best
}

// search descends toward the target's half-space first, offers this node's
// distance, then visits the far side only if the axis-only gap could still
// beat the current k-th best.
func (n *kdNode) search(target *model.Tree, k int, best *[]float64) {
	if n == nil {
		return
	}

	gap := coord(target, n.axis) - coord(n.tree, n.axis)
	near, far := n.left, n.right
	if gap > 0 {
		near, far = n.right, n.left
	}

	near.search(target, k, best)

	if n.tree != target {
		d := Haversine(target.Latitude, target.Longitude, n.tree.Latitude, n.tree.Longitude)
		offer(best, k, d)
	}

	axisDist := AxisDistance(n.axis, gap, target.Latitude)
	if len(*best) < k || axisDist < (*best)[len(*best)-1] {
		far.search(target, k, best)
	}
}

// offer inserts d into the capped sorted distance set, truncating back to
// k entries. At k=5 a sorted insert beats a heap.
func offer(best *[]float64, k int, d float64) {
	i := sort.SearchFloat64s(*best, d)
	if i >= k {
		return
	}
	*best = append(*best, 0)
	copy((*best)[i+1:], (*best)[i:])
	(*best)[i] = d
	if len(*best) > k {
		*best = (*best)[:k]
	}
}
