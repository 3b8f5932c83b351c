package geometry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

var (
	// ErrEmptyScene is returned when building a BVH over zero primitives
	ErrEmptyScene = errors.New("empty scene: no primitives to build a BVH from")
	// ErrUnboundedPrimitive is returned when a primitive has no bounding box
	ErrUnboundedPrimitive = errors.New("primitive has no bounding box")
)

// bvhNode is one interior node in the arena. A child reference >= 0 is an index
// into the node arena; a negative reference r names primitive -r-1.
type bvhNode struct {
	box         core.AABB
	left, right int
}

func primitiveRef(i int) int  { return -i - 1 }
func primitiveIndex(r int) int { return -r - 1 }

// BVH is a bounding volume hierarchy stored as an index-based arena.
// It is immutable after NewBVH returns and safe for concurrent Hit calls.
// Node boxes cover the build interval, so rays should carry times inside it.
type BVH struct {
	nodes      []bvhNode   // nodes[0] is the root
	primitives []Hittable  // arena of leaf primitives
	boxes      []core.AABB // primitive boxes over [t0, t1]
	t0, t1     float64
}

// BVHStats describes the shape of a built tree
type BVHStats struct {
	Nodes      int
	Leaves     int // nodes whose children are both primitives
	Primitives int
	MaxDepth   int
}

// NewBVH builds a BVH over primitives whose boxes cover the time interval [t0, t1].
// The input slice is not modified.
func NewBVH(primitives []Hittable, t0, t1 float64) (*BVH, error) {
	if len(primitives) == 0 {
		return nil, ErrEmptyScene
	}

	bvh := &BVH{
		primitives: make([]Hittable, len(primitives)),
		boxes:      make([]core.AABB, len(primitives)),
		nodes:      make([]bvhNode, 0, 2*len(primitives)),
		t0:         t0,
		t1:         t1,
	}
	copy(bvh.primitives, primitives)

	indices := make([]int, len(primitives))
	for i, primitive := range primitives {
		box, ok := primitive.BoundingBox(t0, t1)
		if !ok {
			return nil, fmt.Errorf("%w: primitive %d (%s)", ErrUnboundedPrimitive, i, primitive.Kind())
		}
		bvh.boxes[i] = box
		indices[i] = i
	}

	bvh.build(indices)
	return bvh, nil
}

// build appends a node covering indices and returns its arena index
func (bvh *BVH) build(indices []int) int {
	nodeIndex := len(bvh.nodes)
	bvh.nodes = append(bvh.nodes, bvhNode{})

	var node bvhNode
	switch len(indices) {
	case 1:
		// A single primitive sits in both children
		i := indices[0]
		node = bvhNode{box: bvh.boxes[i], left: primitiveRef(i), right: primitiveRef(i)}
	case 2:
		a, b := indices[0], indices[1]
		axis := bvh.splitAxis(indices)
		if bvh.centroid(b, axis) < bvh.centroid(a, axis) {
			a, b = b, a
		}
		node = bvhNode{
			box:   bvh.boxes[a].Union(bvh.boxes[b]),
			left:  primitiveRef(a),
			right: primitiveRef(b),
		}
	default:
		axis := bvh.splitAxis(indices)
		sort.SliceStable(indices, func(i, j int) bool {
			return bvh.centroid(indices[i], axis) < bvh.centroid(indices[j], axis)
		})

		mid := len(indices) / 2
		left := bvh.build(indices[:mid])
		right := bvh.build(indices[mid:])
		node = bvhNode{
			box:   bvh.nodes[left].box.Union(bvh.nodes[right].box),
			left:  left,
			right: right,
		}
	}

	bvh.nodes[nodeIndex] = node
	return nodeIndex
}

// splitAxis picks the axis with the longest extent of the primitives' centroids
func (bvh *BVH) splitAxis(indices []int) int {
	centers := make([]core.Vec3, len(indices))
	for i, index := range indices {
		centers[i] = bvh.boxes[index].Center()
	}
	return core.NewAABBFromPoints(centers...).LongestAxis()
}

func (bvh *BVH) centroid(primitive, axis int) float64 {
	return bvh.boxes[primitive].Center().Axis(axis)
}

// Hit returns the nearest intersection in [tMin, tMax).
// Traversal uses an explicit stack and shrinks the search interval after every hit,
// so the result matches a linear scan over all primitives.
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	var closest material.HitRecord
	hitAnything := false
	closestSoFar := tMax

	var backing [64]int
	stack := append(backing[:0], 0)

	for len(stack) > 0 {
		ref := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if ref < 0 {
			if rec, ok := bvh.primitives[primitiveIndex(ref)].Hit(ray, tMin, closestSoFar); ok {
				hitAnything = true
				closestSoFar = rec.T
				closest = rec
			}
			continue
		}

		node := &bvh.nodes[ref]
		if !node.box.Hit(ray, tMin, closestSoFar) {
			continue
		}

		// Left is popped first
		if node.right != node.left {
			stack = append(stack, node.right)
		}
		stack = append(stack, node.left)
	}

	return closest, hitAnything
}

// BoundingBox returns the root box when [t0, t1] lies inside the build interval,
// otherwise the union of the primitive boxes over [t0, t1]
func (bvh *BVH) BoundingBox(t0, t1 float64) (core.AABB, bool) {
	if t0 >= bvh.t0 && t1 <= bvh.t1 {
		return bvh.nodes[0].box, true
	}

	var box core.AABB
	for i, primitive := range bvh.primitives {
		primitiveBox, ok := primitive.BoundingBox(t0, t1)
		if !ok {
			return core.AABB{}, false
		}
		if i == 0 {
			box = primitiveBox
		} else {
			box = box.Union(primitiveBox)
		}
	}
	return box, true
}

func (bvh *BVH) Kind() Kind { return KindBVH }

// Primitives returns the number of primitives in the tree
func (bvh *BVH) Primitives() int {
	return len(bvh.primitives)
}

// Stats walks the tree and reports its shape
func (bvh *BVH) Stats() BVHStats {
	stats := BVHStats{Nodes: len(bvh.nodes), Primitives: len(bvh.primitives)}

	type entry struct{ node, depth int }
	stack := []entry{{0, 1}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		stats.MaxDepth = max(stats.MaxDepth, e.depth)
		node := bvh.nodes[e.node]
		if node.left < 0 && node.right < 0 {
			stats.Leaves++
		}
		for _, child := range []int{node.left, node.right} {
			if child >= 0 {
				stack = append(stack, entry{child, e.depth + 1})
			}
		}
	}

	return stats
}

// Validate checks that every node's box contains the boxes of both children
func (bvh *BVH) Validate() error {
	for i, node := range bvh.nodes {
		if !node.box.IsValid() {
			return fmt.Errorf("node %d has an inverted box %v", i, node.box)
		}
		for _, child := range []int{node.left, node.right} {
			childBox := bvh.refBox(child)
			if !node.box.Contains(childBox) {
				return fmt.Errorf("node %d box %v does not contain child %d box %v", i, node.box, child, childBox)
			}
		}
	}
	return nil
}

func (bvh *BVH) refBox(ref int) core.AABB {
	if ref < 0 {
		return bvh.boxes[primitiveIndex(ref)]
	}
	return bvh.nodes[ref].box
}
