package geometry

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// Kind identifies a concrete hittable variant
type Kind int

const (
	KindSphere Kind = iota
	KindMovingSphere
	KindTriangleMesh
	KindTriangle // a single face of a TriangleMesh
	KindList
	KindBVH
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindMovingSphere:
		return "moving-sphere"
	case KindTriangleMesh:
		return "triangle-mesh"
	case KindTriangle:
		return "triangle"
	case KindList:
		return "list"
	case KindBVH:
		return "bvh"
	default:
		return "unknown"
	}
}

// Hittable is anything a ray can intersect.
// Implementations are immutable once built and safe for concurrent Hit calls.
type Hittable interface {
	// Hit returns the nearest intersection with t in [tMin, tMax)
	Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool)
	// BoundingBox returns a box enclosing the swept volume over [t0, t1];
	// false means the object is unbounded
	BoundingBox(t0, t1 float64) (core.AABB, bool)
	Kind() Kind
}

// inRange reports whether t lies in the half-open interval [tMin, tMax)
func inRange(t, tMin, tMax float64) bool {
	return t >= tMin && t < tMax
}
