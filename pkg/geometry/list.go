package geometry

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// List is an unordered collection of hittables scanned linearly
type List struct {
	Objects []Hittable
}

// NewList creates a list from the given objects
func NewList(objects ...Hittable) *List {
	return &List{Objects: objects}
}

// Add appends objects to the list
func (l *List) Add(objects ...Hittable) {
	l.Objects = append(l.Objects, objects...)
}

// Hit returns the nearest hit across every member, not the first one found
func (l *List) Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	var closest material.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for _, object := range l.Objects {
		if rec, ok := object.Hit(ray, tMin, closestSoFar); ok {
			hitAnything = true
			closestSoFar = rec.T
			closest = rec
		}
	}

	return closest, hitAnything
}

// BoundingBox returns the union of the members' boxes.
// An empty list, or one with any unbounded member, is unbounded.
func (l *List) BoundingBox(t0, t1 float64) (core.AABB, bool) {
	if len(l.Objects) == 0 {
		return core.AABB{}, false
	}

	var box core.AABB
	for i, object := range l.Objects {
		objectBox, ok := object.BoundingBox(t0, t1)
		if !ok {
			return core.AABB{}, false
		}
		if i == 0 {
			box = objectBox
		} else {
			box = box.Union(objectBox)
		}
	}
	return box, true
}

func (l *List) Kind() Kind { return KindList }
