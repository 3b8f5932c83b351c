package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// ErrMeshVertexCount is returned when a mesh's vertices do not group into triangles
var ErrMeshVertexCount = errors.New("mesh vertex count is not a multiple of 3")

// determinantEpsilon rejects rays parallel to a triangle and degenerate triangles
const determinantEpsilon = 1e-10

// TriangleMesh is a flat vertex list where every consecutive triple forms a triangle
type TriangleMesh struct {
	Vertices []core.Vec3 // 3 per triangle
	UVs      []core.Vec2 // Optional, one per vertex
	Material material.Material

	// CullBackFaces rejects hits where the ray approaches the triangle from behind
	// (counter-clockwise winding is the front)
	CullBackFaces bool

	bbox core.AABB
}

// NewTriangleMesh creates a mesh from vertex triples and optional per-vertex UVs
func NewTriangleMesh(vertices []core.Vec3, uvs []core.Vec2, mat material.Material) (*TriangleMesh, error) {
	if len(vertices) == 0 || len(vertices)%3 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrMeshVertexCount, len(vertices))
	}
	if uvs != nil && len(uvs) != len(vertices) {
		return nil, fmt.Errorf("mesh has %d uvs for %d vertices", len(uvs), len(vertices))
	}

	return &TriangleMesh{
		Vertices: vertices,
		UVs:      uvs,
		Material: mat,
		bbox:     core.NewAABBFromPoints(vertices...),
	}, nil
}

// TriangleCount returns the number of triangles in the mesh
func (m *TriangleMesh) TriangleCount() int {
	return len(m.Vertices) / 3
}

// Hit scans every triangle and returns the nearest hit
func (m *TriangleMesh) Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	var closest material.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for i := 0; i < m.TriangleCount(); i++ {
		if rec, ok := m.hitTriangle(i, ray, tMin, closestSoFar); ok {
			hitAnything = true
			closestSoFar = rec.T
			closest = rec
		}
	}

	return closest, hitAnything
}

// BoundingBox returns the box around every vertex
func (m *TriangleMesh) BoundingBox(t0, t1 float64) (core.AABB, bool) {
	return m.bbox, true
}

func (m *TriangleMesh) Kind() Kind { return KindTriangleMesh }

// Triangles returns one Hittable per face so an accelerator can partition the mesh
func (m *TriangleMesh) Triangles() []Hittable {
	faces := make([]Hittable, m.TriangleCount())
	for i := range faces {
		faces[i] = &Triangle{mesh: m, index: i}
	}
	return faces
}

// hitTriangle intersects face i using the Möller–Trumbore algorithm
func (m *TriangleMesh) hitTriangle(i int, ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	v0 := m.Vertices[3*i]
	v1 := m.Vertices[3*i+1]
	v2 := m.Vertices[3*i+2]

	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)

	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)

	// Ray parallel to the plane, degenerate triangle, or back face when culling
	if m.CullBackFaces {
		if det < determinantEpsilon {
			return material.HitRecord{}, false
		}
	} else if math.Abs(det) < determinantEpsilon {
		return material.HitRecord{}, false
	}

	f := 1.0 / det
	s := ray.Origin.Subtract(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return material.HitRecord{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return material.HitRecord{}, false
	}

	t := f * edge2.Dot(q)
	if !inRange(t, tMin, tMax) {
		return material.HitRecord{}, false
	}

	rec := material.HitRecord{
		T:        t,
		Point:    ray.At(t),
		Normal:   edge1.Cross(edge2).Normalize(),
		Material: m.Material,
	}

	// Interpolate texture coordinates by barycentric weights
	if m.UVs != nil {
		w := 1 - u - v
		rec.UV = m.UVs[3*i].Multiply(w).
			Add(m.UVs[3*i+1].Multiply(u)).
			Add(m.UVs[3*i+2].Multiply(v))
	} else {
		rec.UV = core.NewVec2(u, v)
	}

	return rec, true
}

// Triangle is a single face of a TriangleMesh
type Triangle struct {
	mesh  *TriangleMesh
	index int
}

// Hit intersects this face only
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	return t.mesh.hitTriangle(t.index, ray, tMin, tMax)
}

// BoundingBox returns the box around the face's three vertices
func (t *Triangle) BoundingBox(t0, t1 float64) (core.AABB, bool) {
	i := 3 * t.index
	return core.NewAABBFromPoints(t.mesh.Vertices[i], t.mesh.Vertices[i+1], t.mesh.Vertices[i+2]), true
}

func (t *Triangle) Kind() Kind { return KindTriangle }
