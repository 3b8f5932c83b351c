package geometry

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// directionEpsilon is the squared direction length below which a ray is treated as degenerate
const directionEpsilon = 1e-12

// Sphere represents a static sphere.
// A negative radius keeps the geometry but flips the normal inward (hollow glass).
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, material material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	return hitSphere(s.Center, s.Radius, s.Material, ray, tMin, tMax)
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox(t0, t1 float64) (core.AABB, bool) {
	return sphereBox(s.Center, s.Radius), true
}

func (s *Sphere) Kind() Kind { return KindSphere }

// hitSphere solves |O + tD - C|² = r² and returns the smallest root in [tMin, tMax)
func hitSphere(center core.Vec3, radius float64, mat material.Material, ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	a := ray.Direction.LengthSquared()
	if a < directionEpsilon || radius == 0 {
		return material.HitRecord{}, false
	}

	// Quadratic equation coefficients: at² + 2·halfB·t + c = 0
	oc := ray.Origin.Subtract(center)
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - radius*radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return material.HitRecord{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if !inRange(root, tMin, tMax) {
		root = (-halfB + sqrtD) / a
		if !inRange(root, tMin, tMax) {
			return material.HitRecord{}, false
		}
	}

	point := ray.At(root)
	outward := point.Subtract(center).Multiply(1.0 / math.Abs(radius))
	normal := outward
	if radius < 0 {
		normal = outward.Negate()
	}

	return material.HitRecord{
		T:        root,
		Point:    point,
		Normal:   normal,
		UV:       sphereUV(outward),
		Material: mat,
	}, true
}

// sphereUV maps a unit outward normal to spherical texture coordinates
func sphereUV(p core.Vec3) core.Vec2 {
	theta := math.Acos(max(-1, min(1, -p.Y)))
	phi := math.Atan2(-p.Z, p.X) + math.Pi
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

func sphereBox(center core.Vec3, radius float64) core.AABB {
	r := math.Abs(radius)
	extent := core.NewVec3(r, r, r)
	return core.NewAABB(center.Subtract(extent), center.Add(extent))
}
