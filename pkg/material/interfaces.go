package material

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
)

// Kind identifies a concrete material variant
type Kind int

const (
	KindLambertian Kind = iota
	KindMetal
	KindDielectric
)

func (k Kind) String() string {
	switch k {
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	case KindDielectric:
		return "dielectric"
	default:
		return "unknown"
	}
}

// Material interface for surfaces that can scatter rays.
// Implementations are immutable and may be shared across goroutines.
type Material interface {
	// Scatter returns the attenuated outgoing ray, or false if the ray is absorbed
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)
	Kind() Kind
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	T        float64   // Parameter t along the ray
	Point    core.Vec3 // Point of intersection
	Normal   core.Vec3 // Unit outward surface normal
	UV       core.Vec2 // Texture coordinates
	Material Material  // Material of the hit object
}

// reflect calculates the reflection of a vector v off a surface with normal n
func reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
