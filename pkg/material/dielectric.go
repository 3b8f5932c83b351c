package material

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// Scatter implements the Material interface for dielectric scattering.
// Dielectrics are lossless: attenuation is always (1,1,1) and the ray is never absorbed.
func (d *Dielectric) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	attenuation := core.NewVec3(1.0, 1.0, 1.0)
	direction := rayIn.Direction
	length := direction.Length()

	var outwardNormal core.Vec3
	var refractionRatio, cosine float64
	if direction.Dot(hit.Normal) > 0 {
		// Leaving the medium through an outward-facing normal
		outwardNormal = hit.Normal.Negate()
		refractionRatio = d.RefractiveIndex
		cosine = d.RefractiveIndex * direction.Dot(hit.Normal) / length
	} else {
		outwardNormal = hit.Normal
		refractionRatio = 1.0 / d.RefractiveIndex
		cosine = -direction.Dot(hit.Normal) / length
	}

	reflected := reflect(direction, hit.Normal)
	scatteredDirection := reflected
	if refracted, ok := refractVector(direction, outwardNormal, refractionRatio); ok {
		if sampler.Get1D() >= Reflectance(cosine, d.RefractiveIndex) {
			scatteredDirection = refracted
		}
	}

	return ScatterResult{
		Scattered:   core.NewRayAt(hit.Point, scatteredDirection, rayIn.Time),
		Attenuation: attenuation,
	}, true
}

func (d *Dielectric) Kind() Kind { return KindDielectric }

// refractVector refracts v through a surface with normal n using Snell's law.
// It returns false on total internal reflection.
func refractVector(v, n core.Vec3, niOverNt float64) (core.Vec3, bool) {
	uv := v.Normalize()
	dt := uv.Dot(n)
	discriminant := 1.0 - niOverNt*niOverNt*(1-dt*dt)
	if discriminant <= 0 {
		return core.Vec3{}, false
	}
	return uv.Subtract(n.Multiply(dt)).Multiply(niOverNt).Subtract(n.Multiply(math.Sqrt(discriminant))), true
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractiveIndex float64) float64 {
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
