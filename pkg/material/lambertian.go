package material

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo Texture // Base color/reflectance (can be solid or textured)
}

// NewLambertian creates a new lambertian material with solid color
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: NewConstantTexture(albedo)}
}

// NewTexturedLambertian creates a new lambertian material with texture
func NewTexturedLambertian(albedo Texture) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter implements the Material interface for lambertian scattering.
// The ray is never absorbed.
func (l *Lambertian) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// target = p + n + random point in unit sphere, direction = target - p
	direction := hit.Normal.Add(core.RandomInUnitSphere(sampler))

	// Catch degenerate scatter direction
	if direction.NearZero(1e-8) {
		direction = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRayAt(hit.Point, direction, rayIn.Time),
		Attenuation: l.Albedo.Value(hit.UV, hit.Point),
	}, true
}

func (l *Lambertian) Kind() Kind { return KindLambertian }
