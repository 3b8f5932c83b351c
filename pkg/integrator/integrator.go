package integrator

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms.
// Implementations are shared by all render workers and must not hold per-ray state.
type Integrator interface {
	// RayColor computes the color carried back along ray and the number of rays cast
	RayColor(ray core.Ray, scene geometry.Hittable, sampler core.Sampler) (core.Vec3, int)
}
