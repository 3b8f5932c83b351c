package integrator

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
)

const (
	// DefaultMaxDepth is the number of bounces after which a path contributes black
	DefaultMaxDepth = 50

	// rayEpsilon offsets the start of every intersection test to avoid self-hits
	rayEpsilon = 0.001
)

var (
	skyHorizon = core.NewVec3(1.0, 1.0, 1.0)
	skyZenith  = core.NewVec3(0.5, 0.7, 1.0)
)

// PathTracingIntegrator implements unidirectional path tracing under a sky gradient
type PathTracingIntegrator struct {
	maxDepth int
}

// NewPathTracingIntegrator creates a path tracer that scatters at most maxDepth times
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	return &PathTracingIntegrator{maxDepth: maxDepth}
}

// MaxDepth returns the bounce limit
func (pt *PathTracingIntegrator) MaxDepth() int {
	return pt.maxDepth
}

// RayColor follows a path through the scene. A ray that is still hitting
// geometry after maxDepth scatters contributes black.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene geometry.Hittable, sampler core.Sampler) (core.Vec3, int) {
	throughput := core.NewVec3(1, 1, 1)
	rays := 0

	for depth := 0; ; depth++ {
		rays++
		hit, isHit := scene.Hit(ray, rayEpsilon, math.Inf(1))
		if !isHit {
			return throughput.MultiplyVec(BackgroundGradient(ray.Direction)), rays
		}

		if depth >= pt.maxDepth || hit.Material == nil {
			return core.Vec3{}, rays
		}

		scatter, didScatter := hit.Material.Scatter(ray, hit, sampler)
		if !didScatter {
			return core.Vec3{}, rays
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}
}

// BackgroundGradient returns the sky color for a ray direction
func BackgroundGradient(direction core.Vec3) core.Vec3 {
	unitDirection := direction.Normalize()
	t := 0.5 * (unitDirection.Y + 1.0)
	return skyHorizon.Multiply(1.0 - t).Add(skyZenith.Multiply(t))
}
