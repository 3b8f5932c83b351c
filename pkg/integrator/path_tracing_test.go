package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/stretchr/testify/assert"
)

// MockMaterial implements material.Material for testing
type MockMaterial struct {
	scatterFn func(rayIn core.Ray, hit material.HitRecord) (material.ScatterResult, bool)
}

func (m MockMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	return m.scatterFn(rayIn, hit)
}

func (m MockMaterial) Kind() material.Kind { return material.KindLambertian }

// MockShape implements geometry.Hittable for testing
type MockShape struct {
	hitFn func(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool)
}

func (m MockShape) Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	return m.hitFn(ray, tMin, tMax)
}

func (m MockShape) BoundingBox(t0, t1 float64) (core.AABB, bool) { return core.AABB{}, false }
func (m MockShape) Kind() geometry.Kind                          { return geometry.KindList }

func assertVecNear(t *testing.T, expected, actual core.Vec3, tolerance float64) {
	t.Helper()
	if math.Abs(expected.X-actual.X) > tolerance ||
		math.Abs(expected.Y-actual.Y) > tolerance ||
		math.Abs(expected.Z-actual.Z) > tolerance {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

func TestBackgroundGradient(t *testing.T) {
	assertVecNear(t, core.NewVec3(0.5, 0.7, 1.0), BackgroundGradient(core.NewVec3(0, 3, 0)), 1e-12)
	assertVecNear(t, core.NewVec3(1, 1, 1), BackgroundGradient(core.NewVec3(0, -2, 0)), 1e-12)
	assertVecNear(t, core.NewVec3(0.75, 0.85, 1.0), BackgroundGradient(core.NewVec3(1, 0, 0)), 1e-12)
}

func TestPathTracing_MissReturnsSky(t *testing.T) {
	scene := MockShape{hitFn: func(core.Ray, float64, float64) (material.HitRecord, bool) {
		return material.HitRecord{}, false
	}}

	color, rays := NewPathTracingIntegrator(DefaultMaxDepth).RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0)), scene, core.NewSeededSampler(1))
	assertVecNear(t, core.NewVec3(0.5, 0.7, 1.0), color, 1e-12)
	assert.Equal(t, 1, rays)
}

func TestPathTracing_AttenuatesThenEscapes(t *testing.T) {
	half := MockMaterial{scatterFn: func(rayIn core.Ray, hit material.HitRecord) (material.ScatterResult, bool) {
		return material.ScatterResult{
			Scattered:   core.NewRayAt(hit.Point, core.NewVec3(0, 1, 0), rayIn.Time),
			Attenuation: core.NewVec3(0.5, 0.5, 0.5),
		}, true
	}}

	// Only the downward primary ray hits; the upward bounce escapes to the zenith
	scene := MockShape{hitFn: func(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
		if ray.Direction.Y < 0 {
			return material.HitRecord{T: 1, Point: ray.At(1), Normal: core.NewVec3(0, 1, 0), Material: half}, true
		}
		return material.HitRecord{}, false
	}}

	color, rays := NewPathTracingIntegrator(DefaultMaxDepth).RayColor(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0)), scene, core.NewSeededSampler(1))
	assertVecNear(t, core.NewVec3(0.25, 0.35, 0.5), color, 1e-12)
	assert.Equal(t, 2, rays)
}

func TestPathTracing_AbsorbedIsBlack(t *testing.T) {
	absorb := MockMaterial{scatterFn: func(core.Ray, material.HitRecord) (material.ScatterResult, bool) {
		return material.ScatterResult{}, false
	}}
	scene := MockShape{hitFn: func(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
		return material.HitRecord{T: 1, Material: absorb}, true
	}}

	color, _ := NewPathTracingIntegrator(DefaultMaxDepth).RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), scene, core.NewSeededSampler(1))
	assert.Equal(t, core.Vec3{}, color)
}

func TestPathTracing_DepthCap(t *testing.T) {
	scatterCount := 0
	mirror := MockMaterial{scatterFn: func(rayIn core.Ray, hit material.HitRecord) (material.ScatterResult, bool) {
		scatterCount++
		return material.ScatterResult{Scattered: rayIn, Attenuation: core.NewVec3(1, 1, 1)}, true
	}}
	// Every ray hits, so the path never escapes
	scene := MockShape{hitFn: func(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
		return material.HitRecord{T: 1, Material: mirror}, true
	}}

	for _, maxDepth := range []int{0, 1, 5, DefaultMaxDepth} {
		scatterCount = 0
		color, rays := NewPathTracingIntegrator(maxDepth).RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), scene, core.NewSeededSampler(1))
		assert.Equal(t, core.Vec3{}, color)
		assert.Equal(t, maxDepth, scatterCount)
		assert.Equal(t, maxDepth+1, rays)
	}
}

func TestPathTracing_ScatteredRayKeepsTime(t *testing.T) {
	var times []float64
	pass := MockMaterial{scatterFn: func(rayIn core.Ray, hit material.HitRecord) (material.ScatterResult, bool) {
		return material.ScatterResult{
			Scattered:   core.NewRayAt(hit.Point, core.NewVec3(0, 1, 0), rayIn.Time),
			Attenuation: core.NewVec3(1, 1, 1),
		}, true
	}}
	scene := MockShape{hitFn: func(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
		times = append(times, ray.Time)
		if ray.Direction.Y < 0 {
			return material.HitRecord{T: 1, Point: ray.At(1), Normal: core.NewVec3(0, 1, 0), Material: pass}, true
		}
		return material.HitRecord{}, false
	}}

	var pt Integrator = NewPathTracingIntegrator(DefaultMaxDepth)
	pt.RayColor(core.NewRayAt(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0), 0.75), scene, core.NewSeededSampler(1))
	assert.Equal(t, []float64{0.75, 0.75}, times)
}
