package material

import (
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLambertian_NeverAbsorbs(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.6, 0.7)
	lambertian := NewLambertian(albedo)
	sampler := core.NewSeededSampler(42)

	normal := core.NewVec3(0, 1, 0)
	hit := HitRecord{Point: core.NewVec3(1, 2, 3), Normal: normal, Material: lambertian}
	rayIn := core.NewRayAt(core.NewVec3(1, 5, 3), core.NewVec3(0, -1, 0), 0.75)

	for i := 0; i < 1000; i++ {
		result, scattered := lambertian.Scatter(rayIn, hit, sampler)
		require.True(t, scattered)
		assert.Equal(t, albedo, result.Attenuation)
		assert.Equal(t, hit.Point, result.Scattered.Origin)
		assert.Equal(t, 0.75, result.Scattered.Time)

		// n + point in unit sphere never points below the surface
		if result.Scattered.Direction.Dot(normal) < 0 {
			t.Fatalf("Scatter direction below surface: %v", result.Scattered.Direction)
		}
	}
}

func TestLambertian_SamplesTextureAtHit(t *testing.T) {
	even := NewConstantTexture(core.NewVec3(1, 1, 1))
	odd := NewConstantTexture(core.NewVec3(0, 0, 0))
	lambertian := NewTexturedLambertian(NewCheckerTexture(even, odd))
	sampler := core.NewSeededSampler(3)

	// sin(10*0.1)^3 > 0 selects the even texture
	hit := HitRecord{Point: core.NewVec3(0.1, 0.1, 0.1), Normal: core.NewVec3(0, 0, 1)}
	result, _ := lambertian.Scatter(core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), hit, sampler)
	assert.Equal(t, even.Color, result.Attenuation)

	// Flipping one coordinate's sign flips the product
	hit.Point = core.NewVec3(-0.1, 0.1, 0.1)
	result, _ = lambertian.Scatter(core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), hit, sampler)
	assert.Equal(t, odd.Color, result.Attenuation)
}

func TestMaterialKinds(t *testing.T) {
	materials := []Material{NewLambertian(core.Vec3{}), NewMetal(core.Vec3{}, 0), NewDielectric(1.5)}
	expected := []Kind{KindLambertian, KindMetal, KindDielectric}
	for i, m := range materials {
		assert.Equal(t, expected[i], m.Kind())
		assert.NotEqual(t, "unknown", m.Kind().String())
	}
}
