package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

func TestDielectricBasicBehavior(t *testing.T) {
	// Create a glass material (refractive index of 1.5)
	glass := NewDielectric(1.5)

	// 45-degree ray entering from above
	rayDirection := core.NewVec3(1, -1, 0).Normalize()
	ray := core.NewRayAt(core.NewVec3(0, 1, 0), rayDirection, 0.3)

	hit := HitRecord{
		Point:    core.NewVec3(0, 0, 0),
		Normal:   core.NewVec3(0, 1, 0),
		T:        1.0,
		Material: glass,
	}

	hasReflection := false
	hasRefraction := false

	for seed := int64(0); seed < 1000 && (!hasReflection || !hasRefraction); seed++ {
		sampler := core.NewRandomSampler(rand.New(rand.NewSource(seed)))
		result, scattered := glass.Scatter(ray, hit, sampler)

		if !scattered {
			t.Fatal("Dielectric should always scatter")
		}
		if result.Scattered.Time != 0.3 {
			t.Errorf("Scattered ray should keep time 0.3, got %f", result.Scattered.Time)
		}

		// Reflection goes back up, refraction continues down
		if result.Scattered.Direction.Y > 0 {
			hasReflection = true
		} else {
			hasRefraction = true
			// Refraction bends toward the normal when entering glass
			dir := result.Scattered.Direction.Normalize()
			if math.Abs(dir.X) >= math.Abs(rayDirection.X) {
				t.Errorf("Refracted ray should bend toward normal: in %v, out %v", rayDirection, dir)
			}
		}
	}

	if !hasReflection {
		t.Error("Expected at least one reflection from Schlick sampling")
	}
	if !hasRefraction {
		t.Error("Expected at least one refraction")
	}
}

func TestDielectricAttenuationIsAlwaysWhite(t *testing.T) {
	glass := NewDielectric(1.5)
	sampler := core.NewSeededSampler(11)
	white := core.NewVec3(1, 1, 1)

	for i := 0; i < 500; i++ {
		dir := core.RandomInUnitSphere(sampler)
		if dir.NearZero(1e-3) {
			continue
		}
		ray := core.NewRay(core.NewVec3(0, 0, 0), dir)
		hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 0, 1), Material: glass}

		result, scattered := glass.Scatter(ray, hit, sampler)
		if !scattered {
			t.Fatalf("Dielectric absorbed ray %v", dir)
		}
		if result.Attenuation != white {
			t.Fatalf("Expected attenuation exactly %v, got %v", white, result.Attenuation)
		}
	}
}

func TestDielectricTotalInternalReflection(t *testing.T) {
	glass := NewDielectric(1.5)

	// Inside the glass travelling up at a shallow angle toward the outward normal
	rayDirection := core.NewVec3(1, 0.1, 0).Normalize()
	ray := core.NewRay(core.NewVec3(0, 0, 0), rayDirection)
	hit := HitRecord{
		Point:    core.NewVec3(0, 0, 0),
		Normal:   core.NewVec3(0, 1, 0),
		T:        1.0,
		Material: glass,
	}

	for i := 0; i < 10; i++ {
		sampler := core.NewSeededSampler(int64(i))
		result, scattered := glass.Scatter(ray, hit, sampler)
		if !scattered {
			t.Fatal("Dielectric should always scatter")
		}

		// Total internal reflection sends the ray back down
		if result.Scattered.Direction.Y >= 0 {
			t.Errorf("Expected total internal reflection (ray going down), got %v", result.Scattered.Direction)
		}
		if math.Abs(result.Scattered.Direction.X-rayDirection.X) > 1e-10 {
			t.Errorf("Expected X component %.6f, got %.6f", rayDirection.X, result.Scattered.Direction.X)
		}
	}
}

func TestReflectanceFunction(t *testing.T) {
	// Normal incidence: R0 = ((1-1.5)/(1+1.5))^2 = 0.04
	if r := Reflectance(1.0, 1.5); math.Abs(r-0.04) > 1e-12 {
		t.Errorf("Expected R0 = 0.04, got %f", r)
	}

	// Grazing incidence reflects everything
	if r := Reflectance(0.0, 1.5); math.Abs(r-1.0) > 1e-12 {
		t.Errorf("Expected reflectance 1 at grazing angle, got %f", r)
	}

	// Monotonic in between
	prev := Reflectance(1.0, 1.5)
	for cos := 0.9; cos >= 0; cos -= 0.1 {
		r := Reflectance(cos, 1.5)
		if r < prev {
			t.Errorf("Reflectance should increase toward grazing: cos=%.1f r=%f prev=%f", cos, r, prev)
		}
		prev = r
	}
}
