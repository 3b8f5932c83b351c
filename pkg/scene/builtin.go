package scene

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
)

// ErrUnknownScene is returned for a scene name that is neither built in nor a scene file
var ErrUnknownScene = errors.New("unknown scene")

type builtin struct {
	description string
	build       func(cameraOverrides ...renderer.CameraConfig) *Scene
}

var builtins = map[string]builtin{
	"default": {"Diffuse, metal and glass spheres on a large ground sphere", NewDefaultScene},
	"motion":  {"Motion-blurred spheres over a shutter interval", NewMotionScene},
	"checker": {"Procedural checker texture on two large spheres", NewCheckerScene},
	"mesh":    {"Triangle mesh pyramid loaded from OBJ on a checker floor", NewTriangleMeshScene},
	"random":  {"Many small random spheres around three large ones", NewRandomScene},
	"grid":    {"Grid of metal spheres with varying hue and fuzz", NewSphereGridScene},
}

// BuiltinNames returns the built-in scene names in sorted order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin creates a built-in scene by name
func Builtin(name string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return b.build(cameraOverrides...), nil
}

func mergeCamera(defaults renderer.CameraConfig, overrides []renderer.CameraConfig) renderer.CameraConfig {
	if len(overrides) > 0 {
		return renderer.MergeCameraConfig(defaults, overrides[0])
	}
	return defaults
}

// NewDefaultScene creates the classic four sphere scene: a blue diffuse sphere,
// a yellow ground sphere, fuzzy gold metal and solid glass
func NewDefaultScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	lookFrom := core.NewVec3(2, 3, 2)
	lookAt := core.NewVec3(0, 0, -1)
	cameraConfig := mergeCamera(renderer.CameraConfig{
		LookFrom:      lookFrom,
		LookAt:        lookAt,
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20,
		Aperture:      0,
		FocusDistance: lookFrom.Subtract(lookAt).Length(),
	}, cameraOverrides)

	s := &Scene{
		Name:         "default",
		CameraConfig: cameraConfig,
		RenderConfig: renderer.RenderConfig{Width: 200, Height: 100, SamplesPerPixel: 100, MaxDepth: 50},
	}

	s.Add(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.1)),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, material.NewDielectric(1.5)),
	)
	return s
}

// NewMotionScene creates a scene where two spheres move during the shutter interval
func NewMotionScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := mergeCamera(renderer.CameraConfig{
		LookFrom: core.NewVec3(0, 1, 4),
		LookAt:   core.NewVec3(0, 0.4, 0),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     35,
		Time0:    0,
		Time1:    1,
	}, cameraOverrides)

	s := &Scene{
		Name:         "motion",
		CameraConfig: cameraConfig,
		RenderConfig: renderer.RenderConfig{Width: 320, Height: 180, SamplesPerPixel: 64},
	}

	red := material.NewLambertian(core.NewVec3(0.7, 0.15, 0.1))
	blue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.7))
	s.Add(
		geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))),
		// Sideways motion
		geometry.NewMovingSphere(core.NewVec3(-1.2, 0.4, 0), core.NewVec3(-0.6, 0.4, 0), 0, 1, 0.4, red),
		// Bouncing upward
		geometry.NewMovingSphere(core.NewVec3(0.9, 0.4, 0), core.NewVec3(0.9, 0.9, 0), 0, 1, 0.4, blue),
		geometry.NewSphere(core.NewVec3(0, 0.4, -1), 0.4, material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0)),
	)
	return s
}

// NewCheckerScene creates two large checkered spheres touching at the origin
func NewCheckerScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := mergeCamera(renderer.CameraConfig{
		LookFrom: core.NewVec3(13, 2, 3),
		LookAt:   core.NewVec3(0, 0, 0),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     20,
	}, cameraOverrides)

	s := &Scene{
		Name:         "checker",
		CameraConfig: cameraConfig,
		RenderConfig: renderer.RenderConfig{Width: 320, Height: 180, SamplesPerPixel: 32},
	}

	checker := material.NewCheckerTexture(
		material.NewConstantTexture(core.NewVec3(0.9, 0.9, 0.9)),
		material.NewConstantTexture(core.NewVec3(0.2, 0.3, 0.1)),
	)
	checker.Frequency = 1
	mat := material.NewTexturedLambertian(checker)
	s.Add(
		geometry.NewSphere(core.NewVec3(0, -10, 0), 10, mat),
		geometry.NewSphere(core.NewVec3(0, 10, 0), 10, mat),
	)
	return s
}

// NewRandomScene creates a field of small random spheres around three large ones.
// The layout is seeded so every call builds the same scene.
func NewRandomScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := mergeCamera(renderer.CameraConfig{
		LookFrom:      core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20,
		Aperture:      0.1,
		FocusDistance: 10,
		Time0:         0,
		Time1:         1,
	}, cameraOverrides)

	s := &Scene{
		Name:         "random",
		CameraConfig: cameraConfig,
		RenderConfig: renderer.RenderConfig{Width: 400, Height: 225, SamplesPerPixel: 32},
	}

	checker := material.NewCheckerTexture(
		material.NewConstantTexture(core.NewVec3(0.2, 0.3, 0.1)),
		material.NewConstantTexture(core.NewVec3(0.9, 0.9, 0.9)),
	)
	s.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, material.NewTexturedLambertian(checker)))

	random := rand.New(rand.NewSource(1))
	keepOut := core.NewVec3(4, 0.2, 0)
	for a := -6; a < 6; a++ {
		for b := -6; b < 6; b++ {
			center := core.NewVec3(float64(a)+0.9*random.Float64(), 0.2, float64(b)+0.9*random.Float64())
			if center.Subtract(keepOut).Length() <= 0.9 {
				continue
			}

			choice := random.Float64()
			switch {
			case choice < 0.7:
				albedo := core.NewVec3(random.Float64()*random.Float64(), random.Float64()*random.Float64(), random.Float64()*random.Float64())
				center1 := center.Add(core.NewVec3(0, 0.5*random.Float64(), 0))
				s.Add(geometry.NewMovingSphere(center, center1, 0, 1, 0.2, material.NewLambertian(albedo)))
			case choice < 0.9:
				albedo := core.NewVec3(0.5*(1+random.Float64()), 0.5*(1+random.Float64()), 0.5*(1+random.Float64()))
				s.Add(geometry.NewSphere(center, 0.2, material.NewMetal(albedo, 0.5*random.Float64())))
			default:
				s.Add(geometry.NewSphere(center, 0.2, material.NewDielectric(1.5)))
			}
		}
	}

	s.Add(
		geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))),
		geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)),
	)
	return s
}
