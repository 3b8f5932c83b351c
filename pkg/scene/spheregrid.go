package scene

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
)

// oklchToRGB converts OKLCH color values to linear RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS, then cube
	lms := core.NewVec3(
		l+0.3963377774*a+0.2158037573*b,
		l-0.1055613458*a-0.0638541728*b,
		l-0.0894841775*a-1.2914855480*b,
	)
	lms = lms.MultiplyVec(lms).MultiplyVec(lms)

	// LMS to linear RGB
	rgb := core.NewVec3(
		+4.0767416621*lms.X-3.3077115913*lms.Y+0.2309699292*lms.Z,
		-1.2684380046*lms.X+2.6097574011*lms.Y-0.3413193965*lms.Z,
		-0.0041960863*lms.X-0.7034186147*lms.Y+1.7076147010*lms.Z,
	)
	return rgb.Clamp(0, 1)
}

// NewSphereGridScene creates a scene with a grid of metal spheres.
// Hue varies along X and fuzz along Z.
func NewSphereGridScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := mergeCamera(renderer.CameraConfig{
		LookFrom: core.NewVec3(4.5, 6, 18),
		LookAt:   core.NewVec3(4.5, 0.8, 4.5),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     40,
		Aperture: 0.02,
	}, cameraOverrides)

	s := &Scene{
		Name:         "grid",
		CameraConfig: cameraConfig,
		RenderConfig: renderer.RenderConfig{Width: 400, Height: 225, SamplesPerPixel: 32, MaxDepth: 40},
	}

	// Ground is a very large sphere standing in for a plane
	s.Add(geometry.NewSphere(core.NewVec3(4.5, -1000, 4.5), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))

	const (
		gridSize      = 10
		targetArea    = 9.0
		baseLightness = 0.65
		chroma        = 0.2
	)
	spacing := targetArea / float64(gridSize-1)
	radius := spacing * 0.35

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i) * spacing
			z := float64(j) * spacing
			hue := float64(i) / float64(gridSize-1) * 360.0
			fuzz := float64(j) / float64(gridSize-1) * 0.5

			albedo := oklchToRGB(baseLightness, chroma, hue)
			s.Add(geometry.NewSphere(core.NewVec3(x, radius, z), radius, material.NewMetal(albedo, fuzz)))
		}
	}

	return s
}
