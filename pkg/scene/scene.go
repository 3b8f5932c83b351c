package scene

import (
	"context"
	"fmt"

	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name         string
	Primitives   []geometry.Hittable // Objects in the scene, each carrying its material
	CameraConfig renderer.CameraConfig
	RenderConfig renderer.RenderConfig // Scene defaults for size, samples and depth
}

// Add appends objects to the scene
func (s *Scene) Add(objects ...geometry.Hittable) {
	s.Primitives = append(s.Primitives, objects...)
}

// Compile builds the acceleration structure over the camera's shutter interval
func (s *Scene) Compile() (*geometry.BVH, error) {
	bvh, err := geometry.CompileScene(s.Primitives, s.CameraConfig.Time0, s.CameraConfig.Time1)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", s.Name, err)
	}
	return bvh, nil
}

// Camera creates the scene camera with the aspect ratio of the given image size
func (s *Scene) Camera(width, height int) *renderer.Camera {
	config := s.CameraConfig
	if width > 0 && height > 0 {
		config.AspectRatio = float64(width) / float64(height)
	}
	return renderer.NewCamera(config)
}

// Config returns the render defaults with the scene's settings and then overrides applied
func (s *Scene) Config(overrides renderer.RenderConfig) renderer.RenderConfig {
	return renderer.DefaultRenderConfig().Merge(s.RenderConfig).Merge(overrides)
}

// Render compiles and renders the scene
func (s *Scene) Render(ctx context.Context, overrides renderer.RenderConfig) (*renderer.Framebuffer, renderer.RenderStats, error) {
	config := s.Config(overrides)
	if err := config.Validate(); err != nil {
		return nil, renderer.RenderStats{}, err
	}

	bvh, err := s.Compile()
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}

	return renderer.Render(ctx, bvh, s.Camera(config.Width, config.Height), config)
}
