package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/integrator"
)

// ErrInvalidConfig is returned when a render is requested with unusable settings
var ErrInvalidConfig = errors.New("invalid render config")

// RenderConfig contains rendering configuration
type RenderConfig struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of rays per pixel
	Workers         int   // Number of parallel workers (0 = use CPU count)
	MaxDepth        int   // Maximum ray bounce depth
	Seed            int64 // Worker i draws from a generator seeded with Seed+i
	SeedSet         bool  // Seed overrides in Merge even when it is zero

	Integrator integrator.Integrator // Optional, a path tracer limited to MaxDepth when nil
	Progress   ProgressFunc          // Optional, called once per finished block
	Logger     core.Logger           // Optional, silent when nil
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:           200,
		Height:          100,
		SamplesPerPixel: 100,
		Workers:         0,
		MaxDepth:        integrator.DefaultMaxDepth,
		Seed:            42,
	}
}

// Merge returns c with every non-zero field of override applied.
// A zero Seed applies only when SeedSet is true.
func (c RenderConfig) Merge(override RenderConfig) RenderConfig {
	if override.Width != 0 {
		c.Width = override.Width
	}
	if override.Height != 0 {
		c.Height = override.Height
	}
	if override.SamplesPerPixel != 0 {
		c.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.MaxDepth != 0 {
		c.MaxDepth = override.MaxDepth
	}
	if override.Seed != 0 || override.SeedSet {
		c.Seed = override.Seed
		c.SeedSet = true
	}
	if override.Integrator != nil {
		c.Integrator = override.Integrator
	}
	if override.Progress != nil {
		c.Progress = override.Progress
	}
	if override.Logger != nil {
		c.Logger = override.Logger
	}
	return c
}

// Validate checks that the image dimensions and sample counts are usable
func (c RenderConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("%w: %d samples per pixel", ErrInvalidConfig, c.SamplesPerPixel)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth %d", ErrInvalidConfig, c.MaxDepth)
	}
	return nil
}

// Render traces the scene through the camera and returns the finished framebuffer.
// The image is split into one contiguous row block per worker; each worker owns a
// seeded sampler, and blocks are merged once every worker has finished.
func Render(ctx context.Context, scene geometry.Hittable, camera *Camera, config RenderConfig) (*Framebuffer, RenderStats, error) {
	if err := config.Validate(); err != nil {
		return nil, RenderStats{}, err
	}
	if scene == nil || camera == nil {
		return nil, RenderStats{}, fmt.Errorf("%w: scene and camera are required", ErrInvalidConfig)
	}

	logger := config.Logger
	if logger == nil {
		logger = core.NewNopLogger()
	}

	workers := config.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	ranges := PartitionRows(config.Height, workers)

	pathIntegrator := config.Integrator
	if pathIntegrator == nil {
		pathIntegrator = integrator.NewPathTracingIntegrator(config.MaxDepth)
	}

	logger.Printf("Rendering %dx%d at %d spp with %d workers...\n",
		config.Width, config.Height, config.SamplesPerPixel, len(ranges))
	start := time.Now()

	task := func(ctx context.Context, worker int, rows RowRange) (*BlockJob, error) {
		sampler := core.NewSeededSampler(config.Seed + int64(worker))
		block, err := NewTileRenderer(scene, camera, config, pathIntegrator, sampler).RenderRows(ctx, rows)
		if err != nil {
			return nil, err
		}
		logger.Printf("Worker %d finished rows %d-%d\n", worker, rows.Start, rows.End)
		return block, nil
	}

	blocks, err := runWorkers(ctx, ranges, task, config.Progress)
	if err != nil {
		return nil, RenderStats{}, fmt.Errorf("render failed: %w", err)
	}

	fb := NewFramebuffer(config.Width, config.Height)
	stats := RenderStats{Workers: len(ranges)}
	for _, block := range blocks {
		for _, pixel := range block.Pixels {
			fb.Set(pixel.Index, pixel.Color)
		}
		stats.TotalPixels += len(block.Pixels)
		stats.TotalRays += block.rays
	}
	stats.TotalSamples = int64(stats.TotalPixels) * int64(config.SamplesPerPixel)
	stats.Duration = time.Since(start)

	logger.Printf("Render completed: %s\n", stats)
	return fb, stats, nil
}
