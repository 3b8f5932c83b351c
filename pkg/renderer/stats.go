package renderer

import (
	"fmt"
	"time"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Workers      int           // Number of workers used
	TotalPixels  int           // Total number of pixels rendered
	TotalSamples int64         // Camera rays, spp per pixel
	TotalRays    int64         // Every ray cast, including scattered bounces
	Duration     time.Duration // Wall time from start to merged framebuffer
}

// RaysPerSecond returns the throughput of the render
func (s RenderStats) RaysPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalRays) / s.Duration.Seconds()
}

func (s RenderStats) String() string {
	return fmt.Sprintf("%d pixels, %d samples, %d rays in %v (%.0f rays/s, %d workers)",
		s.TotalPixels, s.TotalSamples, s.TotalRays, s.Duration.Round(time.Millisecond), s.RaysPerSecond(), s.Workers)
}
