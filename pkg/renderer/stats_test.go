package renderer

import (
	"strings"
	"testing"
	"time"
)

func TestRenderStats_RaysPerSecond(t *testing.T) {
	tests := []struct {
		name     string
		stats    RenderStats
		expected float64
	}{
		{"two seconds", RenderStats{TotalRays: 1000, Duration: 2 * time.Second}, 500},
		{"half second", RenderStats{TotalRays: 1000, Duration: 500 * time.Millisecond}, 2000},
		{"zero duration", RenderStats{TotalRays: 1000}, 0},
		{"no rays", RenderStats{Duration: time.Second}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.RaysPerSecond(); got != tt.expected {
				t.Errorf("RaysPerSecond() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRenderStats_String(t *testing.T) {
	stats := RenderStats{
		Workers:      4,
		TotalPixels:  200,
		TotalSamples: 800,
		TotalRays:    3000,
		Duration:     1500 * time.Millisecond,
	}

	s := stats.String()
	for _, want := range []string{"200 pixels", "800 samples", "3000 rays", "1.5s", "2000 rays/s", "4 workers"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
