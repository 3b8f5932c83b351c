// Package config loads render settings from TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
)

// File is the TOML configuration for the command line tools.
// Zero values mean "use the scene's default".
type File struct {
	Scene     string `toml:"scene"`      // Built-in scene name or path to a YAML scene file
	ScenesDir string `toml:"scenes_dir"` // Directory searched for scene files

	Render Render `toml:"render"`
	Camera Camera `toml:"camera"`
	Output Output `toml:"output"`
	Server Server `toml:"server"`
}

// Render overrides the scene's render settings
type Render struct {
	Width           int    `toml:"width"`
	Height          int    `toml:"height"`
	SamplesPerPixel int    `toml:"samples"`
	MaxDepth        int    `toml:"max_depth"`
	Workers         int    `toml:"workers"`
	Seed            *int64 `toml:"seed,omitempty"` // nil keeps the scene seed
}

// Camera overrides the scene's camera
type Camera struct {
	LookFrom      []float64 `toml:"look_from,omitempty"`
	LookAt        []float64 `toml:"look_at,omitempty"`
	Up            []float64 `toml:"up,omitempty"`
	VFov          float64   `toml:"vfov"`
	Aperture      float64   `toml:"aperture"`
	FocusDistance float64   `toml:"focus_distance"`
}

// Output controls where rendered images go
type Output struct {
	Path   string `toml:"path"`   // Output file; empty means output/<scene>/render_<timestamp>.<format>
	Format string `toml:"format"` // png, bmp or ppm; empty picks by file extension
}

// Server configures the preview web server
type Server struct {
	Port int `toml:"port"`
}

// Default returns the configuration used when no file is given
func Default() File {
	return File{
		Scene:     "default",
		ScenesDir: "scenes",
		Server:    Server{Port: 8080},
	}
}

// Load reads a TOML file on top of Default. Unknown keys are an error.
func Load(path string) (File, error) {
	file, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r on top of Default
func Decode(r io.Reader) (File, error) {
	cfg := Default()
	decoder := toml.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return File{}, fmt.Errorf("unknown config keys: %s", strictErr.String())
		}
		return File{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return File{}, err
	}
	return cfg, nil
}

// Encode writes the configuration as TOML
func (f File) Encode(w io.Writer) error {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(f); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Validate checks vector lengths and value ranges
func (f File) Validate() error {
	for name, v := range map[string][]float64{
		"camera.look_from": f.Camera.LookFrom,
		"camera.look_at":   f.Camera.LookAt,
		"camera.up":        f.Camera.Up,
	} {
		if len(v) != 0 && len(v) != 3 {
			return fmt.Errorf("%s: expected 3 components, got %d", name, len(v))
		}
	}
	if f.Render.Width < 0 || f.Render.Height < 0 || f.Render.SamplesPerPixel < 0 ||
		f.Render.MaxDepth < 0 || f.Render.Workers < 0 {
		return errors.New("render settings must not be negative")
	}
	if f.Server.Port < 0 || f.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", f.Server.Port)
	}
	return nil
}

// RenderConfig returns the render overrides; zero fields keep the scene defaults
func (f File) RenderConfig() renderer.RenderConfig {
	config := renderer.RenderConfig{
		Width:           f.Render.Width,
		Height:          f.Render.Height,
		SamplesPerPixel: f.Render.SamplesPerPixel,
		MaxDepth:        f.Render.MaxDepth,
		Workers:         f.Render.Workers,
	}
	if f.Render.Seed != nil {
		config.Seed = *f.Render.Seed
		config.SeedSet = true
	}
	return config
}

// CameraConfig returns the camera overrides; zero fields keep the scene defaults
func (f File) CameraConfig() renderer.CameraConfig {
	return renderer.CameraConfig{
		LookFrom:      toVec(f.Camera.LookFrom),
		LookAt:        toVec(f.Camera.LookAt),
		Up:            toVec(f.Camera.Up),
		VFov:          f.Camera.VFov,
		Aperture:      f.Camera.Aperture,
		FocusDistance: f.Camera.FocusDistance,
	}
}

func toVec(v []float64) core.Vec3 {
	if len(v) != 3 {
		return core.Vec3{}
	}
	return core.NewVec3(v[0], v[1], v[2])
}
