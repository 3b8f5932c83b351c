package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// Parameter limits for render and inspect requests
const (
	minSize, maxSize       = 16, 2000
	minSamples, maxSamples = 1, 10000
	minDepth, maxDepth     = 1, 500
)

// Options configures a Server
type Options struct {
	Port      int
	ScenesDir string      // Directory with YAML scene files offered next to the built-ins
	Logger    core.Logger // Server log, silent when nil
}

// Server serves rendered images and scene metadata over HTTP
type Server struct {
	port      int
	scenesDir string
	logger    core.Logger
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &Server{port: opts.Port, scenesDir: opts.ScenesDir, logger: logger}
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /render", s.handleRender)
	mux.HandleFunc("GET /api/render", s.handleRenderStream)
	mux.HandleFunc("GET /api/inspect", s.handleInspect)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting web server on http://localhost:%d\n", s.port)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes and the scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.createScene(sceneName)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	config := sceneObj.Config(renderer.RenderConfig{})
	camera := sceneObj.CameraConfig
	response := map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":           config.Width,
			"height":          config.Height,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
			"seed":            config.Seed,
		},
		"camera": map[string]interface{}{
			"lookFrom":      vecJSON(camera.LookFrom),
			"lookAt":        vecJSON(camera.LookAt),
			"vfov":          camera.VFov,
			"aperture":      camera.Aperture,
			"focusDistance": camera.FocusDistance,
			"shutter":       [2]float64{camera.Time0, camera.Time1},
		},
		"limits": map[string]interface{}{
			"width":    map[string]int{"min": minSize, "max": maxSize},
			"height":   map[string]int{"min": minSize, "max": maxSize},
			"spp":      map[string]int{"min": minSamples, "max": maxSamples},
			"maxDepth": map[string]int{"min": minDepth, "max": maxDepth},
		},
	}
	writeJSON(w, http.StatusOK, response)
}

// createScene resolves a built-in scene name or the ID of a scene file in the scenes directory.
// Arbitrary paths are refused.
func (s *Server) createScene(sceneName string) (*scene.Scene, error) {
	if sceneObj, err := scene.Builtin(sceneName); err == nil {
		return sceneObj, nil
	}

	files, err := scene.ListYAMLScenes(s.scenesDir)
	if err != nil {
		return nil, err
	}
	for _, info := range files {
		if info.ID == sceneName {
			return scene.LoadYAML(info.FilePath)
		}
	}
	return nil, fmt.Errorf("%w: %q", scene.ErrUnknownScene, sceneName)
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func vecJSON(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
