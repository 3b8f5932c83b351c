package server

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSceneYAML = `# Scene: Red Ball
# Group: Test Scenes
camera:
  look_from: [0, 0, 0]
  look_at: [0, 0, -1]
  vfov: 90
materials:
  red: {type: lambertian, albedo: [0.9, 0.1, 0.1]}
objects:
  - {type: sphere, center: [0, 0, -3], radius: 1, material: red}
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "red-ball.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSceneYAML), 0o644))
	return NewServer(Options{ScenesDir: dir}), path
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleRenderPNG(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/render?scene=default&width=32&height=16&spp=2&depth=4")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Render-Stats"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestHandleRenderFormats(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/render?width=16&height=16&spp=1&format=ppm")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/x-portable-pixmap", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "P3\n16 16\n255\n"))

	rec = get(t, s, "/render?width=16&height=16&spp=1&format=BMP")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/bmp", rec.Header().Get("Content-Type"))
	assert.Equal(t, "BM", rec.Body.String()[:2])
}

func TestHandleRenderErrors(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"width too small", "/render?width=1", http.StatusBadRequest},
		{"bad spp", "/render?spp=lots", http.StatusBadRequest},
		{"bad format", "/render?format=gif", http.StatusBadRequest},
		{"bad seed", "/render?seed=x", http.StatusBadRequest},
		{"unknown scene", "/render?scene=cornell", http.StatusNotFound},
		{"arbitrary path", "/render?scene=/etc/passwd.yaml", http.StatusNotFound},
		{"wrong method", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tt.target == "" {
				rec = httptest.NewRecorder()
				s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/render", nil))
			} else {
				rec = get(t, s, tt.target)
			}
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandleRenderSceneFile(t *testing.T) {
	s, path := newTestServer(t)
	rec := get(t, s, "/render?width=16&height=16&spp=4&scene="+path)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	// The sphere fills the image center
	r, g, _, _ := img.At(8, 8).RGBA()
	assert.Greater(t, r, g)
}

func TestHandleScenes(t *testing.T) {
	s, path := newTestServer(t)
	rec := get(t, s, "/api/scenes")
	require.Equal(t, http.StatusOK, rec.Code)

	var response scene.ScenesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Groups, 2)
	assert.Equal(t, "Built-in Scenes", response.Groups[0].Name)
	assert.Len(t, response.Groups[0].Scenes, len(scene.BuiltinNames()))

	files := response.Groups[1]
	assert.Equal(t, "Test Scenes", files.Name)
	require.Len(t, files.Scenes, 1)
	assert.Equal(t, "Red Ball", files.Scenes[0].Name)
	assert.Equal(t, path, files.Scenes[0].ID)
}

func TestHandleSceneConfig(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/scene-config?scene=default")
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Scene    string `json:"scene"`
		Defaults struct {
			Width           int `json:"width"`
			Height          int `json:"height"`
			SamplesPerPixel int `json:"samplesPerPixel"`
		} `json:"defaults"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "default", response.Scene)
	assert.Equal(t, 200, response.Defaults.Width)
	assert.Equal(t, 100, response.Defaults.Height)
	assert.Equal(t, 100, response.Defaults.SamplesPerPixel)

	rec = get(t, s, "/api/scene-config?scene=nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleInspect(t *testing.T) {
	s, path := newTestServer(t)

	rec := get(t, s, "/api/inspect?width=16&height=16&x=8&y=8&scene="+path)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var hit InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hit))
	assert.True(t, hit.Hit)
	assert.Equal(t, "lambertian", hit.MaterialType)
	assert.InDelta(t, 2, hit.Distance, 0.1)
	assert.Greater(t, hit.Normal[2], 0.9)

	// Corner rays pass beside the sphere
	rec = get(t, s, "/api/inspect?width=16&height=16&x=0&y=0&scene="+path)
	require.Equal(t, http.StatusOK, rec.Code)
	var miss InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &miss))
	assert.False(t, miss.Hit)

	rec = get(t, s, "/api/inspect?width=16&height=16&x=16&y=0&scene="+path)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = get(t, s, "/api/inspect?width=16&height=16&x=a&y=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRenderStream(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/render?width=16&height=8&spp=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := map[string][]string{}
	var order []string
	var current string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current = strings.TrimPrefix(line, "event: ")
			order = append(order, current)
		case strings.HasPrefix(line, "data: "):
			events[current] = append(events[current], strings.TrimPrefix(line, "data: "))
		}
	}
	require.NoError(t, scanner.Err())

	require.Empty(t, events["error"])
	assert.NotEmpty(t, events["console"])
	assert.NotEmpty(t, events["progress"])
	require.Len(t, events["complete"], 1)
	assert.Equal(t, "complete", order[len(order)-1])

	var last ProgressUpdate
	progress := events["progress"]
	require.NoError(t, json.Unmarshal([]byte(progress[len(progress)-1]), &last))
	assert.Greater(t, last.Total, 0)

	var complete CompleteUpdate
	require.NoError(t, json.Unmarshal([]byte(events["complete"][0]), &complete))
	assert.Equal(t, 16*8, complete.Stats.TotalPixels)

	data, err := base64.StdEncoding.DecodeString(complete.ImageData)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
}

func TestHandleRenderStreamError(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/render?scene=nope")
	assert.Contains(t, rec.Body.String(), "event: error")
}

func TestParseRenderRequestSeed(t *testing.T) {
	s, _ := newTestServer(t)

	req, err := s.parseRenderRequest(httptest.NewRequest(http.MethodGet, "/render?seed=0", nil))
	require.NoError(t, err)
	config := req.renderConfig(nil, nil)
	assert.True(t, config.SeedSet)
	assert.Equal(t, int64(0), config.Seed)

	req, err = s.parseRenderRequest(httptest.NewRequest(http.MethodGet, "/render", nil))
	require.NoError(t, err)
	assert.Nil(t, req.Seed)
	assert.False(t, req.renderConfig(nil, nil).SeedSet)
}
