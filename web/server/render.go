package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// RenderRequest represents a render request from the client.
// Zero values keep the scene's defaults.
type RenderRequest struct {
	Scene           string `json:"scene"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	SamplesPerPixel int    `json:"spp"`
	MaxDepth        int    `json:"maxDepth"`
	Seed            *int64 `json:"seed,omitempty"` // nil keeps the scene seed
	Format          string `json:"format"` // png, bmp or ppm
}

// ProgressUpdate reports finished row blocks during a streamed render
type ProgressUpdate struct {
	Done      int   `json:"done"`
	Total     int   `json:"total"`
	ElapsedMs int64 `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	Workers      int     `json:"workers"`
	TotalPixels  int     `json:"totalPixels"`
	TotalSamples int64   `json:"totalSamples"`
	TotalRays    int64   `json:"totalRays"`
	RaysPerSec   float64 `json:"raysPerSecond"`
	ElapsedMs    int64   `json:"elapsedMs"`
}

// CompleteUpdate carries the finished image of a streamed render
type CompleteUpdate struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "progress", "complete", "error"
	Data string `json:"data"` // JSON-encoded data
}

var contentTypes = map[string]string{
	"png": "image/png",
	"bmp": "image/bmp",
	"ppm": "image/x-portable-pixmap",
}

// handleRender renders a scene and returns the encoded image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	renderID := newRenderID()
	logger := NewWebLogger(renderID, nil, s.logger)
	logger.Printf("Scene %s: %d objects\n", sceneLabel(sceneObj), len(sceneObj.Primitives))
	fb, stats, err := sceneObj.Render(r.Context(), req.renderConfig(logger, nil))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client went away
			return
		}
		status := http.StatusInternalServerError
		if errors.Is(err, renderer.ErrInvalidConfig) {
			status = http.StatusBadRequest
		}
		http.Error(w, fmt.Sprintf("Render error: %v", err), status)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Encode(&buf, fb, req.Format); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypes[req.Format])
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Render-Id", renderID)
	w.Header().Set("X-Render-Stats", stats.String())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleRenderStream renders a scene and streams console, progress and the final image via SSE
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	s.setSSEHeaders(w)

	ctx := r.Context()
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, flusher, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()
	logger := NewWebLogger(newRenderID(), consoleChan, s.logger)
	logger.Printf("Scene %s: %d objects\n", sceneLabel(sceneObj), len(sceneObj.Primitives))

	startTime := time.Now()
	progress := func(done, total int) {
		s.sendJSON(ctx, sseEventChan, "progress", ProgressUpdate{
			Done:      done,
			Total:     total,
			ElapsedMs: time.Since(startTime).Milliseconds(),
		})
	}

	fb, stats, err := sceneObj.Render(ctx, req.renderConfig(logger, progress))

	// Console messages go out before the result
	close(consoleChan)
	<-consoleDone

	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Render error: %v", err))
		return
	}

	imageData, err := imageToBase64PNG(fb)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("failed to encode image: %v", err))
		return
	}
	s.sendJSON(ctx, sseEventChan, "complete", CompleteUpdate{
		ImageData: imageData,
		Stats: Stats{
			Workers:      stats.Workers,
			TotalPixels:  stats.TotalPixels,
			TotalSamples: stats.TotalSamples,
			TotalRays:    stats.TotalRays,
			RaysPerSec:   stats.RaysPerSecond(),
			ElapsedMs:    stats.Duration.Milliseconds(),
		},
	})
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents writes all SSE events from a single goroutine until the channel closes
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sseEventChan <-chan SSEEvent) {
	for event := range sseEventChan {
		if ctx.Err() != nil {
			// Client disconnected, drain so senders never block
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			continue
		}
		flusher.Flush()
	}
}

// streamConsoleMessages forwards console messages until consoleChan closes
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for msg := range consoleChan {
		s.sendJSON(ctx, sseEventChan, "console", msg)
	}
}

// sendJSON marshals v and queues it as an SSE event
func (s *Server) sendJSON(ctx context.Context, sseEventChan chan<- SSEEvent, eventType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Printf("Error marshaling %s event: %v\n", eventType, err)
		return
	}
	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan<- SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene"), Format: strings.ToLower(query.Get("format"))}
	if req.Scene == "" {
		req.Scene = "default"
	}
	if req.Format == "" {
		req.Format = "png"
	}
	if _, ok := contentTypes[req.Format]; !ok {
		return nil, fmt.Errorf("%w: %q", renderer.ErrUnknownFormat, req.Format)
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, minSize, maxSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 0, minSize, maxSize); err != nil {
		return nil, err
	}
	if req.SamplesPerPixel, err = parseIntParam(query, "spp", 0, minSamples, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "depth", 0, minDepth, maxDepth); err != nil {
		return nil, err
	}
	if value := query.Get("seed"); value != "" {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
		req.Seed = &seed
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.SamplesPerPixel > 100 {
		s.logger.Printf("Render warning: large image with high samples may render slowly\n")
	}

	return req, nil
}

func (req *RenderRequest) renderConfig(logger core.Logger, progress renderer.ProgressFunc) renderer.RenderConfig {
	config := renderer.RenderConfig{
		Width:           req.Width,
		Height:          req.Height,
		SamplesPerPixel: req.SamplesPerPixel,
		MaxDepth:        req.MaxDepth,
		Logger:          logger,
		Progress:        progress,
	}
	if req.Seed != nil {
		config.Seed = *req.Seed
		config.SeedSet = true
	}
	return config
}

// imageToBase64PNG encodes the framebuffer as base64 PNG
func imageToBase64PNG(fb *renderer.Framebuffer) (string, error) {
	var buf bytes.Buffer
	if err := renderer.WritePNG(&buf, fb); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func newRenderID() string {
	return fmt.Sprintf("render-%d", time.Now().UnixNano())
}

// sceneLabel names a scene for log lines
func sceneLabel(s *scene.Scene) string {
	if s.Name == "" {
		return "unnamed"
	}
	return s.Name
}
