package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by forwarding messages to a console channel
// and to the server log
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	serverLog   core.Logger
}

// NewWebLogger creates a new web logger for a specific render.
// A nil serverLog discards the server-side copy.
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage, serverLog core.Logger) core.Logger {
	if serverLog == nil {
		serverLog = core.NewNopLogger()
	}
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
		serverLog:   serverLog,
	}
}

// Printf implements core.Logger. It never blocks the render.
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	wl.serverLog.Printf("[%s] %s", wl.renderID, strings.TrimRight(message, "\n"))

	if wl.consoleChan == nil {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{
		RenderID:  wl.renderID,
		Message:   message,
		Timestamp: time.Now(),
		Level:     "info",
	}:
	default:
		// Channel full, drop the message
	}
}
