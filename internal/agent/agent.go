package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"worklens/domain/core"
	"worklens/ports"
)

// Config holds the desktop agent's tunables.
type Config struct {
	// ServerURL is the tracking API base URL, e.g. http://localhost:8000.
	ServerURL string
	// Token is the user's API bearer token.
	Token string
	// Interval is the capture/push period.
	Interval time.Duration
	// StatusAddr is the localhost status server bind address.
	StatusAddr string
}

// DefaultConfig returns agent defaults with env overrides.
func DefaultConfig() *Config {
	config := &Config{
		ServerURL:  "http://localhost:8000",
		Token:      os.Getenv("AGENT_API_TOKEN"),
		Interval:   30 * time.Second,
		StatusAddr: "127.0.0.1:8765",
	}

	if url := os.Getenv("AGENT_SERVER_URL"); url != "" {
		config.ServerURL = url
	}
	if s := os.Getenv("AGENT_INTERVAL_SECONDS"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			config.Interval = time.Duration(secs) * time.Second
		}
	}
	if addr := os.Getenv("AGENT_STATUS_ADDR"); addr != "" {
		config.StatusAddr = addr
	}

	return config
}

// Status is a snapshot of the agent's push loop, served by the status
// endpoint.
type Status struct {
	Running      bool      `json:"running"`
	Uploads      int       `json:"uploads"`
	Failures     int       `json:"failures"`
	LastUploadAt time.Time `json:"last_upload_at,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	LastWindow   string    `json:"last_window,omitempty"`
}

// Agent is the desktop push loop: capture the active window and screen,
// then POST the observation to the tracking API. The server owns all
// merge decisions; the agent is stateless beyond status bookkeeping.
type Agent struct {
	cfg      *Config
	clock    core.Clock
	windows  ports.WindowProvider
	capturer ports.ScreenCapturer
	client   *http.Client

	mu     sync.Mutex
	status Status
}

// New creates a desktop agent.
func New(cfg *Config, clock core.Clock, windows ports.WindowProvider, capturer ports.ScreenCapturer) *Agent {
	return &Agent{
		cfg:      cfg,
		clock:    clock,
		windows:  windows,
		capturer: capturer,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Run drives the capture/push loop until ctx is cancelled. A failed push
// is logged and retried next tick.
func (a *Agent) Run(ctx context.Context) error {
	log.Printf("[Agent] Started (server=%s, interval=%s)", a.cfg.ServerURL, a.cfg.Interval)
	a.setRunning(true)
	defer a.setRunning(false)

	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	a.push(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[Agent] Stopped")
			return ctx.Err()
		case <-ticker.C:
			a.push(ctx)
		}
	}
}

// Status returns the current loop snapshot.
func (a *Agent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *Agent) setRunning(running bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Running = running
}

func (a *Agent) recordSuccess(window string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Uploads++
	a.status.LastUploadAt = a.clock.Now()
	a.status.LastError = ""
	a.status.LastWindow = window
}

func (a *Agent) recordFailure(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Failures++
	a.status.LastError = err.Error()
}

// push performs one capture-and-upload cycle.
func (a *Agent) push(ctx context.Context) {
	window := a.windows.ActiveWindow()

	path, err := a.capturer.Capture(ctx)
	if err != nil {
		log.Printf("[Agent] Capture failed: %v", err)
		a.recordFailure(err)
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[Agent] Screenshot read failed: %v", err)
		a.recordFailure(err)
		return
	}

	if err := a.upload(ctx, window.Application, window.WindowTitle, data); err != nil {
		log.Printf("[Agent] Upload failed: %v", err)
		a.recordFailure(err)
		return
	}
	a.recordSuccess(window.Application)
}

// upload POSTs one observation as multipart form data.
func (a *Agent) upload(ctx context.Context, application, windowTitle string, image []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("screenshot", "screenshot.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(image); err != nil {
		return err
	}
	if err := writer.WriteField("application", application); err != nil {
		return err
	}
	if err := writer.WriteField("window_title", windowTitle); err != nil {
		return err
	}
	if err := writer.WriteField("taken_at", a.clock.Now().Format(time.RFC3339)); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.ServerURL+"/api/upload-screenshot", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.cfg.Token)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, payload)
	}
	return nil
}
