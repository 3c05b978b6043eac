package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"worklens/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedWindow struct{ window models.WindowInfo }

func (f fixedWindow) ActiveWindow() models.WindowInfo { return f.window }

type fileCapturer struct{ path string }

func (f fileCapturer) Capture(context.Context) (string, error) { return f.path, nil }

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func writeTempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o644))
	return path
}

func TestPushUploadsMultipartObservation(t *testing.T) {
	var gotAuth, gotApp, gotTitle string
	var gotImage []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotAuth = r.Header.Get("Authorization")
		gotApp = r.FormValue("application")
		gotTitle = r.FormValue("window_title")

		file, _, err := r.FormFile("screenshot")
		require.NoError(t, err)
		defer file.Close()
		buf := make([]byte, 64)
		n, _ := file.Read(buf)
		gotImage = buf[:n]

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := &Config{ServerURL: server.URL, Token: "secret-token", Interval: time.Second}
	a := New(cfg, fixedClock{now: time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)},
		fixedWindow{window: models.WindowInfo{Application: "Code.exe", WindowTitle: "main.go"}},
		fileCapturer{path: writeTempImage(t)})

	a.push(context.Background())

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "Code.exe", gotApp)
	assert.Equal(t, "main.go", gotTitle)
	assert.Equal(t, []byte("png-bytes"), gotImage)

	status := a.Status()
	assert.Equal(t, 1, status.Uploads)
	assert.Zero(t, status.Failures)
	assert.Equal(t, "Code.exe", status.LastWindow)
}

func TestPushRecordsServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := &Config{ServerURL: server.URL, Token: "secret-token", Interval: time.Second}
	a := New(cfg, fixedClock{now: time.Now()},
		fixedWindow{window: models.WindowInfo{Application: "Code.exe"}},
		fileCapturer{path: writeTempImage(t)})

	a.push(context.Background())

	status := a.Status()
	assert.Zero(t, status.Uploads)
	assert.Equal(t, 1, status.Failures)
	assert.Contains(t, status.LastError, "500")
}

func TestStatusRouter(t *testing.T) {
	cfg := &Config{ServerURL: "http://localhost:0", Interval: time.Second}
	a := New(cfg, fixedClock{now: time.Now()}, fixedWindow{}, fileCapturer{})

	router := StatusRouter(a)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"running\":false")
}
