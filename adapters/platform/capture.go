package platform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// ScreenCapturerImpl captures the screen by shelling out to a platform
// capture tool and writing PNGs under a screenshots directory. The tool is
// configurable; defaults cover the common cases (gnome-screenshot, scrot,
// screencapture on macOS).
type ScreenCapturerImpl struct {
	dir     string
	command string
	args    func(path string) []string
}

// NewScreenCapturer creates a capturer writing into dir.
func NewScreenCapturer(dir string) *ScreenCapturerImpl {
	c := &ScreenCapturerImpl{dir: dir}
	for _, tool := range []string{"gnome-screenshot", "scrot", "screencapture"} {
		if _, err := exec.LookPath(tool); err == nil {
			c.command = tool
			break
		}
	}
	switch c.command {
	case "gnome-screenshot":
		c.args = func(path string) []string { return []string{"-f", path} }
	case "screencapture":
		c.args = func(path string) []string { return []string{"-x", path} }
	default:
		c.args = func(path string) []string { return []string{path} }
	}
	return c
}

// Capture writes a timestamped screenshot and returns its path.
func (c *ScreenCapturerImpl) Capture(ctx context.Context) (string, error) {
	if c.command == "" {
		return "", fmt.Errorf("no screen capture tool available")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	path := filepath.Join(c.dir, fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405")))
	cmd := exec.CommandContext(ctx, c.command, c.args(path)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("capture failed: %v: %s", err, out)
	}
	return path, nil
}

// UploadStore implements ports.ImageStore, writing agent-pushed image
// bytes into the screenshots directory.
type UploadStore struct {
	Dir string
}

// Save writes the pushed bytes and returns the stored path.
func (s *UploadStore) Save(ctx context.Context, userTag string, data []byte, takenAt time.Time) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("upload_%s_%s.png", userTag, takenAt.Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}
