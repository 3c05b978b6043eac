package platform

import (
	"log"

	"worklens/models"

	"github.com/shirou/gopsutil/process"
)

// ForegroundHook reports the platform's foreground window as a process id
// plus window title. ok is false on platforms without window introspection
// (headless Linux, cloud hosts).
type ForegroundHook func() (pid int32, title string, ok bool)

// WindowProviderImpl resolves the foreground window to an (application,
// windowTitle) pair, using gopsutil to map the pid to its process name.
type WindowProviderImpl struct {
	hook ForegroundHook
}

// NewWindowProvider creates a window provider. A nil hook yields the
// ("N/A","N/A") sentinel on every read.
func NewWindowProvider(hook ForegroundHook) *WindowProviderImpl {
	return &WindowProviderImpl{hook: hook}
}

// ActiveWindow reads the current foreground window identity.
func (w *WindowProviderImpl) ActiveWindow() models.WindowInfo {
	if w.hook == nil {
		return models.WindowInfo{Application: "N/A", WindowTitle: "N/A"}
	}

	pid, title, ok := w.hook()
	if !ok {
		return models.WindowInfo{Application: "N/A", WindowTitle: "N/A"}
	}

	proc, err := process.NewProcess(pid)
	if err != nil {
		log.Printf("[Window] Process lookup failed for pid %d: %v", pid, err)
		return models.WindowInfo{Application: "Unknown", WindowTitle: "Unknown"}
	}
	name, err := proc.Name()
	if err != nil {
		log.Printf("[Window] Process name failed for pid %d: %v", pid, err)
		return models.WindowInfo{Application: "Unknown", WindowTitle: "Unknown"}
	}

	return models.WindowInfo{Application: name, WindowTitle: title}
}
