package models

import (
	"os"
	"strconv"
	"time"
)

// TrackerConfig holds the reconciliation engine's tunables.
type TrackerConfig struct {
	// ScreenshotInterval is the polling tick period.
	ScreenshotInterval time.Duration
	// IdleThreshold is how long without input counts as idle.
	IdleThreshold time.Duration
	// IdleCheckInterval is how often idle state is re-evaluated between ticks.
	IdleCheckInterval time.Duration
	// ScreenshotDir is where captured images are written.
	ScreenshotDir string
	// ManualEntryTodayOnly restricts manual entries to the current date.
	// Preserved from the original behavior as an explicit policy knob.
	ManualEntryTodayOnly bool
	// DefaultManualStart is the start time used when a manual entry omits one.
	DefaultManualStart string
}

// DefaultTrackerConfig returns production defaults with env overrides.
func DefaultTrackerConfig() *TrackerConfig {
	config := &TrackerConfig{
		ScreenshotInterval:   30 * time.Second,
		IdleThreshold:        180 * time.Second,
		IdleCheckInterval:    5 * time.Second,
		ScreenshotDir:        "screenshots",
		ManualEntryTodayOnly: true,
		DefaultManualStart:   "09:00",
	}

	if s := os.Getenv("TRACKER_SCREENSHOT_INTERVAL_SECONDS"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			config.ScreenshotInterval = time.Duration(secs) * time.Second
		}
	}
	if s := os.Getenv("TRACKER_IDLE_THRESHOLD_SECONDS"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			config.IdleThreshold = time.Duration(secs) * time.Second
		}
	}
	if s := os.Getenv("TRACKER_SCREENSHOT_DIR"); s != "" {
		config.ScreenshotDir = s
	}
	if s := os.Getenv("TRACKER_MANUAL_ENTRY_ANY_DATE"); s != "" {
		if anyDate, err := strconv.ParseBool(s); err == nil {
			config.ManualEntryTodayOnly = !anyDate
		}
	}

	return config
}

// LLMConfig holds classification gateway configuration.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultLLMConfig returns sensible defaults for the classification gateway.
// The original deployment pointed at Groq's OpenAI-compatible endpoint.
func DefaultLLMConfig() *LLMConfig {
	config := &LLMConfig{
		APIKey:      os.Getenv("LLM_API_KEY"),
		BaseURL:     "https://api.groq.com/openai/v1",
		Model:       "llama-3.3-70b-versatile",
		MaxTokens:   300,
		Temperature: 0.2,
		Timeout:     30 * time.Second,
	}

	if url := os.Getenv("LLM_BASE_URL"); url != "" {
		config.BaseURL = url
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		config.Model = model
	}
	if maxTokensStr := os.Getenv("LLM_MAX_TOKENS"); maxTokensStr != "" {
		if maxTokens, err := strconv.Atoi(maxTokensStr); err == nil {
			config.MaxTokens = maxTokens
		}
	}
	if tempStr := os.Getenv("LLM_TEMPERATURE"); tempStr != "" {
		if temp, err := strconv.ParseFloat(tempStr, 64); err == nil {
			config.Temperature = temp
		}
	}
	if timeoutStr := os.Getenv("LLM_TIMEOUT_SECONDS"); timeoutStr != "" {
		if secs, err := strconv.Atoi(timeoutStr); err == nil && secs > 0 {
			config.Timeout = time.Duration(secs) * time.Second
		}
	}

	return config
}
