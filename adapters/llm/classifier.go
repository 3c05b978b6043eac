package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"worklens/models"
	"worklens/ports"
)

// ClassifierAdapter implements ports.Classifier over a chat-completion
// transport. It owns the normalization boundary: whatever shape the model
// returns (object, quoted object, array of objects) is collapsed into one
// Classification before anything downstream sees it, and every failure
// path degrades to the deterministic fallback. Classify never errors.
type ClassifierAdapter struct {
	client  LLMClient
	clients ports.ClientRepository
	timeout time.Duration
}

// NewClassifier creates a classifier over the given transport. clients may
// be nil when client-name matching is unavailable (agent-side use).
func NewClassifier(client LLMClient, clients ports.ClientRepository, timeout time.Duration) *ClassifierAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClassifierAdapter{client: client, clients: clients, timeout: timeout}
}

const promptFull = `You are an AI that analyzes user activity for productivity tracking.

Application: %s
Window Title: %s
Extracted Text: %s

Return ONLY a JSON object with the following keys:
- client_name (string)
- activity_type (string)
- productivity_level (integer from 1-10, where 1 = unproductive/idle, 10 = highly productive.
  Coding, designing, writing documents, attending meetings: score 7-10.
  Social media, video sites, unrelated apps: score 0-2.
  Ambiguous but seemingly work-related: default to 7.)
- description (string)
- project_or_task (string)
- category (string: Work, Communication, Research, Social, Idle/Leisure, etc.)

Return only ONE JSON object. Do not return an array or multiple objects.`

const promptRestricted = `You are an AI that analyzes user activity for productivity tracking.

Application: %s
Window Title: %s
Extracted Text: %s

Return ONLY a JSON object with the following keys:
- activity_type (string)
- productivity_level (integer from 1-10, where 1 = unproductive/idle, 10 = highly productive)
- category (string: Work, Communication, Research, Social, Idle/Leisure, etc.)`

// maxExtractLen bounds OCR text shipped in the prompt.
const maxExtractLen = 2000

// Classify produces a normalized classification for an observation.
func (a *ClassifierAdapter) Classify(ctx context.Context, window models.WindowInfo, extractedText string, restricted bool) (models.Classification, string) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if len(extractedText) > maxExtractLen {
		extractedText = extractedText[:maxExtractLen]
	}

	template := promptFull
	if restricted {
		template = promptRestricted
	}
	prompt := fmt.Sprintf(template, window.Application, window.WindowTitle, extractedText)

	raw, err := a.client.ChatCompletion(ctx, prompt)
	if err != nil {
		log.Printf("[Classifier] Gateway call failed, using fallback: %v", err)
		return a.Fallback(window), raw
	}

	classification, err := Normalize(raw)
	if err != nil {
		log.Printf("[Classifier] Unparseable gateway response, using fallback: %v", err)
		return a.Fallback(window), raw
	}

	classification.ClientName = a.matchClient(ctx, classification.ClientName)
	return classification, raw
}

// matchClient validates a reported client name against the clients table.
func (a *ClassifierAdapter) matchClient(ctx context.Context, reported string) string {
	if a.clients == nil {
		if strings.TrimSpace(reported) == "" {
			return models.ClientNone
		}
		return reported
	}
	matched, err := a.clients.Match(ctx, reported)
	if err != nil {
		log.Printf("[Classifier] Client match failed: %v", err)
		return models.ClientNone
	}
	return matched
}

// Fallback derives a deterministic classification from the application name
// alone. Office-suite and meeting apps score as document editing; anything
// else as general work.
func (a *ClassifierAdapter) Fallback(window models.WindowInfo) models.Classification {
	app := strings.ToLower(window.Application)
	desc := fmt.Sprintf("Working with %s", app)

	if strings.Contains(app, "word") || strings.Contains(app, "excel") || strings.Contains(app, "teams") {
		return models.Classification{
			ClientName:        models.ClientNone,
			ActivityType:      "document_editing",
			ProductivityLevel: 8,
			Description:       desc,
			ProjectOrTask:     "Unknown",
			Category:          "Work",
		}
	}
	return models.Classification{
		ClientName:        models.ClientNone,
		ActivityType:      "general_work",
		ProductivityLevel: 7,
		Description:       desc,
		ProjectOrTask:     "Unknown",
		Category:          "Work",
	}
}

// Normalize collapses the three response shapes the model has been seen to
// produce - a JSON object, a JSON-encoded string wrapping an object, or an
// array of objects - into one Classification. Markdown fences and chatter
// lines are stripped first.
func Normalize(raw string) (models.Classification, error) {
	content := cleanJSONContent(raw)
	if content == "" {
		return models.Classification{}, fmt.Errorf("empty response")
	}

	// Quoted-string shape: unwrap and retry.
	if strings.HasPrefix(content, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(content), &inner); err == nil {
			content = strings.TrimSpace(inner)
		}
	}

	// Array shape: take the first element.
	if strings.HasPrefix(content, "[") {
		var list []models.Classification
		if err := json.Unmarshal([]byte(content), &list); err != nil {
			return models.Classification{}, fmt.Errorf("parse array response: %w", err)
		}
		if len(list) == 0 {
			return models.Classification{}, fmt.Errorf("empty array response")
		}
		return list[0], nil
	}

	var classification models.Classification
	if err := json.Unmarshal([]byte(content), &classification); err != nil {
		return models.Classification{}, fmt.Errorf("parse object response: %w", err)
	}
	return classification, nil
}

// cleanJSONContent removes markdown code blocks and chatter around JSON.
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	// Drop leading chatter lines before the first JSON token.
	if idx := strings.IndexAny(content, "{[\""); idx > 0 {
		prefix := content[:idx]
		if !strings.ContainsAny(prefix, "{[") {
			content = content[idx:]
		}
	}

	return strings.TrimSpace(content)
}
