package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/vti-labs/recruit-assistant/internal/ai"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed classifier_prompt.md
var classifierPrompt string

// Classifier decides the intent of one user turn and extracts its slots
// with a single Gemini call.
type Classifier struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewClassifier(generator contentGenerator, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Classifier{
		generator: generator,
		logger:    logger,
	}
}

func (c *Classifier) Classify(ctx context.Context, message string, history []string) (*ai.Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("message must not be empty")
	}

	raw, err := c.generator.GenerateContent(ctx, buildClassifierPrompt(message, history))
	if err != nil {
		return nil, fmt.Errorf("classify turn: %w", err)
	}

	turn, err := parseTurn(raw)
	if err != nil {
		// A malformed verdict is not worth failing the whole turn over.
		// Treat it as off-topic so the caller answers with a redirect.
		c.logger.Warn("unparseable classifier response, treating turn as off-topic",
			zap.Error(err),
		)
		return &ai.Turn{Intent: ai.IntentOffTopic}, nil
	}

	return turn, nil
}

func buildClassifierPrompt(message string, history []string) string {
	template := classifierPrompt
	if strings.TrimSpace(template) == "" {
		template = "Conversation:\n{{HISTORY}}\n\nMessage:\n{{MESSAGE}}\n\nJSON Response:"
	}

	rendered := "(no prior messages)"
	if len(history) > 0 {
		rendered = strings.Join(history, "\n")
	}

	prompt := strings.ReplaceAll(template, "{{HISTORY}}", rendered)
	return strings.ReplaceAll(prompt, "{{MESSAGE}}", message)
}

func parseTurn(raw string) (*ai.Turn, error) {
	cleaned := extractJSON(strings.TrimSpace(raw))

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	intent, err := parseIntent(coerceString(data["intent"]))
	if err != nil {
		return nil, err
	}

	return &ai.Turn{
		Intent: intent,
		Slots: ai.Slots{
			Position:     coerceString(data["position"]),
			Skills:       coerceString(data["skills"]),
			Name:         coerceString(data["name"]),
			Email:        coerceString(data["email"]),
			Phone:        coerceString(data["phone"]),
			ProfileLink:  coerceString(data["profile_link"]),
			JobReference: coerceString(data["job_reference"]),
		},
	}, nil
}

func parseIntent(raw string) (ai.Intent, error) {
	switch intent := ai.Intent(strings.ToLower(raw)); intent {
	case ai.IntentInformational, ai.IntentJobSearch, ai.IntentLeaveInfo, ai.IntentOffTopic:
		return intent, nil
	default:
		return "", fmt.Errorf("unknown intent %q", raw)
	}
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
