package gemini

import (
	"context"
	"fmt"
	"strings"

	_ "embed"

	"go.uber.org/zap"
)

//go:embed responder_prompt.md
var responderPrompt string

// Responder phrases a conversational answer from retrieved material. The
// prompt forbids the model from adding facts of its own.
type Responder struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewResponder(generator contentGenerator, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Responder{
		generator: generator,
		logger:    logger,
	}
}

func (r *Responder) Respond(ctx context.Context, question, material string) (string, error) {
	question = strings.TrimSpace(question)
	material = strings.TrimSpace(material)
	if question == "" {
		return "", fmt.Errorf("question must not be empty")
	}
	if material == "" {
		return "", fmt.Errorf("material must not be empty")
	}

	answer, err := r.generator.GenerateContent(ctx, buildResponderPrompt(question, material))
	if err != nil {
		return "", fmt.Errorf("phrase answer: %w", err)
	}

	return strings.TrimSpace(answer), nil
}

func buildResponderPrompt(question, material string) string {
	template := responderPrompt
	if strings.TrimSpace(template) == "" {
		template = "Question:\n{{QUESTION}}\n\nMaterial:\n{{MATERIAL}}\n\nAnswer:"
	}

	prompt := strings.ReplaceAll(template, "{{QUESTION}}", question)
	return strings.ReplaceAll(prompt, "{{MATERIAL}}", material)
}
