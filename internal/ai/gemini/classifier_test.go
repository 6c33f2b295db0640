package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vti-labs/recruit-assistant/internal/ai"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestClassifierClassify(t *testing.T) {
	stub := &stubGenerator{response: `{"intent": "job_search", "position": "Python Developer", "skills": "Python, SQL"}`}
	classifier := NewClassifier(stub, zap.NewNop())

	turn, err := classifier.Classify(context.Background(), "mình muốn tìm việc python", []string{"user: xin chào", "assistant: chào bạn"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if turn.Intent != ai.IntentJobSearch {
		t.Fatalf("expected job_search intent, got %s", turn.Intent)
	}
	if turn.Slots.Position != "Python Developer" {
		t.Fatalf("unexpected position: %q", turn.Slots.Position)
	}
	if turn.Slots.Skills != "Python, SQL" {
		t.Fatalf("unexpected skills: %q", turn.Slots.Skills)
	}

	if !strings.Contains(stub.lastPrompt, "mình muốn tìm việc python") {
		t.Fatalf("message missing from prompt: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "user: xin chào") {
		t.Fatalf("history missing from prompt: %s", stub.lastPrompt)
	}
}

func TestClassifierEmptyHistoryPlaceholder(t *testing.T) {
	stub := &stubGenerator{response: `{"intent": "off_topic"}`}
	classifier := NewClassifier(stub, zap.NewNop())

	if _, err := classifier.Classify(context.Background(), "hi", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stub.lastPrompt, "(no prior messages)") {
		t.Fatalf("expected empty-history placeholder in prompt: %s", stub.lastPrompt)
	}
}

func TestClassifierHandlesCodeBlock(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"intent\": \"leave_info\", \"name\": \"Nguyễn Văn A\", \"email\": \"a@example.com\"}\n```"}
	classifier := NewClassifier(stub, zap.NewNop())

	turn, err := classifier.Classify(context.Background(), "em muốn ứng tuyển", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if turn.Intent != ai.IntentLeaveInfo {
		t.Fatalf("expected leave_info intent, got %s", turn.Intent)
	}
	if turn.Slots.Name != "Nguyễn Văn A" {
		t.Fatalf("unexpected name: %q", turn.Slots.Name)
	}
	if turn.Slots.Email != "a@example.com" {
		t.Fatalf("unexpected email: %q", turn.Slots.Email)
	}
}

func TestClassifierMalformedResponseIsOffTopic(t *testing.T) {
	cases := map[string]string{
		"not json":       "I think this is a job search.",
		"unknown intent": `{"intent": "greeting"}`,
	}

	for name, response := range cases {
		t.Run(name, func(t *testing.T) {
			classifier := NewClassifier(&stubGenerator{response: response}, zap.NewNop())

			turn, err := classifier.Classify(context.Background(), "hello", nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if turn.Intent != ai.IntentOffTopic {
				t.Fatalf("expected off_topic fallback, got %s", turn.Intent)
			}
		})
	}
}

func TestClassifierGeneratorError(t *testing.T) {
	classifier := NewClassifier(&stubGenerator{err: errors.New("quota exceeded")}, zap.NewNop())

	if _, err := classifier.Classify(context.Background(), "hello", nil); err == nil {
		t.Fatal("expected an error")
	}
}

func TestResponderRespond(t *testing.T) {
	stub := &stubGenerator{response: "  Mức lương khoảng 20-30 triệu. Bạn còn câu hỏi nào không?  "}
	responder := NewResponder(stub, zap.NewNop())

	answer, err := responder.Respond(context.Background(), "lương bao nhiêu?", "Mức lương: 20-30 triệu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if answer != "Mức lương khoảng 20-30 triệu. Bạn còn câu hỏi nào không?" {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if !strings.Contains(stub.lastPrompt, "lương bao nhiêu?") {
		t.Fatalf("question missing from prompt: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "Mức lương: 20-30 triệu") {
		t.Fatalf("material missing from prompt: %s", stub.lastPrompt)
	}
}

func TestResponderRequiresMaterial(t *testing.T) {
	responder := NewResponder(&stubGenerator{response: "answer"}, zap.NewNop())

	if _, err := responder.Respond(context.Background(), "q", "  "); err == nil {
		t.Fatal("expected an error for empty material")
	}
}
