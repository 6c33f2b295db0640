package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/vti-labs/recruit-assistant/internal/sheets"
)

type stubTabReader struct {
	tab *sheets.Tab
	err error
}

func (s *stubTabReader) ReadTab(_ context.Context, _ string) (*sheets.Tab, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tab, nil
}

func knowledgeTab() *sheets.Tab {
	return &sheets.Tab{
		Headers: []string{"Question", "Answer", "Category"},
		Rows: []map[string]string{
			{
				"Question": "Quy trình phỏng vấn gồm mấy vòng?",
				"Answer":   "Quy trình gồm 3 vòng: sơ loại hồ sơ, phỏng vấn kỹ thuật và phỏng vấn HR.",
				"Category": "Phỏng vấn",
			},
			{
				"Question": "Công ty có hỗ trợ làm việc từ xa không?",
				"Answer":   "Có, nhân viên được làm việc từ xa tối đa 2 ngày mỗi tuần.",
				"Category": "Chế độ",
			},
		},
	}
}

func TestRetrieveBestMatch(t *testing.T) {
	index := NewIndex(&stubTabReader{tab: knowledgeTab()}, "Knowledge", "", zap.NewNop())

	hit, err := index.Retrieve(context.Background(), "phỏng vấn mấy vòng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit == nil {
		t.Fatal("expected a hit")
	}
	if hit.Category != "Phỏng vấn" {
		t.Fatalf("unexpected category: %q", hit.Category)
	}
	if hit.Confidence <= 0 || hit.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", hit.Confidence)
	}
}

func TestRetrieveNoMatch(t *testing.T) {
	index := NewIndex(&stubTabReader{tab: knowledgeTab()}, "Knowledge", "", zap.NewNop())

	hit, err := index.Retrieve(context.Background(), "blockchain gaming")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit != nil {
		t.Fatalf("expected no hit, got %+v", hit)
	}
}

func TestMissingColumnsRejectsWholeLoad(t *testing.T) {
	tab := &sheets.Tab{
		Headers: []string{"Question", "Answer"},
		Rows:    []map[string]string{{"Question": "q", "Answer": "a"}},
	}
	index := NewIndex(&stubTabReader{tab: tab}, "Knowledge", "", zap.NewNop())

	_, err := index.Retrieve(context.Background(), "q")
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
}

func TestCSVCacheFallback(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "knowledge.csv")

	// First load writes the cache.
	index := NewIndex(&stubTabReader{tab: knowledgeTab()}, "Knowledge", cache, zap.NewNop())
	if _, err := index.Retrieve(context.Background(), "phỏng vấn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(cache); err != nil {
		t.Fatalf("cache file was not written: %v", err)
	}

	// A fresh index whose remote source fails must serve the cache.
	fallback := NewIndex(&stubTabReader{err: errors.New("api unreachable")}, "Knowledge", cache, zap.NewNop())
	hit, err := fallback.Retrieve(context.Background(), "làm việc từ xa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit == nil || hit.Category != "Chế độ" {
		t.Fatalf("unexpected hit from cache: %+v", hit)
	}
}

func TestUnavailableWithoutSourceOrCache(t *testing.T) {
	index := NewIndex(nil, "Knowledge", filepath.Join(t.TempDir(), "missing.csv"), zap.NewNop())

	_, err := index.Retrieve(context.Background(), "anything")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestReloadReplacesRecords(t *testing.T) {
	source := &stubTabReader{tab: knowledgeTab()}
	index := NewIndex(source, "Knowledge", "", zap.NewNop())

	if _, err := index.Retrieve(context.Background(), "phỏng vấn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	source.tab = &sheets.Tab{
		Headers: []string{"Question", "Answer", "Category"},
		Rows: []map[string]string{
			{"Question": "Lương thử việc bao nhiêu?", "Answer": "85% lương chính thức.", "Category": "Lương"},
		},
	}
	if err := index.Reload(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hit, err := index.Retrieve(context.Background(), "phỏng vấn mấy vòng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit != nil && hit.Category == "Phỏng vấn" {
		t.Fatal("reload did not replace the record set")
	}
}
