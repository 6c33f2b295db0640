package applicant

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubSink struct {
	rows [][]string
	tab  string
	err  error
}

func (s *stubSink) AppendRow(_ context.Context, tab string, row []string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.tab = tab
	s.rows = append(s.rows, row)
	return len(s.rows) + 1, nil
}

func fixedClock() time.Time {
	return time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
}

func TestRecordValidation(t *testing.T) {
	recorder := NewRecorder(&stubSink{}, "UserInfo", "", zap.NewNop())

	var validationErr *ValidationError

	_, err := recorder.Record(context.Background(), Submission{Name: "", Email: "a@b.com"})
	if !errors.As(err, &validationErr) || validationErr.Field != "name" {
		t.Fatalf("expected name validation error, got %v", err)
	}

	_, err = recorder.Record(context.Background(), Submission{Name: "A", Email: "  "})
	if !errors.As(err, &validationErr) || validationErr.Field != "email" {
		t.Fatalf("expected email validation error, got %v", err)
	}
}

func TestRecordRemoteRowShape(t *testing.T) {
	sink := &stubSink{}
	recorder := NewRecorder(sink, "UserInfo", "", zap.NewNop())
	recorder.now = fixedClock

	msg, err := recorder.Record(context.Background(), Submission{
		Name:  "Nguyễn Văn A",
		Email: "a@b.com",
		JobID: "job-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != SuccessMessage("Nguyễn Văn A") {
		t.Fatalf("unexpected message: %q", msg)
	}

	if sink.tab != "UserInfo" {
		t.Fatalf("unexpected tab: %q", sink.tab)
	}
	if len(sink.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(sink.rows))
	}

	want := []string{"2025-11-03 09:30:00", "Nguyễn Văn A", "a@b.com", "", "", "job-1"}
	got := sink.rows[0]
	if len(got) != len(want) {
		t.Fatalf("unexpected row length: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row column %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRecordFallsBackToLocalFile(t *testing.T) {
	fallback := filepath.Join(t.TempDir(), "user_info.json")

	sink := &stubSink{err: errors.New("network timeout")}
	recorder := NewRecorder(sink, "UserInfo", fallback, zap.NewNop())
	recorder.now = fixedClock

	msg, err := recorder.Record(context.Background(), Submission{Name: "A", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("expected fallback success, got %v", err)
	}

	// The candidate must not be able to tell which sink was used.
	if msg != SuccessMessage("A") {
		t.Fatalf("fallback message differs from remote message: %q", msg)
	}

	data, err := os.ReadFile(fallback)
	if err != nil {
		t.Fatalf("fallback file not written: %v", err)
	}

	var records []map[string]string
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("fallback file is not a JSON array: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0]["name"] != "A" || records[0]["email"] != "a@b.com" {
		t.Fatalf("unexpected record: %v", records[0])
	}
	if records[0]["timestamp"] != "2025-11-03 09:30:00" {
		t.Fatalf("unexpected timestamp: %q", records[0]["timestamp"])
	}
}

func TestRecordMergesWithExistingFallbackFile(t *testing.T) {
	fallback := filepath.Join(t.TempDir(), "user_info.json")
	seed := `[{"timestamp":"2025-01-01 00:00:00","name":"B","email":"b@c.com","phone":"","profile_link":"","job_id":""}]`
	if err := os.WriteFile(fallback, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	recorder := NewRecorder(nil, "UserInfo", fallback, zap.NewNop())
	recorder.now = fixedClock

	if _, err := recorder.Record(context.Background(), Submission{Name: "A", Email: "a@b.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(fallback)
	if err != nil {
		t.Fatal(err)
	}

	var records []map[string]string
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected merged array of 2, got %d", len(records))
	}
	if records[0]["name"] != "B" || records[1]["name"] != "A" {
		t.Fatalf("append order wrong: %v", records)
	}
}

func TestRecordBothSinksFail(t *testing.T) {
	sink := &stubSink{err: errors.New("network timeout")}
	recorder := NewRecorder(sink, "UserInfo", "", zap.NewNop())

	_, err := recorder.Record(context.Background(), Submission{Name: "A", Email: "a@b.com"})
	if err == nil {
		t.Fatal("expected an error when both sinks fail")
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		t.Fatal("sink failure must not be a validation error")
	}
}
