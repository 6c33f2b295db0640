package applicant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const timestampLayout = "2006-01-02 15:04:05"

// Destination names the sink a submission ended up in.
type Destination string

const (
	DestinationRemote Destination = "remote"
	DestinationLocal  Destination = "local"
)

// ValidationError reports a missing required field. It is rendered to the
// candidate as a polite request, never escalated.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field %q is missing", e.Field)
}

// Submission is one applicant contact record. Name and Email are required;
// the rest is optional and stored as blanks when absent. No format validation
// is applied beyond presence.
type Submission struct {
	Timestamp   time.Time `json:"-"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	ProfileLink string    `json:"profile_link"`
	JobID       string    `json:"job_id"`
}

// localRecord is the JSON shape of the fallback file.
type localRecord struct {
	Timestamp   string `json:"timestamp"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ProfileLink string `json:"profile_link"`
	JobID       string `json:"job_id"`
}

// RemoteSink appends one row to the remote tabular store.
type RemoteSink interface {
	AppendRow(ctx context.Context, tab string, row []string) (int, error)
}

// Recorder persists applicant submissions. The remote sheet is tried first;
// any remote failure falls back to a local JSON file. Exactly one sink
// receives each submission and the success message is identical for both, so
// the candidate cannot tell which one was used.
type Recorder struct {
	mu           sync.Mutex
	remote       RemoteSink // nil when the spreadsheet is not configured
	tab          string
	fallbackPath string
	logger       *zap.Logger
	now          func() time.Time
}

func NewRecorder(remote RemoteSink, tab, fallbackPath string, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		remote:       remote,
		tab:          tab,
		fallbackPath: fallbackPath,
		logger:       logger,
		now:          time.Now,
	}
}

// SuccessMessage is what the candidate sees once either sink accepted the row.
func SuccessMessage(name string) string {
	return fmt.Sprintf("✅ Đã lưu thông tin của %s thành công! Bộ phận tuyển dụng sẽ liên hệ với bạn sớm nhất.", name)
}

// Record validates and persists one submission, returning the user-facing
// success message. Submissions are serialized with a mutex: the remote path
// scans for the last populated row before inserting, and concurrent writers
// inside one process must not compute the same row. Cross-process races
// remain possible and are an accepted limitation of the backing store.
func (r *Recorder) Record(ctx context.Context, sub Submission) (string, error) {
	if strings.TrimSpace(sub.Name) == "" {
		return "", &ValidationError{Field: "name"}
	}
	if strings.TrimSpace(sub.Email) == "" {
		return "", &ValidationError{Field: "email"}
	}

	if sub.Timestamp.IsZero() {
		sub.Timestamp = r.now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.remote != nil {
		row := []string{
			sub.Timestamp.Format(timestampLayout),
			sub.Name,
			sub.Email,
			sub.Phone,
			sub.ProfileLink,
			sub.JobID,
		}

		if _, err := r.remote.AppendRow(ctx, r.tab, row); err == nil {
			r.logger.Info("saved applicant submission",
				zap.String("destination", string(DestinationRemote)),
				zap.String("name", sub.Name),
			)
			return SuccessMessage(sub.Name), nil
		} else {
			r.logger.Warn("remote applicant sink failed, falling back to local file",
				zap.Error(err),
			)
		}
	}

	if err := r.saveLocal(sub); err != nil {
		r.logger.Error("local applicant sink failed", zap.Error(err))
		return "", fmt.Errorf("saving applicant submission: %w", err)
	}

	r.logger.Info("saved applicant submission",
		zap.String("destination", string(DestinationLocal)),
		zap.String("name", sub.Name),
	)
	return SuccessMessage(sub.Name), nil
}

// saveLocal appends the submission to the JSON-array fallback file, merging
// with existing content and creating the file when absent.
func (r *Recorder) saveLocal(sub Submission) error {
	if r.fallbackPath == "" {
		return errors.New("no fallback file configured")
	}

	if dir := filepath.Dir(r.fallbackPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	var records []localRecord
	if data, err := os.ReadFile(r.fallbackPath); err == nil {
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("parsing fallback file %q: %w", r.fallbackPath, err)
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	records = append(records, localRecord{
		Timestamp:   sub.Timestamp.Format(timestampLayout),
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       sub.Phone,
		ProfileLink: sub.ProfileLink,
		JobID:       sub.JobID,
	})

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(r.fallbackPath, data, 0o644)
}
