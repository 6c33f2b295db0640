package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/vti-labs/recruit-assistant/internal/sheets"
)

// TabReader is the narrow slice of the spreadsheet client the directory needs.
type TabReader interface {
	ReadTab(ctx context.Context, tab string) (*sheets.Tab, error)
}

// ErrUnavailable is returned when neither the remote source nor the local
// cache can provide postings.
var ErrUnavailable = errors.New("job directory unavailable")

// Directory loads postings from the jobs tab, caching them to a local JSON
// file and falling back to that file when the remote source fails. The
// snapshot is read-only between reloads and replaced wholesale.
type Directory struct {
	mu        sync.RWMutex
	snapshot  *Postings
	source    TabReader // nil when the spreadsheet is not configured
	tab       string
	cacheFile string
	logger    *zap.Logger
}

func NewDirectory(source TabReader, tab, cacheFile string, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{
		source:    source,
		tab:       tab,
		cacheFile: cacheFile,
		logger:    logger,
	}
}

// Load returns the cached snapshot, fetching it on first use.
func (d *Directory) Load(ctx context.Context) (*Postings, error) {
	d.mu.RLock()
	if d.snapshot != nil {
		defer d.mu.RUnlock()
		return d.snapshot, nil
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.snapshot != nil {
		return d.snapshot, nil
	}

	postings, err := d.fetch(ctx)
	if err != nil {
		return nil, err
	}

	d.snapshot = postings
	return postings, nil
}

// Reload discards the snapshot and re-fetches from the backing source.
func (d *Directory) Reload(ctx context.Context) error {
	postings, err := d.fetch(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.snapshot = postings
	d.mu.Unlock()

	d.logger.Info("job directory reloaded", zap.Int("postings", postings.Len()))
	return nil
}

func (d *Directory) fetch(ctx context.Context) (*Postings, error) {
	if d.source != nil {
		postings, err := d.fromSheet(ctx)
		if err == nil {
			return postings, nil
		}
		d.logger.Warn("loading jobs from spreadsheet failed, trying local cache",
			zap.String("tab", d.tab),
			zap.Error(err),
		)
	}

	postings, err := d.fromCache()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return postings, nil
}

func (d *Directory) fromSheet(ctx context.Context) (*Postings, error) {
	tab, err := d.source.ReadTab(ctx, d.tab)
	if err != nil {
		return nil, err
	}

	postings, err := DecodeRows(tab.Rows)
	if err != nil {
		return nil, err
	}

	if err := d.writeCache(postings); err != nil {
		d.logger.Warn("writing job cache file failed",
			zap.String("path", d.cacheFile),
			zap.Error(err),
		)
	}

	d.logger.Info("loaded jobs from spreadsheet",
		zap.String("tab", d.tab),
		zap.Int("postings", postings.Len()),
	)

	return postings, nil
}

func (d *Directory) fromCache() (*Postings, error) {
	if d.cacheFile == "" {
		return nil, errors.New("no cache file configured")
	}

	data, err := os.ReadFile(d.cacheFile)
	if err != nil {
		return nil, err
	}

	var postings Postings
	if err := json.Unmarshal(data, &postings); err != nil {
		return nil, fmt.Errorf("parsing cache file %q: %w", d.cacheFile, err)
	}

	d.logger.Info("loaded jobs from local cache",
		zap.String("path", d.cacheFile),
		zap.Int("postings", postings.Len()),
	)

	return &postings, nil
}

func (d *Directory) writeCache(postings *Postings) error {
	if d.cacheFile == "" {
		return nil
	}

	if dir := filepath.Dir(d.cacheFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(postings, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(d.cacheFile, data, 0o644)
}
