package knowledge

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/vti-labs/recruit-assistant/internal/sheets"
)

// TabReader is the narrow slice of the spreadsheet client the index needs.
type TabReader interface {
	ReadTab(ctx context.Context, tab string) (*sheets.Tab, error)
}

var (
	// ErrUnavailable is returned when neither the remote source nor the
	// local CSV cache can provide records.
	ErrUnavailable = errors.New("knowledge store unavailable")
	// ErrMissingColumns is returned when the knowledge tab lacks a required
	// column. The whole load is rejected; there is no partial ingest.
	ErrMissingColumns = errors.New("knowledge tab is missing required columns")
)

var requiredColumns = []string{"Question", "Answer", "Category"}

// Index is the in-memory knowledge store. Records are bulk-loaded and the
// whole set is replaced on reload.
type Index struct {
	mu        sync.RWMutex
	records   []Record
	loaded    bool
	source    TabReader // nil when the spreadsheet is not configured
	tab       string
	cacheFile string
	logger    *zap.Logger
}

func NewIndex(source TabReader, tab, cacheFile string, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		source:    source,
		tab:       tab,
		cacheFile: cacheFile,
		logger:    logger,
	}
}

// Retrieve returns the single best match for the query, or nil when no record
// shares a token with it. Loads the index lazily on first use.
func (i *Index) Retrieve(ctx context.Context, query string) (*Hit, error) {
	records, err := i.load(ctx)
	if err != nil {
		return nil, err
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	var best *Hit
	for _, record := range records {
		score := overlap(queryTokens, tokenize(record.Question+" "+record.Category))
		if score == 0 {
			continue
		}
		if best == nil || score > best.Confidence {
			best = &Hit{
				Question:   record.Question,
				Answer:     record.Answer,
				Category:   record.Category,
				Confidence: score,
			}
		}
	}

	return best, nil
}

// Reload discards the records and re-fetches from the backing source.
func (i *Index) Reload(ctx context.Context) error {
	records, err := i.fetch(ctx)
	if err != nil {
		return err
	}

	i.mu.Lock()
	i.records = records
	i.loaded = true
	i.mu.Unlock()

	i.logger.Info("knowledge index reloaded", zap.Int("records", len(records)))
	return nil
}

func (i *Index) load(ctx context.Context) ([]Record, error) {
	i.mu.RLock()
	if i.loaded {
		defer i.mu.RUnlock()
		return i.records, nil
	}
	i.mu.RUnlock()

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.loaded {
		return i.records, nil
	}

	records, err := i.fetch(ctx)
	if err != nil {
		return nil, err
	}

	i.records = records
	i.loaded = true
	return records, nil
}

func (i *Index) fetch(ctx context.Context) ([]Record, error) {
	if i.source != nil {
		records, err := i.fromSheet(ctx)
		if err == nil {
			return records, nil
		}
		if errors.Is(err, ErrMissingColumns) {
			return nil, err
		}
		i.logger.Warn("loading knowledge from spreadsheet failed, trying local cache",
			zap.String("tab", i.tab),
			zap.Error(err),
		)
	}

	records, err := i.fromCache()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return records, nil
}

func (i *Index) fromSheet(ctx context.Context) ([]Record, error) {
	tab, err := i.source.ReadTab(ctx, i.tab)
	if err != nil {
		return nil, err
	}

	if !tab.HasColumns(requiredColumns...) {
		return nil, fmt.Errorf("%w: want %v, got %v", ErrMissingColumns, requiredColumns, tab.Headers)
	}

	records := make([]Record, 0, len(tab.Rows))
	for _, row := range tab.Rows {
		records = append(records, Record{
			Question: row["Question"],
			Answer:   row["Answer"],
			Category: row["Category"],
		})
	}

	if err := i.writeCache(records); err != nil {
		i.logger.Warn("writing knowledge cache file failed",
			zap.String("path", i.cacheFile),
			zap.Error(err),
		)
	}

	i.logger.Info("loaded knowledge from spreadsheet",
		zap.String("tab", i.tab),
		zap.Int("records", len(records)),
	)

	return records, nil
}

func (i *Index) fromCache() ([]Record, error) {
	if i.cacheFile == "" {
		return nil, errors.New("no cache file configured")
	}

	file, err := os.Open(i.cacheFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing cache file %q: %w", i.cacheFile, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("cache file %q has no records", i.cacheFile)
	}

	header := rows[0]
	col := make(map[string]int, len(header))
	for idx, name := range header {
		col[strings.TrimSpace(name)] = idx
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: cache file %q", ErrMissingColumns, i.cacheFile)
		}
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, Record{
			Question: cell(row, col["Question"]),
			Answer:   cell(row, col["Answer"]),
			Category: cell(row, col["Category"]),
		})
	}

	i.logger.Info("loaded knowledge from local cache",
		zap.String("path", i.cacheFile),
		zap.Int("records", len(records)),
	)

	return records, nil
}

func (i *Index) writeCache(records []Record) error {
	if i.cacheFile == "" {
		return nil
	}

	if dir := filepath.Dir(i.cacheFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.Create(i.cacheFile)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(requiredColumns); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write([]string{record.Question, record.Answer, record.Category}); err != nil {
			return err
		}
	}
	writer.Flush()

	return writer.Error()
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// overlap scores how much of the query is covered by the document tokens.
func overlap(query, doc []string) float64 {
	if len(query) == 0 {
		return 0
	}

	docSet := make(map[string]bool, len(doc))
	for _, token := range doc {
		docSet[token] = true
	}

	hits := 0
	for _, token := range query {
		if docSet[token] {
			hits++
		}
	}

	return float64(hits) / float64(len(query))
}
