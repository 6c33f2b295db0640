package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const requestTimeout = 15 * time.Second

// ErrNoData is returned when a tab exists but contains no rows beyond the header.
var ErrNoData = errors.New("no data in sheet")

// Tab is the content of a single spreadsheet tab. Rows are keyed by the header
// row; cells missing at the end of a row map to empty strings.
type Tab struct {
	Headers []string
	Rows    []map[string]string
}

// HasColumns reports whether every named column is present in the header row.
func (t *Tab) HasColumns(names ...string) bool {
	for _, name := range names {
		found := false
		for _, header := range t.Headers {
			if header == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Client reads and appends rows of a single Google spreadsheet.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
	timeout       time.Duration
}

func New(ctx context.Context, creds []byte, spreadsheetID string, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("spreadsheet id is required")
	}

	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsJSON(creds),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        logger,
		timeout:       requestTimeout,
	}, nil
}

// ReadTab fetches the whole tab and returns it keyed by its header row.
func (c *Client) ReadTab(ctx context.Context, tab string) (*Tab, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, tab).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading tab %q: %w", tab, err)
	}

	if len(resp.Values) < 2 {
		return nil, fmt.Errorf("tab %q: %w", tab, ErrNoData)
	}

	headers := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		headers = append(headers, strings.TrimSpace(fmt.Sprint(cell)))
	}

	rows := make([]map[string]string, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(raw) {
				row[header] = strings.TrimSpace(fmt.Sprint(raw[i]))
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	c.logger.Debug("loaded sheet tab",
		zap.String("tab", tab),
		zap.Int("rows", len(rows)),
	)

	return &Tab{Headers: headers, Rows: rows}, nil
}

// AppendRow writes the row right after the last populated row of column A and
// returns the 1-based index it was written to. The scan-then-write sequence is
// not atomic across processes; callers serialize within the process.
func (c *Client) AppendRow(ctx context.Context, tab string, row []string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	colA, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, tab+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("reading tab %q column A: %w", tab, err)
	}

	next := len(colA.Values) + 1

	values := make([]interface{}, len(row))
	for i, cell := range row {
		values[i] = cell
	}

	target := fmt.Sprintf("%s!A%d", tab, next)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, target, &sheetsapi.ValueRange{
		Values: [][]interface{}{values},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("writing row to %q: %w", target, err)
	}

	c.logger.Info("appended row to sheet",
		zap.String("tab", tab),
		zap.Int("row", next),
	)

	return next, nil
}
