package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"wellness/internal/core"
	ports "wellness/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client appends exported rows to one spreadsheet, one tab per record kind.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	prefix        string

	mu    sync.Mutex
	known map[string]bool
}

var _ ports.RowAppender = (*Client)(nil)

// New builds a client. Pass CredentialsFromEnv() in production; tests pass
// an endpoint and no authentication.
func New(ctx context.Context, spreadsheetID, tabPrefix string, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	opts = append([]goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}, opts...)
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		prefix:        tabPrefix,
		known:         make(map[string]bool),
	}, nil
}

// CredentialsFromEnv loads service account credentials from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func CredentialsFromEnv() (goption.ClientOption, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return goption.WithCredentialsJSON([]byte(inline)), nil
	}

	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return goption.WithCredentialsJSON(data), nil
}

// AppendRows implements sheets.RowAppender. A missing tab is created and
// gets a header row before the data.
func (c *Client) AppendRows(ctx context.Context, kind core.RecordKind, rows []ports.Row) error {
	if len(rows) == 0 {
		return nil
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	tab := ports.TabName(c.prefix, kind)
	created, err := c.ensureTab(ctx, tab)
	if err != nil {
		return err
	}

	values := make([][]any, 0, len(rows)+1)
	if created {
		values = append(values, ports.Header(kind))
	}
	for _, r := range rows {
		values = append(values, r.Values)
	}

	rng := quoteTab(tab) + "!A1"
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		// RAW: user text is stored as typed, never evaluated as a formula.
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %d rows to %s: %w", len(rows), tab, err)
	}

	slog.InfoContext(ctx, "Rows appended to sheet",
		"tab", tab,
		"rows", len(rows),
		"first_id", rows[0].ID,
		"last_id", rows[len(rows)-1].ID)
	return nil
}

// ensureTab reports whether it had to create the tab.
func (c *Client) ensureTab(ctx context.Context, tab string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.known[tab] {
		return false, nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			c.known[sh.Properties.Title] = true
		}
	}
	if c.known[tab] {
		return false, nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tab}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("create tab %s: %w", tab, err)
	}
	c.known[tab] = true

	slog.InfoContext(ctx, "Created sheet tab", "tab", tab)
	return true, nil
}

// quoteTab wraps a tab name for A1 notation.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
