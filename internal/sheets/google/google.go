package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"transferdash/internal/core"
	ports "transferdash/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultRange is the sheet Google Forms writes responses to.
const DefaultRange = "Form Responses 1"

// Options configures a Client. Exactly one credential source is used, in
// order: CredentialsJSON, then CredentialsFile.
type Options struct {
	SpreadsheetID   string
	Range           string
	CredentialsJSON string
	CredentialsFile string
	Location        *time.Location
}

// Client reads the transfer log from a spreadsheet. The underlying service
// is built once and reused across fetches.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	rng           string
	loc           *time.Location
}

var _ ports.TransferReader = (*Client)(nil)

// New creates a read-only Sheets client using service-account credentials.
func New(ctx context.Context, opts Options) (*Client, error) {
	opts.SpreadsheetID = strings.TrimSpace(opts.SpreadsheetID)
	if opts.SpreadsheetID == "" {
		return nil, fmt.Errorf("missing GOOGLE_SPREADSHEET_ID: %w", ports.ErrNotConfigured)
	}
	creds, err := loadCredentials(ctx, opts)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(creds),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, opts), nil
}

// NewWithService wraps an existing service. Tests use it with a service
// pointed at a local endpoint.
func NewWithService(svc *gsheet.Service, opts Options) *Client {
	rng := strings.TrimSpace(opts.Range)
	if rng == "" {
		rng = DefaultRange
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(opts.SpreadsheetID),
		rng:           rng,
		loc:           loc,
	}
}

func loadCredentials(ctx context.Context, opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)

	slog.DebugContext(ctx, "Checking Service Account credentials",
		"has_json", inline != "",
		"file_path", file)

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.DebugContext(ctx, "Read credentials file", "size", len(b))
		return b, nil
	default:
		return nil, fmt.Errorf("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS): %w", ports.ErrNotConfigured)
	}
}

// ReadTransfers fetches the configured range with formatted values and
// normalizes it into records.
func (c *Client) ReadTransfers(ctx context.Context) ([]core.TransferRecord, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.rng, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		rows = append(rows, ports.ToStrings(row))
	}
	return ports.ParseTable(rows, c.loc), nil
}

// Range returns the A1 range the client reads.
func (c *Client) Range() string { return c.rng }
