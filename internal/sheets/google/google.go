package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"outreach/internal/core"
	"outreach/internal/log"
	"outreach/internal/sheets"
)

// Config names the spreadsheet, its tabs and the service account.
type Config struct {
	SpreadsheetID    string
	PerformanceSheet string
	ExpenditureSheet string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc              *gsheet.Service
	spreadsheetID    string
	performanceSheet string
	expenditureSheet string
	logger           *log.Logger
	maxRetries       uint64
}

var _ sheets.Mirror = (*Client)(nil)

// New creates a Sheets client authenticated as a service account. Extra
// client options are appended after the credentials.
func New(ctx context.Context, cfg Config, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.PerformanceSheet == "" {
		cfg.PerformanceSheet = "실적"
	}
	if cfg.ExpenditureSheet == "" {
		cfg.ExpenditureSheet = "지출"
	}

	if len(opts) == 0 {
		creds, err := credentialsJSON(cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger = logger.WithComponent(log.ComponentSheets)
	logger.InfoContext(ctx, "Google Sheets client ready",
		"spreadsheet_id", cfg.SpreadsheetID,
		"performance_sheet", cfg.PerformanceSheet,
		"expenditure_sheet", cfg.ExpenditureSheet)

	return &Client{
		svc:              svc,
		spreadsheetID:    cfg.SpreadsheetID,
		performanceSheet: cfg.PerformanceSheet,
		expenditureSheet: cfg.ExpenditureSheet,
		logger:           logger,
		maxRetries:       3,
	}, nil
}

// credentialsJSON resolves the service account key from the inline JSON,
// the key file, or GOOGLE_APPLICATION_CREDENTIALS.
func credentialsJSON(cfg Config) ([]byte, error) {
	if v := strings.TrimSpace(cfg.CredentialsJSON); v != "" {
		return []byte(v), nil
	}
	path := strings.TrimSpace(cfg.CredentialsFile)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// MirrorPerformances replaces the performance tab with records.
func (c *Client) MirrorPerformances(ctx context.Context, records []core.PerformanceRecord) error {
	return c.replaceSheet(ctx, c.performanceSheet, sheets.PerformanceRows(records))
}

// MirrorExpenditures replaces the expenditure tab with exps.
func (c *Client) MirrorExpenditures(ctx context.Context, exps []core.Expenditure, items []core.BudgetItem) error {
	return c.replaceSheet(ctx, c.expenditureSheet, sheets.ExpenditureRows(exps, items))
}

// a1 quotes sheet for A1 notation.
func a1(sheet, rng string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), rng)
}

// replaceSheet clears every value on sheet and writes rows from A1.
// Server errors and rate limiting are retried with backoff.
func (c *Client) replaceSheet(ctx context.Context, sheet string, rows [][]any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	start := time.Now()

	op := func() error {
		_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, a1(sheet, "A:Z"), &gsheet.ClearValuesRequest{}).
			Context(ctx).Do()
		if err != nil {
			return classify(fmt.Errorf("clear %s: %w", sheet, err))
		}
		vr := &gsheet.ValueRange{Values: rows}
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1(sheet, "A1"), vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return classify(fmt.Errorf("update %s: %w", sheet, err))
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "Sheets write failed, retrying",
			log.FieldError, err, log.FieldSheetsRange, sheet, "retry_in", wait)
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "Sheet mirrored",
		log.FieldOperation, log.OpMirror,
		log.FieldSheetsRange, sheet,
		log.FieldCount, len(rows)-1,
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// classify marks client errors as permanent so they are not retried.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500 {
			return err
		}
		return backoff.Permanent(err)
	}
	return err
}
