package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"outreach/internal/log"
	"outreach/internal/store"
	"outreach/internal/transfer"
)

// ImportResult counts the rows of one import. Failed includes rows the
// parser rejected and rows the store refused.
type ImportResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Importer adds parsed rows one by one so that a bad row never aborts
// the rest of the file.
type Importer struct {
	live    *store.Live
	records *Records
	logger  *log.StructuredLogger
	now     func() time.Time
}

func NewImporter(live *store.Live, records *Records, logger *log.Logger) *Importer {
	return &Importer{
		live:    live,
		records: records,
		logger:  log.NewStructuredLogger(logger.WithComponent(log.ComponentImport)),
		now:     time.Now,
	}
}

// ImportOrganizations reads a CSV, or a workbook when xlsx is set.
func (im *Importer) ImportOrganizations(ctx context.Context, r io.Reader, xlsx bool) (ImportResult, error) {
	parse := transfer.ParseOrganizations
	if xlsx {
		parse = transfer.ParseOrganizationsXLSX
	}
	orgs, rejected, err := parse(r)
	if err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Failed: rejected}
	for _, o := range orgs {
		if _, err := im.live.AddOrganization(ctx, o); err != nil {
			res.Failed++
			continue
		}
		res.Succeeded++
	}
	im.logger.LogImport(ctx, store.CollectionOrganizations, res.Succeeded, res.Failed)
	return res, nil
}

func (im *Importer) ImportPerformances(ctx context.Context, r io.Reader) (ImportResult, error) {
	recs, rejected, err := transfer.ParsePerformances(r, im.now())
	if err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Failed: rejected}
	for _, p := range recs {
		if _, err := im.records.CreatePerformance(ctx, p); err != nil {
			res.Failed++
			continue
		}
		res.Succeeded++
	}
	im.logger.LogImport(ctx, store.CollectionPerformances, res.Succeeded, res.Failed)
	return res, nil
}

// Message is the toast text for the result.
func (r ImportResult) Message() string {
	if r.Failed == 0 {
		return fmt.Sprintf("%d건을 가져왔습니다", r.Succeeded)
	}
	return fmt.Sprintf("%d건 성공, %d건 실패", r.Succeeded, r.Failed)
}
