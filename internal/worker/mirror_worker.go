// Package worker keeps the spreadsheet mirror in step with the shared
// backend.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"outreach/internal/amqp"
	"outreach/internal/core"
	"outreach/internal/log"
	"outreach/internal/sheets"
	"outreach/internal/store"
)

// Source is the read side of the shared backend.
type Source interface {
	ListPerformances(ctx context.Context) ([]core.PerformanceRecord, error)
	ListBudgetItems(ctx context.Context) ([]core.BudgetItem, error)
	ListExpenditures(ctx context.Context) ([]core.Expenditure, error)
}

// MirrorWorker rewrites a spreadsheet tab whenever its collection
// changes, and rewrites every tab on a timer to recover from lost
// messages.
type MirrorWorker struct {
	src      Source
	mirror   sheets.Mirror
	interval time.Duration
	logger   *log.Logger

	// mu serializes writes so two mirrors of one tab never interleave.
	mu sync.Mutex
}

func NewMirrorWorker(src Source, mirror sheets.Mirror, interval time.Duration, logger *log.Logger) *MirrorWorker {
	return &MirrorWorker{
		src:      src,
		mirror:   mirror,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChange mirrors the tab affected by msg. Organization changes do
// not touch the spreadsheet. A returned error requeues the message.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	w.logger.InfoContext(ctx, "Processing change message",
		log.FieldCollection, msg.Collection,
		log.FieldOperation, msg.Op,
		log.FieldRecordID, msg.ID,
		log.FieldOrigin, msg.Origin)

	switch msg.Collection {
	case store.CollectionPerformances:
		return w.mirrorPerformances(ctx)
	case store.CollectionExpenditures, store.CollectionBudgetItems:
		// Item names appear on expenditure rows.
		return w.mirrorExpenditures(ctx)
	default:
		return nil
	}
}

// MirrorAll rewrites every tab. Both tabs are attempted even when the
// first fails.
func (w *MirrorWorker) MirrorAll(ctx context.Context) error {
	return errors.Join(w.mirrorPerformances(ctx), w.mirrorExpenditures(ctx))
}

// Run mirrors everything once, then again every interval until ctx is
// done. Failures are logged and retried on the next tick.
func (w *MirrorWorker) Run(ctx context.Context) error {
	if err := w.MirrorAll(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup mirror failed", log.FieldError, err)
	}
	if w.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Mirror loop stopped")
			return nil
		case <-ticker.C:
			if err := w.MirrorAll(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic mirror failed", log.FieldError, err)
			}
		}
	}
}

func (w *MirrorWorker) mirrorPerformances(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	perfs, err := w.src.ListPerformances(ctx)
	if err != nil {
		return fmt.Errorf("load performances: %w", err)
	}
	if err := w.mirror.MirrorPerformances(ctx, perfs); err != nil {
		return fmt.Errorf("mirror performances: %w", err)
	}
	return nil
}

func (w *MirrorWorker) mirrorExpenditures(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	items, err := w.src.ListBudgetItems(ctx)
	if err != nil {
		return fmt.Errorf("load budget items: %w", err)
	}
	exps, err := w.src.ListExpenditures(ctx)
	if err != nil {
		return fmt.Errorf("load expenditures: %w", err)
	}
	if err := w.mirror.MirrorExpenditures(ctx, exps, items); err != nil {
		return fmt.Errorf("mirror expenditures: %w", err)
	}
	return nil
}
