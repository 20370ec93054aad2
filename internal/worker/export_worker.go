// Package worker mirrors stored transactions to the configured sheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"noti/internal/amqp"
	"noti/internal/core"
	"noti/internal/metrics"
	"noti/internal/sheets"
	"noti/internal/storage"
)

// ExportWorker consumes transaction-recorded events and appends each
// transaction to the export sheet. A periodic sweep re-exports anything
// that never made it through the queue.
type ExportWorker struct {
	storage   *storage.Repository
	appender  sheets.TransactionAppender
	batchSize int
}

func NewExportWorker(storage *storage.Repository, appender sheets.TransactionAppender, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleRecordedMessage processes one recorded event from AMQP.
func (w *ExportWorker) HandleRecordedMessage(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	slog.InfoContext(ctx, "Processing recorded event",
		"transaction_id", msg.TransactionID,
		"message_id", msg.MessageID)

	t, err := w.storage.Get(ctx, msg.TransactionID)
	if errors.Is(err, storage.ErrNotFound) {
		// Row is gone; requeueing would loop forever.
		slog.WarnContext(ctx, "Transaction for recorded event no longer exists",
			"transaction_id", msg.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.export(ctx, t)
}

// ProcessPending exports transactions the queue missed, at most one
// batch per invocation.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Sweeping pending exports", "count", len(pending))
	for _, t := range pending {
		if err := w.export(ctx, t); err != nil {
			// Logged and counted inside export; keep sweeping.
			continue
		}
	}
	return nil
}

func (w *ExportWorker) export(ctx context.Context, t core.Transaction) error {
	ref, err := w.appender.Append(ctx, t)
	if err != nil {
		metrics.ExportOutcomes.WithLabelValues("error").Inc()
		if markErr := w.storage.MarkExportError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to record export error", "id", t.ID, "error", markErr)
		}
		slog.ErrorContext(ctx, "Failed to export transaction", "id", t.ID, "error", err)
		return fmt.Errorf("append transaction %d: %w", t.ID, err)
	}

	if err := w.storage.MarkExported(ctx, t.ID); err != nil {
		return fmt.Errorf("mark transaction %d exported: %w", t.ID, err)
	}

	metrics.ExportOutcomes.WithLabelValues("ok").Inc()
	slog.InfoContext(ctx, "Transaction exported", "id", t.ID, "row", ref)
	return nil
}
