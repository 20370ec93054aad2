package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"noti/internal/amqp"
	"noti/internal/core"
	"noti/internal/sheets/memory"
	"noti/internal/storage"
)

func newTestWorker(t *testing.T) (*ExportWorker, *storage.Repository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "noti.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	sheet := memory.New()
	return NewExportWorker(repo, sheet, 10), repo, sheet
}

func TestHandleRecordedMessage(t *testing.T) {
	w, repo, sheet := newTestWorker(t)
	ctx := context.Background()

	stored, err := repo.Insert(ctx, core.Transaction{Amount: 30000, Source: core.SourceMomo})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	msg := amqp.NewTransactionRecordedMessage(stored.ID)
	if err := w.HandleRecordedMessage(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rows := sheet.Rows()
	if len(rows) != 1 || rows[0].ID != stored.ID {
		t.Fatalf("sheet rows = %+v, want the stored transaction", rows)
	}

	// Exported transactions leave the pending set.
	pending, err := repo.ListPendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending = %d, want 0", len(pending))
	}
}

func TestHandleRecordedMessageMissingRow(t *testing.T) {
	w, _, sheet := newTestWorker(t)

	// A message for a row that does not exist is dropped, not requeued.
	msg := amqp.NewTransactionRecordedMessage(999)
	if err := w.HandleRecordedMessage(context.Background(), msg); err != nil {
		t.Fatalf("expected nil for missing row, got %v", err)
	}
	if len(sheet.Rows()) != 0 {
		t.Fatal("nothing should have been exported")
	}
}

func TestProcessPendingSweepsBacklog(t *testing.T) {
	w, repo, sheet := newTestWorker(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Insert(ctx, core.Transaction{Amount: int64(1000 * (i + 1)), Source: core.SourceMBBank}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if got := len(sheet.Rows()); got != 3 {
		t.Fatalf("exported %d rows, want 3", got)
	}

	// Second sweep finds nothing left.
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if got := len(sheet.Rows()); got != 3 {
		t.Fatalf("second sweep re-exported rows: %d", got)
	}
}

type failingAppender struct{ calls int }

func (f *failingAppender) Append(context.Context, core.Transaction) (string, error) {
	f.calls++
	return "", errors.New("sheet unavailable")
}

func TestProcessPendingKeepsGoingOnError(t *testing.T) {
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "noti.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := repo.Insert(ctx, core.Transaction{Amount: 100, Source: core.SourceMomo}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	appender := &failingAppender{}
	w := NewExportWorker(repo, appender, 10)
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("sweep should not fail outright: %v", err)
	}
	if appender.calls != 2 {
		t.Fatalf("appender called %d times, want 2", appender.calls)
	}

	// Failed rows stay pending for the next sweep.
	pending, err := repo.ListPendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
}
