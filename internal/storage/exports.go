package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"noti/internal/core"
)

// Export bookkeeping lives in its own table so transaction rows stay
// immutable. A transaction is pending until transaction_exports carries
// an exported_at for it.

// ListPendingExport returns up to limit transactions that have not been
// mirrored to the sheet yet, oldest first.
func (r *Repository) ListPendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.amount, t.source, t.raw_text, t.created_at
		 FROM transactions t
		 LEFT JOIN transaction_exports e ON e.transaction_id = t.id
		 WHERE e.exported_at IS NULL
		 ORDER BY t.id ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending transactions: %w", err)
	}
	return out, nil
}

// MarkExported records a successful export for the transaction.
func (r *Repository) MarkExported(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transaction_exports (transaction_id, exported_at, attempts)
		 VALUES (?, ?, 1)
		 ON CONFLICT (transaction_id)
		 DO UPDATE SET exported_at = excluded.exported_at, attempts = attempts + 1`,
		id, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as exported", "id", id)
	return nil
}

// MarkExportError bumps the attempt counter without marking success.
func (r *Repository) MarkExportError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transaction_exports (transaction_id, attempts)
		 VALUES (?, 1)
		 ON CONFLICT (transaction_id)
		 DO UPDATE SET attempts = attempts + 1`,
		id)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction export attempt failed", "id", id)
	return nil
}
