// Package storage persists transactions in SQLite.
//
// The store is the sole owner of record identity: it assigns the id and
// the created_at timestamp on insert, and rows are never updated or
// deleted afterwards. Timestamps are stored as RFC 3339 text in UTC so
// window queries can compare lexicographically.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"noti/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a transaction id does not exist.
var ErrNotFound = errors.New("transaction not found")

const timeLayout = time.RFC3339Nano

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert stores a new transaction and returns it with the assigned id
// and created_at. A zero CreatedAt takes the insert time.
func (r *Repository) Insert(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	} else {
		t.CreatedAt = t.CreatedAt.UTC()
	}

	var rawText sql.NullString
	if t.RawText != "" {
		rawText = sql.NullString{String: t.RawText, Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (amount, source, raw_text, created_at) VALUES (?, ?, ?, ?)`,
		t.Amount, string(t.Source), rawText, t.CreatedAt.Format(timeLayout))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"amount", t.Amount,
		"source", t.Source)

	return t, nil
}

// Get returns a single transaction by id.
func (r *Repository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, amount, source, raw_text, created_at FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// ListSince returns transactions with created_at >= from, newest first.
func (r *Repository) ListSince(ctx context.Context, from time.Time) ([]core.Transaction, error) {
	return r.ListBetween(ctx, from, time.Time{})
}

// ListBetween returns transactions within the optional [from, to]
// bounds, newest first. Zero bounds are open ends.
func (r *Repository) ListBetween(ctx context.Context, from, to time.Time) ([]core.Transaction, error) {
	query := `SELECT id, amount, source, raw_text, created_at FROM transactions`
	var args []any
	var where []string
	if !from.IsZero() {
		where = append(where, `created_at >= ?`)
		args = append(args, from.UTC().Format(timeLayout))
	}
	if !to.IsZero() {
		where = append(where, `created_at <= ?`)
		args = append(args, to.UTC().Format(timeLayout))
	}
	for i, cond := range where {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func scanTransaction(scan func(...any) error) (core.Transaction, error) {
	var (
		t       core.Transaction
		source  string
		rawText sql.NullString
		created string
	)
	if err := scan(&t.ID, &t.Amount, &source, &rawText, &created); err != nil {
		return core.Transaction{}, err
	}
	t.Source = core.Source(source)
	t.RawText = rawText.String

	ts, err := time.Parse(timeLayout, created)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	t.CreatedAt = ts
	return t, nil
}
