// Package services orchestrates transaction operations across the
// SQLite store and the AMQP event stream.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"noti/internal/amqp"
	"noti/internal/core"
	"noti/internal/storage"
)

// TransactionService saves transactions and announces them to the
// export pipeline. The store write is authoritative; publishing is
// best-effort and never fails an ingest (the worker's periodic sweep
// picks up anything the queue missed).
type TransactionService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewTransactionService(storage *storage.Repository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Record validates and persists a transaction, then publishes a
// recorded event. Returns the stored record with id and created_at.
func (s *TransactionService) Record(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	stored, err := s.storage.Insert(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not configured, skipping recorded event", "id", stored.ID)
		return stored, nil
	}
	if err := s.amqpClient.PublishTransactionRecorded(ctx, stored.ID); err != nil {
		// The transaction is saved; the sweep will export it later.
		slog.ErrorContext(ctx, "Failed to publish recorded event", "id", stored.ID, "error", err)
	}

	return stored, nil
}

// Close closes the storage and AMQP connections.
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
