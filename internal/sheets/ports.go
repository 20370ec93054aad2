package sheets

import (
	"context"

	"noti/internal/core"
)

// Ports for outbound export adapters.
type (
	// TransactionAppender mirrors a stored transaction to an external
	// sheet for audit/backup. Append must be idempotent per caller
	// discipline: the worker only acks a message after a successful
	// append.
	TransactionAppender interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}
)
