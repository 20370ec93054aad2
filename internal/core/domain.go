package core

import (
	"errors"
	"time"
)

const (
	SourceMomo   Source = "momo"
	SourceMBBank Source = "mbbank"
)

type (
	// Source is the origin channel of a payment notification.
	Source string

	// Transaction is one recorded payment event. Records are created on
	// ingestion and immutable afterwards; CreatedAt is the sole temporal
	// key for every aggregation.
	Transaction struct {
		ID        int64     `json:"id"`
		Amount    int64     `json:"amount"` // VND, no decimal subunit
		Source    Source    `json:"source"`
		RawText   string    `json:"raw_text,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingSource = errors.New("missing source")
	ErrUnknownSource = errors.New("unknown source")
)

// Known reports whether s is one of the recognized source tags.
// Records with other tags are never produced by this system, but the
// aggregation simply leaves them out of the source breakdown.
func (s Source) Known() bool {
	return s == SourceMomo || s == SourceMBBank
}

func (t Transaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if t.Source == "" {
		return ErrMissingSource
	}
	if !t.Source.Known() {
		return ErrUnknownSource
	}
	return nil
}
