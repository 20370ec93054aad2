package core

import (
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Amount: 50000, Source: SourceMomo, CreatedAt: time.Now()}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Amount: 0, Source: SourceMomo}, ErrInvalidAmount},
		{Transaction{Amount: -1, Source: SourceMBBank}, ErrInvalidAmount},
		{Transaction{Amount: 100, Source: ""}, ErrMissingSource},
		{Transaction{Amount: 100, Source: "cash"}, ErrUnknownSource},
	}
	for i, tc := range cases {
		if err := tc.tx.Validate(); err != tc.want {
			t.Errorf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}

func TestSourceKnown(t *testing.T) {
	if !SourceMomo.Known() || !SourceMBBank.Known() {
		t.Error("known tags reported unknown")
	}
	if Source("paypal").Known() {
		t.Error("unknown tag reported known")
	}
}
