package amqp

import "testing"

func TestTransactionRecordedMessageRoundTrip(t *testing.T) {
	msg := NewTransactionRecordedMessage(42)
	if msg.MessageID == "" {
		t.Fatal("expected a message id")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}

	got, err := TransactionRecordedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if got.TransactionID != 42 || got.MessageID != msg.MessageID {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestTransactionRecordedMessageFromJSONInvalid(t *testing.T) {
	if _, err := TransactionRecordedMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
