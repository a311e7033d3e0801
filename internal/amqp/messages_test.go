package amqp

import "testing"

func TestEntrySyncMessageRoundTrip(t *testing.T) {
	msg := NewEntrySyncMessage(42)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := EntrySyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RowID != 42 {
		t.Fatalf("row id = %d", got.RowID)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}
}

func TestEntryDeleteMessageRoundTrip(t *testing.T) {
	msg := NewEntryDeleteMessage(7, "Expenses", "abc-123")
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := EntryDeleteMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RowID != 7 || got.Table != "Expenses" || got.EntryID != "abc-123" {
		t.Fatalf("message = %+v", got)
	}
}

func TestMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := EntrySyncMessageFromJSON([]byte("{")); err == nil {
		t.Fatal("expected error")
	}
	if _, err := EntryDeleteMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}
