package amqp

import (
	"encoding/json"
	"time"
)

// EntrySyncMessage asks the worker to mirror one locally stored entry to
// the spreadsheet. It carries only the local rowid; the worker fetches
// the current entry state from the database.
type EntrySyncMessage struct {
	RowID     int64     `json:"row_id"`
	Timestamp time.Time `json:"timestamp"`
}

// EntryDeleteMessage asks the worker to clear the matching spreadsheet
// row. The entry id is carried because the local row may already be
// soft-deleted when the message is handled.
type EntryDeleteMessage struct {
	RowID     int64     `json:"row_id"`
	Table     string    `json:"table"`
	EntryID   string    `json:"entry_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntrySyncMessage(rowID int64) *EntrySyncMessage {
	return &EntrySyncMessage{RowID: rowID, Timestamp: time.Now()}
}

func NewEntryDeleteMessage(rowID int64, table, entryID string) *EntryDeleteMessage {
	return &EntryDeleteMessage{RowID: rowID, Table: table, EntryID: entryID, Timestamp: time.Now()}
}

func (m *EntrySyncMessage) ToJSON() ([]byte, error) { return json.Marshal(m) }

func (m *EntryDeleteMessage) ToJSON() ([]byte, error) { return json.Marshal(m) }

func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func EntryDeleteMessageFromJSON(data []byte) (*EntryDeleteMessage, error) {
	var msg EntryDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
