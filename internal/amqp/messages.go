package amqp

import (
	"encoding/json"
	"time"
)

// DatasetReloadMessage announces that the import step rewrote the
// records table. Consumers drop their cached filter catalog for the
// named store and reload it.
type DatasetReloadMessage struct {
	StorePath string    `json:"store_path"`
	Records   int       `json:"records"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDatasetReloadMessage creates a reload message for a finished import.
func NewDatasetReloadMessage(storePath string, records int) *DatasetReloadMessage {
	return &DatasetReloadMessage{
		StorePath: storePath,
		Records:   records,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *DatasetReloadMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetReloadMessageFromJSON creates a message from JSON bytes.
func DatasetReloadMessageFromJSON(data []byte) (*DatasetReloadMessage, error) {
	var msg DatasetReloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
