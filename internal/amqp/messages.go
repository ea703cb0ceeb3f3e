package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// DatasetUpdatedMessage announces that the stored records were replaced.
// Consumers drop whatever they derived from the previous dataset.
type DatasetUpdatedMessage struct {
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	Years     []int     `json:"years,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDatasetUpdatedMessage(source string, rows int, years []int) *DatasetUpdatedMessage {
	return &DatasetUpdatedMessage{
		Source:    source,
		Rows:      rows,
		Years:     append([]int(nil), years...),
		Timestamp: time.Now().UTC(),
	}
}

func (m *DatasetUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetUpdatedMessageFromJSON decodes a message body. A body without a
// source is rejected.
func DatasetUpdatedMessageFromJSON(data []byte) (*DatasetUpdatedMessage, error) {
	var msg DatasetUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Source == "" {
		return nil, errors.New("dataset updated message without source")
	}
	return &msg, nil
}
