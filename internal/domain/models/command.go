package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hearthware/ovenlink/pkg/constants"
)

// CommandEnvelope is the fixed outer wrapper of every outbound instruction.
// Constructed per call and not retained; the correlation id is fresh for each
// send so concurrent commands never alias.
type CommandEnvelope struct {
	RequestID string                 `json:"requestId"`
	Timestamp int64                  `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

// NewCommandEnvelope wraps a command for one addressee with a fresh
// correlation id and a millisecond-resolution timestamp. The fields map is
// copied into the payload alongside the addressee and command keys.
func NewCommandEnvelope(addressee string, command constants.Command, fields map[string]interface{}) CommandEnvelope {
	payload := make(map[string]interface{}, len(fields)+2)
	for key, value := range fields {
		payload[key] = value
	}
	payload["addressee"] = addressee
	payload["command"] = string(command)

	return CommandEnvelope{
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
		Payload:   payload,
	}
}

// Encode serializes the envelope for the wire.
func (e CommandEnvelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}
