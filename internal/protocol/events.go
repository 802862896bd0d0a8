package protocol

import "encoding/json"

const (
	EventProgress = "progress"
	EventResult   = "result"
)

// Envelope frames every message pushed to websocket clients.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type Progress struct {
	RequestID string `json:"requestId,omitempty"`
	Building  string `json:"building"`
	Stage     string `json:"stage"`
	Done      int    `json:"done"`
	Total     int    `json:"total"`
}

// Marshal frames payload under type t.
func Marshal(t string, payload any) ([]byte, error) {
	return json.Marshal(Envelope{Type: t, Payload: payload})
}
