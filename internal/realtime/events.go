package realtime

import "encoding/json"

type SSEEvent string

const (
	// SSEEventStageCompleted is broadcast on channel {call_id}-{stage} when a
	// stage record is persisted, failed or not.
	SSEEventStageCompleted SSEEvent = "StageCompleted"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// StagePayload is the Data of a SSEEventStageCompleted message.
type StagePayload struct {
	CallID string `json:"call_id"`
	Stage  string `json:"stage"`
	Status string `json:"status"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// DecodeStagePayload reads Data whether it was broadcast in-process or
// arrived as decoded JSON from the bus.
func DecodeStagePayload(data any) (StagePayload, bool) {
	switch v := data.(type) {
	case StagePayload:
		return v, true
	case *StagePayload:
		if v == nil {
			return StagePayload{}, false
		}
		return *v, true
	case nil:
		return StagePayload{}, false
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return StagePayload{}, false
		}
		var p StagePayload
		if err := json.Unmarshal(raw, &p); err != nil || p.Stage == "" {
			return StagePayload{}, false
		}
		return p, true
	}
}
