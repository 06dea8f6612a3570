package observability

import "time"

// EventEnvelope frames a message on the websocket events exchange.
type EventEnvelope struct {
	EventType  string      `json:"event_type"`
	EventName  string      `json:"event_name"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// NewRoomEvent builds an envelope for a room lifecycle event.
func NewRoomEvent(name string, payload interface{}) EventEnvelope {
	return EventEnvelope{
		EventType:  "ws_events",
		EventName:  name,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// BuildHeaders carries request correlation into AMQP message headers.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
