package transport

import "encoding/json"

// AckEvent is the reserved event name carrying the response to a correlated
// request. The ack field holds the correlation id of the original request.
const AckEvent = "ack"

// Envelope is the wire frame exchanged over the websocket in both directions.
// A request that expects a response carries a single-use correlation id in
// Ack; the matching response reuses the id with Event set to AckEvent.
type Envelope struct {
	Event string          `json:"event"`
	Ack   string          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// DecodeResult interprets the data of an ack envelope. By contract a bare
// JSON string is an error message; anything else is the success payload.
func DecodeResult(data json.RawMessage) (json.RawMessage, error) {
	var msg string
	if len(data) > 0 && json.Unmarshal(data, &msg) == nil {
		return nil, &CallError{Message: msg}
	}
	return data, nil
}
