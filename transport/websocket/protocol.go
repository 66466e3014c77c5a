package websocket

import "encoding/json"

// Inbound event names (client to server).
const (
	EventJoinRoom    = "join-room"
	EventSendMessage = "send-message"
	EventLeaveRoom   = "leave-room"
	EventStart       = "start"
	EventEnd         = "end"
	EventSetText     = "set-text"
	EventTextUpdate  = "text-update"
	EventLoading     = "loading"
	EventDoneLoading = "done-loading"
)

// Outbound event names (server to client). Lifecycle signals and
// text-update are relayed under their inbound names.
const (
	EventReceiveMessage = "receive-message"
	EventAck            = "ack"
)

// Envelope frames every message in both directions:
//   - Incoming: {"event": "join-room", "data": "abcd", "ack": 1}
//   - Outgoing: {"event": "receive-message", "data": "hello"}
//
// A non-zero Ack on an inbound envelope asks the server to acknowledge with
// an "ack" envelope carrying the same id.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   uint64          `json:"ack,omitempty"`
}

// AckPayload is the structured acknowledgement result. Exactly one of
// Success or Error is set; Text carries the passage for set-text.
type AckPayload struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Text    string `json:"text,omitempty"`
}

// TextPayload is broadcast on text-update after a successful set-text.
type TextPayload struct {
	Text    string `json:"text"`
	Success string `json:"success"`
}

// marshalEnvelope encodes an outbound event frame. data may be nil for
// zero-payload signals, a json.RawMessage to relay verbatim, or any
// marshalable value.
func marshalEnvelope(event string, data any, ackID uint64) ([]byte, error) {
	env := Envelope{Event: event, Ack: ackID}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// emptyPayload reports whether an inbound data field carries no usable
// content: absent, JSON null, an empty string, zero, or false (the falsy
// values a javascript client would fail its own truthiness check on).
func emptyPayload(data json.RawMessage) bool {
	switch string(data) {
	case "", "null", `""`, "0", "false":
		return true
	}
	return false
}
