// Package protocol is the signaling wire format: every frame is a JSON
// envelope {"type": <event>, "data": <payload>} carried in a WebSocket text
// message. Inbound frames decode into core events; outbound payloads encode
// into core frames.
package protocol

import (
	"github.com/goccy/go-json"

	"github.com/dkeye/Meet/internal/core"
)

// Outbound and transport-control message types. Inbound event names are the
// core.EventKind values.
const (
	TypeRoomParticipants = "room-participants"
	TypeUserJoined       = "user-joined"
	TypeUserLeft         = "user-left"
	TypeChatMessage      = string(core.EventChatMessage)
	TypePing             = "ping"
	TypePong             = "pong"
	TypeError            = "error"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// JoinPayload accepts the positional form socket.io clients emit,
// ["room", "user", "name"], as well as an object.
type JoinPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

func (p *JoinPayload) UnmarshalJSON(b []byte) error {
	var args []json.RawMessage
	if err := json.Unmarshal(b, &args); err == nil {
		fields := []*string{&p.RoomID, &p.UserID, &p.Username}
		for i := 0; i < len(args) && i < len(fields); i++ {
			*fields[i] = scalarString(args[i])
		}
		return nil
	}
	type plain JoinPayload
	return json.Unmarshal(b, (*plain)(p))
}

// scalarString renders a JSON string or number as text. Clients send
// Date.now().toString() as the user id, but a bare number is tolerated.
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// SignalPayload is the inbound shape of offer, answer and ice-candidate.
// Only the field matching the event type is read.
type SignalPayload struct {
	Target    string          `json:"target"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type ChatPayload struct {
	RoomID   string `json:"roomId"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

// ChatBody is the outbound chat-message payload.
type ChatBody struct {
	Message   string `json:"message"`
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

type ErrorBody struct {
	Error string `json:"error"`
}
