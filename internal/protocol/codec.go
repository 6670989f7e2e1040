package protocol

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

var (
	ErrBadPayload   = errors.New("bad payload")
	ErrUnknownEvent = errors.New("unknown event")
)

var null = json.RawMessage("null")

// PeekType returns the envelope type without decoding the payload.
func PeekType(data []byte) (string, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return env.Type, nil
}

// Decode turns one inbound frame from sid into a core event.
// connect and disconnect are transport events and never arrive as frames.
func Decode(sid core.ConnectionID, data []byte) (core.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(env.Data) == 0 {
		env.Data = null
	}

	kind := core.EventKind(env.Type)
	switch kind {
	case core.EventJoinRoom:
		var p JoinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("%w: join-room: %v", ErrBadPayload, err)
		}
		return core.JoinRoom{
			ID:       sid,
			RoomID:   domain.RoomID(p.RoomID),
			UserID:   p.UserID,
			Username: p.Username,
		}, nil

	case core.EventOffer, core.EventAnswer, core.EventICECandidate:
		var p SignalPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, kind, err)
		}
		return core.Signal{
			ID:      sid,
			Type:    kind,
			Target:  core.ConnectionID(p.Target),
			Payload: p.payloadFor(kind),
		}, nil

	case core.EventChatMessage:
		var p ChatPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("%w: chat-message: %v", ErrBadPayload, err)
		}
		return core.ChatMessage{
			ID:       sid,
			RoomID:   domain.RoomID(p.RoomID),
			Username: p.Username,
			Message:  p.Message,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
}

func (p SignalPayload) payloadFor(kind core.EventKind) json.RawMessage {
	switch kind {
	case core.EventOffer:
		return p.Offer
	case core.EventAnswer:
		return p.Answer
	default:
		return p.Candidate
	}
}

// SignalField is the payload key used for kind on the outbound side.
func SignalField(kind core.EventKind) (string, bool) {
	switch kind {
	case core.EventOffer:
		return "offer", true
	case core.EventAnswer:
		return "answer", true
	case core.EventICECandidate:
		return "candidate", true
	}
	return "", false
}

// SignalFrame builds {"type":kind,"data":{<field>:payload,"from":from}}.
// The payload bytes are appended to the frame unchanged.
func SignalFrame(kind core.EventKind, payload json.RawMessage, from core.ConnectionID) (core.Frame, error) {
	field, ok := SignalField(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a signaling event", ErrUnknownEvent, kind)
	}
	if len(payload) == 0 {
		payload = null
	}
	sender, err := json.MarshalNoEscape(string(from))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}

	out := make([]byte, 0, len(payload)+len(sender)+len(kind)+48)
	out = append(out, `{"type":"`...)
	out = append(out, kind...)
	out = append(out, `","data":{"`...)
	out = append(out, field...)
	out = append(out, `":`...)
	out = append(out, payload...)
	out = append(out, `,"from":`...)
	out = append(out, sender...)
	out = append(out, `}}`...)
	return out, nil
}

// Encode wraps v in an envelope of the given type.
func Encode(typ string, v any) (core.Frame, error) {
	data, err := json.MarshalNoEscape(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", typ, err)
	}
	out, err := json.MarshalNoEscape(Envelope{Type: typ, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", typ, err)
	}
	return out, nil
}
