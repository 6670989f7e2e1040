package core

import (
	"github.com/goccy/go-json"

	"github.com/dkeye/Meet/internal/domain"
)

// EventKind names an inbound event. The names are the wire event names.
type EventKind string

const (
	EventConnect      EventKind = "connect"
	EventJoinRoom     EventKind = "join-room"
	EventOffer        EventKind = "offer"
	EventAnswer       EventKind = "answer"
	EventICECandidate EventKind = "ice-candidate"
	EventChatMessage  EventKind = "chat-message"
	EventDisconnect   EventKind = "disconnect"
)

// IsSignal reports whether k is a point-to-point negotiation event.
func (k EventKind) IsSignal() bool {
	switch k {
	case EventOffer, EventAnswer, EventICECandidate:
		return true
	}
	return false
}

// Event is one inbound unit of work for the orchestrator.
// The set of variants is closed: only this package can add one.
type Event interface {
	Kind() EventKind
	Source() ConnectionID
	isEvent()
}

// Connect registers a freshly opened channel.
type Connect struct {
	ID   ConnectionID
	Conn SignalConnection
	// ClientToken is the per-browser cookie token, used as the user id
	// when a join does not carry one.
	ClientToken string
}

type JoinRoom struct {
	ID       ConnectionID
	RoomID   domain.RoomID
	UserID   string
	Username string
}

// Signal carries an offer, answer or ICE candidate. Payload is opaque.
type Signal struct {
	ID      ConnectionID
	Type    EventKind
	Target  ConnectionID
	Payload json.RawMessage
}

type ChatMessage struct {
	ID       ConnectionID
	RoomID   domain.RoomID
	Username string
	Message  string
}

type Disconnect struct {
	ID ConnectionID
}

func (Connect) Kind() EventKind     { return EventConnect }
func (JoinRoom) Kind() EventKind    { return EventJoinRoom }
func (s Signal) Kind() EventKind    { return s.Type }
func (ChatMessage) Kind() EventKind { return EventChatMessage }
func (Disconnect) Kind() EventKind  { return EventDisconnect }

func (e Connect) Source() ConnectionID     { return e.ID }
func (e JoinRoom) Source() ConnectionID    { return e.ID }
func (e Signal) Source() ConnectionID      { return e.ID }
func (e ChatMessage) Source() ConnectionID { return e.ID }
func (e Disconnect) Source() ConnectionID  { return e.ID }

func (Connect) isEvent()     {}
func (JoinRoom) isEvent()    {}
func (Signal) isEvent()      {}
func (ChatMessage) isEvent() {}
func (Disconnect) isEvent()  {}
