package orch

import (
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/protocol"
)

// Relay forwards an offer, answer or ICE candidate to exactly one target.
// The payload is never inspected. A target that is gone is dropped
// silently; the peers renegotiate on their own timeout.
func (o *Orchestrator) Relay(kind core.EventKind, target core.ConnectionID, payload json.RawMessage, from core.ConnectionID) {
	if !kind.IsSignal() {
		log.Warn().Str("module", "orch").Str("sid", string(from)).Str("kind", string(kind)).Msg("not a signaling event")
		return
	}
	if _, ok := o.Registry.Conn(target); !ok {
		log.Debug().Str("module", "orch").Str("sid", string(from)).Str("target", string(target)).Str("kind", string(kind)).Msg("relay target gone, dropped")
		return
	}
	frame, err := protocol.SignalFrame(kind, payload, from)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("sid", string(from)).Msg("encode signal")
		return
	}
	room, _ := o.Registry.RoomOf(target)
	o.deliver(room, target, frame)
}
