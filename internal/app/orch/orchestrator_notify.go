package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/protocol"
)

// broadcast encodes v once and offers it to every target. Each send is
// independent: a full or closed connection never stops the others.
func (o *Orchestrator) broadcast(room domain.RoomID, targets []core.ConnectionID, typ string, v any) core.PublishResult {
	res := core.PublishResult{}
	if len(targets) == 0 {
		return res
	}
	frame, err := protocol.Encode(typ, v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("room", string(room)).Msg("encode broadcast")
		return res
	}
	for _, sid := range targets {
		if o.deliver(room, sid, frame) {
			res.SendTo++
		} else {
			res.Dropped = append(res.Dropped, sid)
		}
	}
	log.Debug().Str("module", "orch").Str("room", string(room)).Str("type", typ).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (o *Orchestrator) send(room domain.RoomID, to core.ConnectionID, typ string, v any) bool {
	frame, err := protocol.Encode(typ, v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("sid", string(to)).Msg("encode message")
		return false
	}
	return o.deliver(room, to, frame)
}

func (o *Orchestrator) deliver(room domain.RoomID, to core.ConnectionID, frame core.Frame) bool {
	conn, ok := o.Registry.Conn(to)
	if !ok || conn == nil {
		return false
	}
	err := conn.TrySend(frame)
	if err == nil {
		return true
	}
	o.onBackPressure(room, to, conn, err)
	return false
}

func (o *Orchestrator) onBackPressure(room domain.RoomID, slow core.ConnectionID, conn core.SignalConnection, err error) {
	action := app.DropFrame
	if o.Policy != nil {
		action = o.Policy.OnBackPressure(room, slow, err)
	}
	log.Warn().Err(err).Str("module", "orch").Str("sid", string(slow)).Str("action", action.String()).Msg("send failed")

	switch action {
	case app.KickMember:
		// The transport's read loop ends and submits Disconnect.
		conn.Close()
	case app.DropFrame, app.NoAction:
	}
}
