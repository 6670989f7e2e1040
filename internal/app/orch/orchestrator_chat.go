package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/protocol"
)

// BroadcastMessage stamps text with the receipt time and delivers it to
// every member of room except the sender. Nothing is stored.
// The room id is normalized the same way OnJoin does.
func (o *Orchestrator) BroadcastMessage(room domain.RoomID, from core.ConnectionID, username, text string) {
	room, ok := domain.NewRoomID(string(room))
	if !ok {
		log.Warn().Str("module", "orch").Str("sid", string(from)).Msg("chat without room id")
		return
	}
	stamp := o.now().UTC().Format(protocol.TimestampLayout)

	body := protocol.ChatBody{
		Message:   text,
		Username:  username,
		Timestamp: stamp,
	}
	res := o.broadcast(room, o.Rooms.MembersExcluding(room, from), protocol.TypeChatMessage, body)
	log.Debug().Str("module", "orch").Str("sid", string(from)).Str("room", string(room)).Int("sent_to", res.SendTo).Msg("chat message")
}
