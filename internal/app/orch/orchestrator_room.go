package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/protocol"
)

func (o *Orchestrator) OnConnect(sid core.ConnectionID, conn core.SignalConnection, token string) {
	o.Registry.Register(sid, conn, token)
}

// OnJoin puts sid into room. A connection that is already in a room leaves
// it first, so it is never a member of two rooms.
//
// The joiner receives the members present before it joined; each of those
// members receives one user-joined for the joiner. Both come from the same
// snapshot, so nobody is listed twice or missed.
func (o *Orchestrator) OnJoin(sid core.ConnectionID, room domain.RoomID, userID, username string) {
	room, ok := domain.NewRoomID(string(room))
	if !ok {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("join without room id")
		return
	}
	if _, ok := o.Registry.Lookup(sid); !ok {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Msg("join from unknown connection")
		return
	}

	if prev, ok := o.Registry.RoomOf(sid); ok {
		o.leave(sid, prev)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(prev)).Msg("kicked from room")
	}

	fallback := o.Registry.ClientToken(sid)
	if fallback == "" {
		fallback = string(sid)
	}
	user := domain.NewUser(userID, username, fallback)

	others := o.Rooms.Members(room)
	snapshot := o.Registry.Describe(others)

	me, ok := o.Registry.SetMembership(sid, room, user)
	if !ok {
		return
	}
	o.Rooms.Join(room, sid)

	res := o.broadcast(room, others, protocol.TypeUserJoined, me)
	o.send(room, sid, protocol.TypeRoomParticipants, snapshot)

	log.Info().
		Str("module", "orch").
		Str("sid", string(sid)).
		Str("room", string(room)).
		Str("username", user.Username).
		Int("notified", res.SendTo).
		Msg("joined room")
}

// OnDisconnect unwinds everything sid owned. It is safe for ids that never
// joined and for ids already removed.
func (o *Orchestrator) OnDisconnect(sid core.ConnectionID) {
	me, room, ok := o.Registry.Remove(sid)
	if !ok {
		return
	}
	if room == "" {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("disconnected before joining")
		return
	}
	o.notifyLeft(room, me)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Str("username", me.Username).Msg("disconnected from room")
}

// leave takes sid out of room but keeps its registry entry.
func (o *Orchestrator) leave(sid core.ConnectionID, room domain.RoomID) {
	me, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	o.Registry.ClearRoom(sid)
	o.notifyLeft(room, me)
}

func (o *Orchestrator) notifyLeft(room domain.RoomID, me core.Participant) {
	if o.Rooms.Leave(room, me.SocketID) {
		return
	}
	o.broadcast(room, o.Rooms.Members(room), protocol.TypeUserLeft, me)
}
