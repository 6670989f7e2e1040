package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

type connEntry struct {
	Member domain.Member
	Conn   core.SignalConnection
	Token  string
}

// Registry is the connection registry: identity and current room of every
// live connection. It is not safe for concurrent use; the orchestrator
// loop owns it.
type Registry struct {
	conns map[core.ConnectionID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[core.ConnectionID]*connEntry),
	}
}

// Register creates an empty entry for sid, overwriting any previous one.
func (r *Registry) Register(sid core.ConnectionID, conn core.SignalConnection, token string) {
	r.conns[sid] = &connEntry{Conn: conn, Token: token}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Int("total", len(r.conns)).Msg("registered connection")
}

// SetMembership records which room sid is in and as whom, and returns the
// updated descriptor. Unknown ids are ignored.
func (r *Registry) SetMembership(sid core.ConnectionID, room domain.RoomID, user domain.User) (core.Participant, bool) {
	e, ok := r.conns[sid]
	if !ok {
		return core.Participant{}, false
	}
	e.Member = domain.Member{Room: room, User: user}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Str("username", user.Username).Msg("updated membership")
	return describe(sid, e), true
}

// ClearRoom drops the room association but keeps identity and transport.
func (r *Registry) ClearRoom(sid core.ConnectionID) {
	if e, ok := r.conns[sid]; ok {
		e.Member.Room = ""
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed room association")
	}
}

// Lookup returns a fresh participant descriptor for sid.
func (r *Registry) Lookup(sid core.ConnectionID) (core.Participant, bool) {
	e, ok := r.conns[sid]
	if !ok {
		return core.Participant{}, false
	}
	return describe(sid, e), true
}

func (r *Registry) RoomOf(sid core.ConnectionID) (domain.RoomID, bool) {
	e, ok := r.conns[sid]
	if !ok || !e.Member.InRoom() {
		return "", false
	}
	return e.Member.Room, true
}

func (r *Registry) Conn(sid core.ConnectionID) (core.SignalConnection, bool) {
	e, ok := r.conns[sid]
	if !ok {
		return nil, false
	}
	return e.Conn, true
}

func (r *Registry) ClientToken(sid core.ConnectionID) string {
	if e, ok := r.conns[sid]; ok {
		return e.Token
	}
	return ""
}

// Remove deletes sid and returns what it was, so the caller can unwind
// room membership.
func (r *Registry) Remove(sid core.ConnectionID) (core.Participant, domain.RoomID, bool) {
	e, ok := r.conns[sid]
	if !ok {
		return core.Participant{}, "", false
	}
	delete(r.conns, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Int("total", len(r.conns)).Msg("removed connection")
	return describe(sid, e), e.Member.Room, true
}

// Describe maps ids to participant descriptors, skipping unknown ids.
func (r *Registry) Describe(sids []core.ConnectionID) []core.Participant {
	out := make([]core.Participant, 0, len(sids))
	for _, sid := range sids {
		if p, ok := r.Lookup(sid); ok {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) Len() int { return len(r.conns) }

// Conns returns every registered transport, for shutdown.
func (r *Registry) Conns() []core.SignalConnection {
	out := make([]core.SignalConnection, 0, len(r.conns))
	for _, e := range r.conns {
		out = append(out, e.Conn)
	}
	return out
}

func describe(sid core.ConnectionID, e *connEntry) core.Participant {
	return core.Participant{
		UserID:   e.Member.User.ID,
		Username: e.Member.User.Username,
		SocketID: sid,
	}
}
