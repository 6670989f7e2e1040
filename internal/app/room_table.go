package app

import (
	"cmp"
	"maps"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

// Room is a named set of member connections. A Room value only exists while
// it has members: the table creates it on first join and deletes it when the
// last member leaves.
type Room struct {
	ID      domain.RoomID
	members map[core.ConnectionID]struct{}
}

func newRoom(id domain.RoomID) *Room {
	return &Room{ID: id, members: make(map[core.ConnectionID]struct{})}
}

func (r *Room) add(sid core.ConnectionID)    { r.members[sid] = struct{}{} }
func (r *Room) remove(sid core.ConnectionID) { delete(r.members, sid) }
func (r *Room) empty() bool                  { return len(r.members) == 0 }

func (r *Room) has(sid core.ConnectionID) bool {
	_, ok := r.members[sid]
	return ok
}

func (r *Room) MemberCount() int { return len(r.members) }

// RoomTable maps room ids to member sets. Like Registry it is owned by the
// orchestrator loop and is not safe for concurrent use.
type RoomTable struct {
	rooms map[domain.RoomID]*Room
}

func NewRoomTable() *RoomTable {
	return &RoomTable{rooms: make(map[domain.RoomID]*Room)}
}

// Join adds sid to the room, creating the room if absent. It reports
// whether the room was created by this call.
func (t *RoomTable) Join(id domain.RoomID, sid core.ConnectionID) (created bool) {
	room, ok := t.rooms[id]
	if !ok {
		room = newRoom(id)
		t.rooms[id] = room
		created = true
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	}
	if !room.has(sid) {
		room.add(sid)
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("sid", string(sid)).Int("members", room.MemberCount()).Msg("member added")
	}
	return created
}

// Leave removes sid from the room. When the room becomes empty it is
// deleted and Leave reports true. Absent room or member is a no-op.
func (t *RoomTable) Leave(id domain.RoomID, sid core.ConnectionID) (deleted bool) {
	room, ok := t.rooms[id]
	if !ok || !room.has(sid) {
		return false
	}
	room.remove(sid)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("sid", string(sid)).Int("members", room.MemberCount()).Msg("member removed")
	if !room.empty() {
		return false
	}
	delete(t.rooms, id)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room deleted")
	return true
}

// Members returns the room's connection ids in sorted order, or nil if the
// room does not exist.
func (t *RoomTable) Members(id domain.RoomID) []core.ConnectionID {
	room, ok := t.rooms[id]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(room.members))
}

func (t *RoomTable) MembersExcluding(id domain.RoomID, sid core.ConnectionID) []core.ConnectionID {
	return slices.DeleteFunc(t.Members(id), func(m core.ConnectionID) bool { return m == sid })
}

func (t *RoomTable) Exists(id domain.RoomID) bool {
	_, ok := t.rooms[id]
	return ok
}

func (t *RoomTable) List() []core.RoomInfo {
	out := make([]core.RoomInfo, 0, len(t.rooms))
	for id, r := range t.rooms {
		out = append(out, core.RoomInfo{Name: id, MemberCount: r.MemberCount()})
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (t *RoomTable) Len() int { return len(t.rooms) }
