package domain

// Member is a connection's membership meta: which room and as whom.
// No transport or lifecycle logic here.
type Member struct {
	Room RoomID
	User User
}

// InRoom reports whether the member has joined a room.
func (m Member) InRoom() bool { return m.Room != "" }
