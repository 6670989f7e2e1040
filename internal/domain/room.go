package domain

import "strings"

type RoomID string

// NewRoomID trims the client-supplied id. The empty id is not a room.
func NewRoomID(raw string) (RoomID, bool) {
	id := strings.TrimSpace(raw)
	return RoomID(id), id != ""
}
