package core

import (
	"github.com/dkeye/Meet/internal/domain"
)

// Participant is a read-only view of one room member (no transport fields).
// It is always computed fresh from the registry.
type Participant struct {
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username"`
	SocketID ConnectionID  `json:"socketId"`
}

type RoomInfo struct {
	Name        domain.RoomID `json:"name"`
	MemberCount int           `json:"client_count"`
}
