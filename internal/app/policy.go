package app

import (
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

func (a BackpressureAction) String() string {
	switch a {
	case DropFrame:
		return "drop_frame"
	case KickMember:
		return "kick_member"
	}
	return "no_action"
}

// Policy decides what happens to a connection whose send queue is full.
// Delivery to other recipients is never affected.
type Policy interface {
	OnBackPressure(room domain.RoomID, slow core.ConnectionID, err error) BackpressureAction
}

// SimplePolicy kicks members that cannot keep up.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomID, core.ConnectionID, error) BackpressureAction {
	return KickMember
}

// DropPolicy only drops the frame that did not fit.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.RoomID, core.ConnectionID, error) BackpressureAction {
	return DropFrame
}
