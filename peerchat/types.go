package peerchat

import (
	"time"

	"github.com/lumewell/peerchat-go/peerchat/rest"
)

// The engine stores rooms, messages, and presence exactly as the backend
// reports them, so the wire types are re-exported as-is.
type (
	// Room is a support room as listed by the catalog.
	Room = rest.Room

	// Message is a single chat message in the local log.
	Message = rest.Message

	// PresenceSnapshot is the point-in-time presence state of the room.
	PresenceSnapshot = rest.PresenceSnapshot
)

// Session is one anonymous membership of a user in one room. At most one
// Session is active per engine at any time.
type Session struct {
	ID            string
	RoomID        string
	AnonymousName string
	Avatar        string
	JoinedAt      time.Time
}
