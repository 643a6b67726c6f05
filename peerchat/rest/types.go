package rest

import "time"

// Room represents a support room as listed by the catalog endpoint.
type Room struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LocalizedName string `json:"localized_name,omitempty"`
	Description   string `json:"description,omitempty"`
	Icon          string `json:"icon,omitempty"`
	Color         string `json:"color,omitempty"`
	MemberCount   int    `json:"member_count"`
}

// Message is a single chat message. IDs are server-assigned and ordered by
// the server; the client never compares them, only uses the last one as a
// poll cursor.
type Message struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	AnonymousName string    `json:"anonymous_name"`
	Avatar        string    `json:"avatar,omitempty"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
	LikeCount     int       `json:"like_count"`
	Reported      bool      `json:"reported"`
}

// JoinRequest is the body for joining a room.
type JoinRequest struct {
	UserID string `json:"user_id"`
}

// JoinResponse carries the server-issued anonymous identity plus any message
// history delivered inline with the join.
type JoinResponse struct {
	SessionID       string    `json:"session_id"`
	AnonymousName   string    `json:"anonymous_name"`
	Avatar          string    `json:"avatar,omitempty"`
	InitialMessages []Message `json:"initial_messages"`
}

// LeaveRequest is the body for leaving a room.
type LeaveRequest struct {
	SessionID string `json:"session_id"`
}

// PostMessageRequest is the body for sending a message.
type PostMessageRequest struct {
	SessionID     string `json:"session_id"`
	Text          string `json:"text"`
	AnonymousName string `json:"anonymous_name"`
	Avatar        string `json:"avatar,omitempty"`
}

// LikeRequest is the body for liking a message.
type LikeRequest struct {
	SessionID string `json:"session_id"`
}

// LikeResponse carries the authoritative like count after a like call.
type LikeResponse struct {
	Likes int `json:"likes"`
}

// ReportRequest is the body for reporting a message.
type ReportRequest struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// TypingRequest is the body for the typing state push.
type TypingRequest struct {
	SessionID string `json:"session_id"`
	Typing    bool   `json:"typing"`
}

// PresenceSnapshot is the point-in-time presence state of a room. It is
// replaced wholesale on every heartbeat, never merged.
type PresenceSnapshot struct {
	ActiveCount     int      `json:"active_count"`
	TypingUsernames []string `json:"typing_usernames"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
