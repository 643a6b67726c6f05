// Package peerchattest provides an in-memory fake of the peer-support chat
// backend for tests and local demos. It implements the full REST contract the
// engine consumes and supports per-endpoint failure injection, artificial
// latency, and request counting.
package peerchattest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumewell/peerchat-go/peerchat/rest"
)

// Operation names accepted by SetFail, SetDelay, and Requests.
const (
	OpRooms    = "rooms"
	OpJoin     = "join"
	OpLeave    = "leave"
	OpMessages = "messages"
	OpSend     = "send"
	OpLike     = "like"
	OpReport   = "report"
	OpTyping   = "typing"
	OpPresence = "presence"
)

type roomState struct {
	info   rest.Room
	msgs   []string          // message ids in post order
	typing map[string]string // session id -> anonymous name
}

type sessionState struct {
	id     string
	roomID string
	name   string
	avatar string
}

// Server is the fake backend. All exported methods are safe for concurrent
// use.
type Server struct {
	mu       sync.Mutex
	srv      *httptest.Server
	rooms    map[string]*roomState
	sessions map[string]*sessionState
	messages map[string]*rest.Message
	fail     map[string]bool
	delay    map[string]time.Duration
	counts   map[string]int
	names    int
}

// NewServer starts a fake backend with no rooms. Callers seed it with
// AddRoom and must Close it when done.
func NewServer() *Server {
	s := &Server{
		rooms:    make(map[string]*roomState),
		sessions: make(map[string]*sessionState),
		messages: make(map[string]*rest.Message),
		fail:     make(map[string]bool),
		delay:    make(map[string]time.Duration),
		counts:   make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms", s.op(OpRooms, s.handleRooms))
	mux.HandleFunc("POST /rooms/{id}/join", s.op(OpJoin, s.handleJoin))
	mux.HandleFunc("POST /rooms/{id}/leave", s.op(OpLeave, s.handleLeave))
	mux.HandleFunc("GET /rooms/{id}/messages", s.op(OpMessages, s.handleMessages))
	mux.HandleFunc("POST /rooms/{id}/messages", s.op(OpSend, s.handleSend))
	mux.HandleFunc("POST /messages/{id}/like", s.op(OpLike, s.handleLike))
	mux.HandleFunc("POST /messages/{id}/report", s.op(OpReport, s.handleReport))
	mux.HandleFunc("POST /rooms/{id}/typing", s.op(OpTyping, s.handleTyping))
	mux.HandleFunc("GET /rooms/{id}/presence", s.op(OpPresence, s.handlePresence))

	s.srv = httptest.NewServer(mux)
	return s
}

// URL returns the base URL of the fake backend.
func (s *Server) URL() string { return s.srv.URL }

// Close shuts the server down.
func (s *Server) Close() { s.srv.Close() }

// AddRoom seeds a room and returns it.
func (s *Server) AddRoom(name string) rest.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := rest.Room{
		ID:   uuid.NewString(),
		Name: name,
	}
	s.rooms[room.ID] = &roomState{info: room, typing: make(map[string]string)}
	return room
}

// InjectMessage posts a message into a room on behalf of another user,
// bypassing any session, so tests can simulate peer activity.
func (s *Server) InjectMessage(roomID, author, text string) rest.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeMessage(roomID, uuid.NewString(), author, "", text)
}

// SetFail makes an operation answer 500 until cleared.
func (s *Server) SetFail(op string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = fail
}

// SetDelay makes an operation sleep before answering.
func (s *Server) SetDelay(op string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay[op] = d
}

// Requests returns how many times an operation has been called.
func (s *Server) Requests(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[op]
}

// SessionCount returns the number of live sessions in a room.
func (s *Server) SessionCount(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.sessions {
		if sess.roomID == roomID {
			n++
		}
	}
	return n
}

func (s *Server) op(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.counts[name]++
		fail := s.fail[name]
		delay := s.delay[name]
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if fail {
			writeError(w, http.StatusInternalServerError, "injected failure")
			return
		}
		h(w, r)
	}
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]rest.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		info := room.info
		info.MemberCount = 0
		for _, sess := range s.sessions {
			if sess.roomID == info.ID {
				info.MemberCount++
			}
		}
		out = append(out, info)
	}
	s.mu.Unlock()
	writeJSON(w, out)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	var req rest.JoinRequest
	if !readJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	s.names++
	sess := &sessionState{
		id:     uuid.NewString(),
		roomID: roomID,
		name:   fmt.Sprintf("Kind Stranger %d", s.names),
		avatar: fmt.Sprintf("avatar-%d", s.names%8),
	}
	s.sessions[sess.id] = sess

	history := make([]rest.Message, 0, len(room.msgs))
	for _, id := range room.msgs {
		history = append(history, *s.messages[id])
	}
	s.mu.Unlock()

	writeJSON(w, rest.JoinResponse{
		SessionID:       sess.id,
		AnonymousName:   sess.name,
		Avatar:          sess.avatar,
		InitialMessages: history,
	})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req rest.LeaveRequest
	if !readJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	if sess, ok := s.sessions[req.SessionID]; ok {
		if room, ok := s.rooms[sess.roomID]; ok {
			delete(room.typing, sess.id)
		}
		delete(s.sessions, req.SessionID)
	}
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	since := r.URL.Query().Get("since")

	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	start := 0
	if since != "" {
		for i, id := range room.msgs {
			if id == since {
				start = i + 1
				break
			}
		}
	}
	out := make([]rest.Message, 0, len(room.msgs)-start)
	for _, id := range room.msgs[start:] {
		out = append(out, *s.messages[id])
	}
	s.mu.Unlock()
	writeJSON(w, out)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	var req rest.PostMessageRequest
	if !readJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	if _, ok := s.rooms[roomID]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	msg := s.storeMessage(roomID, req.SessionID, req.AnonymousName, req.Avatar, req.Text)
	s.mu.Unlock()
	writeJSON(w, msg)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	msgID := r.PathValue("id")
	var req rest.LikeRequest
	if !readJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	msg, ok := s.messages[msgID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	msg.LikeCount++
	likes := msg.LikeCount
	s.mu.Unlock()
	writeJSON(w, rest.LikeResponse{Likes: likes})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	msgID := r.PathValue("id")
	var req rest.ReportRequest
	if !readJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	msg, ok := s.messages[msgID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	msg.Reported = true
	s.mu.Unlock()
	writeJSON(w, true)
}

func (s *Server) handleTyping(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	var req rest.TypingRequest
	if !readJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if req.Typing {
		name := req.SessionID
		if sess, ok := s.sessions[req.SessionID]; ok {
			name = sess.name
		}
		room.typing[req.SessionID] = name
	} else {
		delete(room.typing, req.SessionID)
	}
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePresence(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")

	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	snap := rest.PresenceSnapshot{TypingUsernames: []string{}}
	for _, sess := range s.sessions {
		if sess.roomID == roomID {
			snap.ActiveCount++
		}
	}
	for _, name := range room.typing {
		snap.TypingUsernames = append(snap.TypingUsernames, name)
	}
	s.mu.Unlock()
	writeJSON(w, snap)
}

// storeMessage appends a message to a room. Caller holds s.mu.
func (s *Server) storeMessage(roomID, sessionID, name, avatar, text string) rest.Message {
	msg := rest.Message{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		AnonymousName: name,
		Avatar:        avatar,
		Text:          text,
		Timestamp:     time.Now().UTC(),
	}
	s.messages[msg.ID] = &msg
	if room, ok := s.rooms[roomID]; ok {
		room.msgs = append(room.msgs, msg.ID)
	}
	return msg
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return false
	}
	return true
}
