// Package peerchat implements the client-side synchronization engine for the
// peer-support chat: room catalog, session lifecycle, polling message sync,
// presence heartbeat, typing debounce, and optimistic moderation.
//
// The engine assumes a pull transport. There is no persistent connection;
// three independently timed activities (message poll, presence heartbeat,
// typing expiry) are scoped to the lifetime of exactly one session and torn
// down atomically on leave. Every asynchronous continuation captures the
// session generation at start and re-checks it before mutating state, so a
// response arriving after teardown is a no-op rather than a zombie update.
package peerchat

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lumewell/peerchat-go/peerchat/internal"
	"github.com/lumewell/peerchat-go/peerchat/rest"
)

// Engine is the handle for one user's view of the peer-support chat. Create
// one with New and dispose of it with Close; at most one room session is
// active per engine at any time.
type Engine struct {
	cfg        Config
	logger     Logger
	rest       *rest.Client
	dispatcher Dispatcher
	flight     singleflight.Group

	mu       sync.Mutex
	state    SessionState
	gen      uint64 // bumped on every lifecycle transition; stale-callback guard
	session  *Session
	cancel   context.CancelFunc
	log      *messageLog
	presence PresenceSnapshot
	typing   *typingController
}

// New constructs an engine with the provided config. Zero-valued intervals
// fall back to the defaults from DefaultConfig.
func New(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	rc := rest.NewClient(cfg.BaseURL)
	rc.SetTimeout(cfg.RequestTimeout)
	return &Engine{
		cfg:    cfg,
		logger: noopLogger{},
		rest:   rc,
	}
}

// SetLogger overrides logger (optional).
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		return
	}
	e.logger = l
}

// OnMessages registers a callback for newly appended messages.
func (e *Engine) OnMessages(fn func([]Message)) { e.dispatcher.SetOnMessages(fn) }

// OnMessageUpdated registers a callback for moderation changes to a message.
func (e *Engine) OnMessageUpdated(fn func(Message)) { e.dispatcher.SetOnMessageUpdated(fn) }

// OnPresence registers a callback for presence snapshots.
func (e *Engine) OnPresence(fn func(PresenceSnapshot)) { e.dispatcher.SetOnPresence(fn) }

// OnStateChange registers a callback for session state transitions.
func (e *Engine) OnStateChange(fn func(StateEvent)) { e.dispatcher.SetOnStateChange(fn) }

// OnError registers a callback for soft, non-blocking failures.
func (e *Engine) OnError(fn func(error)) { e.dispatcher.SetOnError(fn) }

// State returns the current session state.
func (e *Engine) State() SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Session returns the active session, or nil.
func (e *Engine) Session() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Messages returns the local message log in order. The log survives a leave
// until the next join replaces it.
func (e *Engine) Messages() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.log == nil {
		return nil
	}
	return e.log.snapshot()
}

// Presence returns the latest presence snapshot.
func (e *Engine) Presence() PresenceSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.presence
}

// Join enters a room. Valid only from Idle; on success the message poll and
// presence heartbeat start, seeded with any history delivered inline.
//
// If Leave is called while the join is still in flight, the join result is
// discarded when it arrives and Join returns ErrorJoinSuperseded; a join that
// succeeded server-side is abandoned with a best-effort leave call.
func (e *Engine) Join(ctx context.Context, roomID string) (*Session, error) {
	if e.cfg.BaseURL == "" {
		return nil, NewError(ErrorInvalidConfig, "empty base URL")
	}

	e.mu.Lock()
	switch e.state {
	case StateClosed:
		e.mu.Unlock()
		return nil, NewError(ErrorEngineClosed, "engine has been closed")
	case StateJoining:
		e.mu.Unlock()
		return nil, NewError(ErrorJoinInProgress, "a join is already pending")
	case StateActive, StateLeaving:
		e.mu.Unlock()
		return nil, NewError(ErrorAlreadyJoined, "leave the current room first")
	}
	e.gen++
	gen := e.gen
	ev := e.transitionLocked(StateJoining)
	e.mu.Unlock()
	e.dispatcher.dispatchStateChange(ev)

	resp, err := e.rest.Join(ctx, roomID, e.cfg.UserID)

	e.mu.Lock()
	if e.gen != gen || e.state != StateJoining {
		e.mu.Unlock()
		if err == nil && resp != nil {
			e.abandonSession(roomID, resp.SessionID)
		}
		return nil, NewError(ErrorJoinSuperseded, "session was torn down before the join resolved")
	}
	if err != nil {
		ev := e.transitionLocked(StateIdle)
		e.mu.Unlock()
		e.dispatcher.dispatchStateChange(ev)
		return nil, WrapError(ErrorJoinFailed, "room join failed", err)
	}

	s := &Session{
		ID:            resp.SessionID,
		RoomID:        roomID,
		AnonymousName: resp.AnonymousName,
		Avatar:        resp.Avatar,
		JoinedAt:      time.Now(),
	}
	e.session = s
	e.log = newMessageLog()
	e.log.seed(resp.InitialMessages)
	e.presence = PresenceSnapshot{}

	// Typing pushes are buffered through a per-session channel so on/off
	// cannot reorder on the wire; a full buffer drops the push.
	typingCh := make(chan bool, 4)
	e.typing = newTypingController(e.cfg.TypingWindow, func(on bool) {
		select {
		case typingCh <- on:
		default:
		}
	})

	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	ev = e.transitionLocked(StateActive)
	seeded := e.log.snapshot()
	e.mu.Unlock()

	e.dispatcher.dispatchStateChange(ev)
	e.dispatcher.dispatchMessages(seeded)

	go internal.Repeat(runCtx, e.cfg.PollInterval, func(c context.Context) {
		e.pollMessages(c, gen, s)
	})
	go internal.Repeat(runCtx, e.cfg.PresenceInterval, func(c context.Context) {
		e.pollPresence(c, gen, s)
	})
	go e.typingLoop(runCtx, s, typingCh)

	e.logger.Info("joined room", map[string]any{
		"room":    roomID,
		"session": s.ID,
		"name":    s.AnonymousName,
	})
	return s, nil
}

// Leave ends the active session. Both background loops are canceled before
// the server is notified, and the generation bump makes any in-flight
// response a no-op. Leaving when already idle is a no-op, not an error.
func (e *Engine) Leave(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case StateIdle, StateClosed, StateLeaving:
		e.mu.Unlock()
		return nil
	case StateJoining:
		// The pending join sees the generation bump and discards its result.
		e.gen++
		ev := e.transitionLocked(StateIdle)
		e.mu.Unlock()
		e.dispatcher.dispatchStateChange(ev)
		return nil
	}

	e.gen++
	s := e.session
	cancel := e.cancel
	typing := e.typing
	ev := e.transitionLocked(StateLeaving)
	e.mu.Unlock()
	e.dispatcher.dispatchStateChange(ev)

	cancel()
	if typing.stop() {
		// Turn the indicator off now instead of letting the server age it out.
		if err := e.rest.SetTyping(ctx, s.RoomID, s.ID, false); err != nil {
			e.logger.Debug("typing reset on leave failed", map[string]any{"error": err.Error()})
		}
	}
	if err := e.rest.Leave(ctx, s.RoomID, s.ID); err != nil {
		e.logger.Warn("leave call failed", map[string]any{
			"room":  s.RoomID,
			"error": err.Error(),
		})
	}

	e.mu.Lock()
	e.session = nil
	e.cancel = nil
	e.typing = nil
	ev = e.transitionLocked(StateIdle)
	e.mu.Unlock()
	e.dispatcher.dispatchStateChange(ev)

	e.logger.Info("left room", map[string]any{"room": s.RoomID, "session": s.ID})
	return nil
}

// Send posts a message to the active room. The server echo is merged through
// the same dedup path as polled messages, so a later poll returning the same
// message cannot duplicate it. On failure nothing is appended locally; the
// caller keeps the draft.
func (e *Engine) Send(ctx context.Context, text string) (*Message, error) {
	e.mu.Lock()
	if e.state != StateActive {
		e.mu.Unlock()
		return nil, NewError(ErrorNotActive, "no active session")
	}
	gen := e.gen
	s := e.session
	typing := e.typing
	e.mu.Unlock()

	// Sending ends the typing episode deterministically.
	typing.Flush()

	msg, err := e.rest.PostMessage(ctx, s.RoomID, rest.PostMessageRequest{
		SessionID:     s.ID,
		Text:          text,
		AnonymousName: s.AnonymousName,
		Avatar:        s.Avatar,
	})
	if err != nil {
		return nil, WrapError(ErrorSendFailed, "message send failed", err)
	}

	e.applyMessages(gen, []Message{*msg})
	return msg, nil
}

// TypingInput records a keystroke in the message composer. Only meaningful
// while a session is active; otherwise it is ignored.
func (e *Engine) TypingInput() {
	e.mu.Lock()
	t := e.typing
	active := e.state == StateActive
	e.mu.Unlock()

	if active && t != nil {
		t.Input()
	}
}

// Close disposes of the engine: any active session is left and no further
// joins are accepted. Close is idempotent.
func (e *Engine) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeout)
	defer cancel()
	_ = e.Leave(ctx)

	e.mu.Lock()
	if e.state == StateClosed {
		e.mu.Unlock()
		return nil
	}
	e.gen++
	ev := e.transitionLocked(StateClosed)
	e.mu.Unlock()
	e.dispatcher.dispatchStateChange(ev)
	return nil
}

// sessionCurrent reports whether gen still identifies the live session.
// Asynchronous continuations consult it right before delivering a callback
// so a teardown racing an in-flight response suppresses the delivery.
func (e *Engine) sessionCurrent(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen == gen
}

// transitionLocked moves to the next state and returns the event for the
// caller to dispatch after unlocking. Callbacks never run under the lock.
func (e *Engine) transitionLocked(next SessionState) StateEvent {
	ev := StateEvent{OldState: e.state, NewState: next, Session: e.session}
	e.state = next
	return ev
}

// abandonSession releases a server-side session whose join result was
// discarded locally, so the room's member count does not drift.
func (e *Engine) abandonSession(roomID, sessionID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeout)
		defer cancel()
		if err := e.rest.Leave(ctx, roomID, sessionID); err != nil {
			e.logger.Debug("abandon of superseded session failed", map[string]any{
				"room":    roomID,
				"session": sessionID,
				"error":   err.Error(),
			})
		}
	}()
}
