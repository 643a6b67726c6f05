package peerchat

import "context"

// pollPresence is one tick of the presence heartbeat. The snapshot is
// replaced wholesale; presence is point-in-time state, not an append log.
func (e *Engine) pollPresence(ctx context.Context, gen uint64, s *Session) {
	snap, err := e.rest.Presence(ctx, s.RoomID)
	if err != nil {
		if ctx.Err() == nil {
			e.logger.Warn("presence heartbeat failed", map[string]any{
				"room":  s.RoomID,
				"error": err.Error(),
			})
			e.dispatcher.dispatchError(WrapError(ErrorPresenceFailed, "presence heartbeat failed", err))
		}
		return
	}
	e.applyPresence(gen, *snap)
}

// applyPresence replaces the snapshot if the owning session is still current.
func (e *Engine) applyPresence(gen uint64, snap PresenceSnapshot) {
	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return
	}
	e.presence = snap
	e.mu.Unlock()

	if !e.sessionCurrent(gen) {
		return
	}
	e.dispatcher.dispatchPresence(snap)
}

// typingLoop drains typing pushes for one session. A single worker keeps the
// on/off pushes ordered on the wire; pushes are fire-and-forget, failures are
// only logged. The loop dies with the session context.
func (e *Engine) typingLoop(ctx context.Context, s *Session, ch <-chan bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case typing := <-ch:
			reqCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
			err := e.rest.SetTyping(reqCtx, s.RoomID, s.ID, typing)
			cancel()
			if err != nil && ctx.Err() == nil {
				e.logger.Debug("typing push failed", map[string]any{
					"room":   s.RoomID,
					"typing": typing,
					"error":  err.Error(),
				})
			}
		}
	}
}
