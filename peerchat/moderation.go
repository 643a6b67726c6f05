package peerchat

import "context"

// Like registers a like on a message. The local count is incremented
// optimistically, then reconciled with the server's authoritative count; on
// failure the optimistic change is reverted and ErrorModerationFailed is
// returned.
func (e *Engine) Like(ctx context.Context, messageID string) error {
	e.mu.Lock()
	if e.state != StateActive {
		e.mu.Unlock()
		return NewError(ErrorNotActive, "no active session")
	}
	gen := e.gen
	s := e.session
	m, ok := e.log.get(messageID)
	if !ok {
		e.mu.Unlock()
		return NewError(ErrorMessageNotFound, "message not in local log")
	}
	if m.Reported {
		e.mu.Unlock()
		return NewError(ErrorMessageReported, "reported messages accept no further moderation")
	}
	prev := m.LikeCount
	optimistic, _ := e.log.update(messageID, func(m *Message) { m.LikeCount++ })
	e.mu.Unlock()

	e.dispatcher.dispatchMessageUpdated(optimistic)

	resp, err := e.rest.Like(ctx, messageID, s.ID)

	e.mu.Lock()
	if e.gen != gen {
		// Session ended while the call was in flight; the log belongs to
		// history now and must not be touched.
		e.mu.Unlock()
		if err != nil {
			return WrapError(ErrorModerationFailed, "like failed", err)
		}
		return nil
	}
	var reconciled Message
	if err != nil {
		reconciled, _ = e.log.update(messageID, func(m *Message) { m.LikeCount = prev })
	} else {
		reconciled, _ = e.log.update(messageID, func(m *Message) { m.LikeCount = resp.Likes })
	}
	e.mu.Unlock()

	e.dispatcher.dispatchMessageUpdated(reconciled)

	if err != nil {
		return WrapError(ErrorModerationFailed, "like failed", err)
	}
	return nil
}

// Report flags a message. On success the message is marked reported locally,
// which is terminal for this viewer: the message accepts no further like or
// report calls from this session.
func (e *Engine) Report(ctx context.Context, messageID, reason string) error {
	e.mu.Lock()
	if e.state != StateActive {
		e.mu.Unlock()
		return NewError(ErrorNotActive, "no active session")
	}
	gen := e.gen
	s := e.session
	m, ok := e.log.get(messageID)
	if !ok {
		e.mu.Unlock()
		return NewError(ErrorMessageNotFound, "message not in local log")
	}
	if m.Reported {
		e.mu.Unlock()
		return NewError(ErrorMessageReported, "message already reported")
	}
	e.mu.Unlock()

	ok, err := e.rest.Report(ctx, messageID, s.ID, reason)
	if err != nil {
		return WrapError(ErrorModerationFailed, "report failed", err)
	}
	if !ok {
		return NewError(ErrorModerationFailed, "report rejected by server")
	}

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return nil
	}
	updated, _ := e.log.update(messageID, func(m *Message) { m.Reported = true })
	e.mu.Unlock()

	e.dispatcher.dispatchMessageUpdated(updated)
	return nil
}
