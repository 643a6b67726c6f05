package peerchat

import (
	"context"
	"sort"
)

// messageLog is the locally ordered, deduplicated view of a room's messages.
// It is owned by the engine and only touched under the engine lock.
type messageLog struct {
	seen map[string]int // id -> index into msgs
	msgs []Message
}

func newMessageLog() *messageLog {
	return &messageLog{seen: make(map[string]int)}
}

// seed loads the history delivered inline with a join. The batch is sorted
// by timestamp before insertion; join history is the only input the server
// does not guarantee to be ordered.
func (l *messageLog) seed(batch []Message) {
	sorted := make([]Message, len(batch))
	copy(sorted, batch)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	l.merge(sorted)
}

// merge appends messages not already in the log, preserving the batch's
// order, and returns the newly appended ones. Overlapping poll batches are
// harmless: an id is appended at most once no matter how often it arrives.
func (l *messageLog) merge(batch []Message) []Message {
	var added []Message
	for _, m := range batch {
		if _, ok := l.seen[m.ID]; ok {
			continue
		}
		l.seen[m.ID] = len(l.msgs)
		l.msgs = append(l.msgs, m)
		added = append(added, m)
	}
	return added
}

// lastID returns the poll cursor: the id of the newest message, or "" when
// the log is empty.
func (l *messageLog) lastID() string {
	if len(l.msgs) == 0 {
		return ""
	}
	return l.msgs[len(l.msgs)-1].ID
}

func (l *messageLog) get(id string) (Message, bool) {
	i, ok := l.seen[id]
	if !ok {
		return Message{}, false
	}
	return l.msgs[i], true
}

// update mutates a message in place and returns the updated copy.
func (l *messageLog) update(id string, fn func(*Message)) (Message, bool) {
	i, ok := l.seen[id]
	if !ok {
		return Message{}, false
	}
	fn(&l.msgs[i])
	return l.msgs[i], true
}

func (l *messageLog) snapshot() []Message {
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// pollMessages is one tick of the message synchronizer. gen and s are
// captured at join time; a response arriving after the session was torn down
// fails the generation check inside applyMessages and mutates nothing.
func (e *Engine) pollMessages(ctx context.Context, gen uint64, s *Session) {
	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return
	}
	cursor := e.log.lastID()
	e.mu.Unlock()

	batch, err := e.rest.Messages(ctx, s.RoomID, cursor, s.ID)
	if err != nil {
		if ctx.Err() == nil {
			e.logger.Warn("message poll failed", map[string]any{
				"room":  s.RoomID,
				"error": err.Error(),
			})
			e.dispatcher.dispatchError(WrapError(ErrorPollFailed, "message poll failed", err))
		}
		return
	}
	e.applyMessages(gen, batch)
}

// applyMessages merges a batch into the log if the owning session is still
// current. Used by the poll loop and by the send echo path, so a message
// appearing in both cannot be appended twice.
func (e *Engine) applyMessages(gen uint64, batch []Message) {
	e.mu.Lock()
	if e.gen != gen || e.log == nil {
		e.mu.Unlock()
		return
	}
	added := e.log.merge(batch)
	e.mu.Unlock()

	// Re-check before the callback so a leave racing this response also
	// suppresses the delivery, not just the log write.
	if len(added) == 0 || !e.sessionCurrent(gen) {
		return
	}
	e.dispatcher.dispatchMessages(added)
}
