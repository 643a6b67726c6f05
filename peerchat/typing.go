package peerchat

import (
	"sync"
	"time"
)

// typingController debounces raw keystroke signals into a bounded on/off
// typing indicator. It pushes exactly one "true" when typing starts and one
// "false" when the window expires or the state is flushed.
type typingController struct {
	mu     sync.Mutex
	window time.Duration
	push   func(bool)
	typing bool
	timer  *time.Timer
}

func newTypingController(window time.Duration, push func(bool)) *typingController {
	return &typingController{window: window, push: push}
}

// Input records a keystroke. Repeated input while already typing only
// reschedules the expiry, it does not re-push.
func (t *typingController) Input() {
	t.mu.Lock()
	wasTyping := t.typing
	t.typing = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.window, t.expire)
	t.mu.Unlock()

	if !wasTyping {
		t.push(true)
	}
}

func (t *typingController) expire() {
	t.mu.Lock()
	if !t.typing {
		t.mu.Unlock()
		return
	}
	t.typing = false
	t.timer = nil
	t.mu.Unlock()

	t.push(false)
}

// Flush turns the indicator off immediately, pushing "false" without waiting
// for the window. Used when a message is sent.
func (t *typingController) Flush() {
	t.mu.Lock()
	if !t.typing {
		t.mu.Unlock()
		return
	}
	t.typing = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()

	t.push(false)
}

// stop cancels the timer without pushing and reports whether the indicator
// was on. The engine owes the room a final "false" push when it was.
func (t *typingController) stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := t.typing
	t.typing = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	return was
}
