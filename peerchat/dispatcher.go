package peerchat

// Dispatcher routes engine events to registered callbacks. Callbacks are
// invoked outside the engine lock, so they may call back into the engine.
type Dispatcher struct {
	onMessages       func([]Message)
	onMessageUpdated func(Message)
	onPresence       func(PresenceSnapshot)
	onStateChange    func(StateEvent)
	onError          func(error)
}

func (d *Dispatcher) SetOnMessages(fn func([]Message))        { d.onMessages = fn }
func (d *Dispatcher) SetOnMessageUpdated(fn func(Message))    { d.onMessageUpdated = fn }
func (d *Dispatcher) SetOnPresence(fn func(PresenceSnapshot)) { d.onPresence = fn }
func (d *Dispatcher) SetOnStateChange(fn func(StateEvent))    { d.onStateChange = fn }
func (d *Dispatcher) SetOnError(fn func(error))               { d.onError = fn }

func (d *Dispatcher) dispatchMessages(batch []Message) {
	if d.onMessages != nil && len(batch) > 0 {
		d.onMessages(batch)
	}
}

func (d *Dispatcher) dispatchMessageUpdated(m Message) {
	if d.onMessageUpdated != nil {
		d.onMessageUpdated(m)
	}
}

func (d *Dispatcher) dispatchPresence(p PresenceSnapshot) {
	if d.onPresence != nil {
		d.onPresence(p)
	}
}

func (d *Dispatcher) dispatchStateChange(ev StateEvent) {
	if d.onStateChange != nil && ev.OldState != ev.NewState {
		d.onStateChange(ev)
	}
}

func (d *Dispatcher) dispatchError(err error) {
	if d.onError != nil && err != nil {
		d.onError(err)
	}
}
