package observer

import (
	observable "github.com/GianlucaGuarini/go-observable"

	"github.com/cmwaters/gatekeeper/allowlist"
)

// AllowListObserver is the process-wide bus for allow-list events.
// Subscribers register with On and receive the event struct as the sole
// argument.
var AllowListObserver = observable.New()

const (
	EventAccountVoted   = "account-voted"
	EventAccountAllowed = "account-allowed"
)

// Emitter bridges Voter events onto an observable bus.
type Emitter struct {
	o *observable.Observable
}

var _ allowlist.Emitter = (*Emitter)(nil)

// NewEmitter returns an Emitter publishing to the process-wide
// AllowListObserver.
func NewEmitter() *Emitter {
	return &Emitter{o: AllowListObserver}
}

// NewEmitterWith returns an Emitter publishing to the given bus.
func NewEmitterWith(o *observable.Observable) *Emitter {
	return &Emitter{o: o}
}

func (e *Emitter) Emit(ev allowlist.Event) {
	switch ev := ev.(type) {
	case allowlist.AccountVoted:
		e.o.Trigger(EventAccountVoted, ev)
	case allowlist.AccountAllowed:
		e.o.Trigger(EventAccountAllowed, ev)
	}
}
