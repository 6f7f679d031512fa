package observation

import (
	"sync"

	"go.opentelemetry.io/otel/trace"
)

type observationState int

const (
	// stateInert: the scope read nothing, so nothing was registered.
	stateInert observationState = iota
	stateActive
	stateFired
	stateCancelled
)

// Observation is the watch produced by one tracking scope.
//
// It is a single logical unit registered in every registrar the scope read
// from. The first mutation of any of its dependencies fires it: onChange runs
// once and every registration is removed, including those on other objects.
type Observation struct {
	mu    sync.Mutex
	state observationState

	onChange func()

	// registrations maps each registrar to the local watch id of this
	// observation. Nil once fired or cancelled.
	registrations map[*Registrar]WatchID

	registrars   int
	dependencies int

	// scope links the fire span to the tracking scope span, if any.
	scope trace.SpanContext
}

// Track runs computation while recording every observable property it reads,
// then arranges for onChange to run exactly once, the first time any of those
// properties is mutated.
//
// Track returns as soon as computation returns; it never waits for a change.
// If computation reads nothing, no watch is registered and onChange never
// runs. Panics from computation propagate and register nothing.
//
// To keep observing after a change, call Track again, typically from
// onChange or after being woken by it.
func Track(computation func(), onChange func()) *Observation {
	return track(computation, onChange, trace.SpanContext{})
}

// WithObservationTracking runs computation under a tracking scope and returns
// its result. See Track.
//
// Example:
//
//	report := observation.WithObservationTracking(func() string {
//	    return suspect.Report()
//	}, func() {
//	    fmt.Println("report is stale")
//	})
func WithObservationTracking[T any](computation func() T, onChange func()) T {
	var result T
	track(func() { result = computation() }, onChange, trace.SpanContext{})
	return result
}

func track(computation func(), onChange func(), scope trace.SpanContext) *Observation {
	list := newAccessList()
	withAccessList(list, true, computation)

	o := newObservation(list, onChange, scope)
	recordScope(list.Dependencies())
	logScope(o)
	return o
}

func newObservation(list *AccessList, onChange func(), scope trace.SpanContext) *Observation {
	if onChange == nil {
		onChange = func() {}
	}
	o := &Observation{
		onChange:     onChange,
		registrars:   list.Len(),
		dependencies: list.Dependencies(),
		scope:        scope,
	}
	if list.Len() == 0 {
		return o
	}

	o.state = stateActive
	o.registrations = make(map[*Registrar]WatchID, list.Len())

	for _, r := range list.order {
		id := r.RegisterWatch(list.entries[r].order, o.fire)

		o.mu.Lock()
		if o.state != stateActive {
			// Fired or cancelled while registrations were still being
			// installed; this one must not outlive it.
			o.mu.Unlock()
			r.CancelWatch(id)
			continue
		}
		o.registrations[r] = id
		o.mu.Unlock()
	}
	return o
}

// fire is the callback shared by every registration of o.
func (o *Observation) fire() {
	o.mu.Lock()
	if o.state != stateActive {
		o.mu.Unlock()
		return
	}
	o.state = stateFired
	regs := o.registrations
	o.registrations = nil
	o.mu.Unlock()

	recordFire()
	logFire(o)

	end := startFireSpan(o)
	defer end()
	defer cancelRegistrations(regs)

	o.onChange()
}

// Cancel removes every registration of o without running onChange.
// It reports whether o was active; cancelling a fired, cancelled or inert
// observation is a no-op.
func (o *Observation) Cancel() bool {
	o.mu.Lock()
	if o.state != stateActive {
		o.mu.Unlock()
		return false
	}
	o.state = stateCancelled
	regs := o.registrations
	o.registrations = nil
	o.mu.Unlock()

	cancelRegistrations(regs)
	recordCancel()
	return true
}

func cancelRegistrations(regs map[*Registrar]WatchID) {
	for r, id := range regs {
		r.CancelWatch(id)
	}
}

// Active reports whether o is registered and waiting for a change.
func (o *Observation) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == stateActive
}

// Fired reports whether onChange has been triggered.
func (o *Observation) Fired() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == stateFired
}

// Registrars returns the number of distinct objects the scope read from.
func (o *Observation) Registrars() int {
	return o.registrars
}

// Dependencies returns the number of distinct (object, property) pairs the
// scope read.
func (o *Observation) Dependencies() int {
	return o.dependencies
}
