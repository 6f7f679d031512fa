package observation

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/vango-dev/observation/internal/errors"
)

// WatchID identifies one watch registered in one Registrar.
// The zero value means "no watch".
type WatchID = uuid.UUID

// watch is a registrar-local watch record.
type watch struct {
	id WatchID

	// seq orders firing when one mutation triggers several watches.
	seq uint64

	properties []PropertyID
	callback   func()
}

// Registrar is the per-object bookkeeping of an observable object.
//
// An observable object owns exactly one Registrar and routes every property
// read through Access and every property write through WithMutation (or
// Mutate). The zero value is ready to use. A Registrar must not be copied
// after first use.
type Registrar struct {
	id atomic.Uint64

	// mu protects lookups and watches. It is never held while a callback runs.
	mu sync.Mutex

	// lookups maps a property to the watches interested in it.
	// Empty sets are deleted.
	lookups map[PropertyID]map[WatchID]struct{}

	// watches holds every watch that appears in at least one lookups set.
	watches map[WatchID]*watch
}

// NewRegistrar creates a Registrar.
func NewRegistrar() *Registrar {
	r := &Registrar{}
	r.ID()
	return r
}

// ID returns a process-unique identifier for this registrar, used in logs.
func (r *Registrar) ID() uint64 {
	if id := r.id.Load(); id != 0 {
		return id
	}
	r.id.CompareAndSwap(0, nextID())
	return r.id.Load()
}

func (r *Registrar) mustBeUsable(p PropertyID) {
	if r == nil {
		panic(errors.New("E002"))
	}
	mustBeValid(p)
}

// Access records that property p of the owning object is being read.
// If the calling goroutine is inside a tracking scope, the read becomes a
// dependency of that scope. Otherwise Access does nothing.
func (r *Registrar) Access(p PropertyID) {
	r.mustBeUsable(p)

	list := currentAccessList()
	if list != nil {
		list.trackAccess(r, p)
	}
	logAccess(r, p, list != nil)
}

// WithMutation announces that property p is about to change, then runs body.
//
// Every watch registered under p is removed from this registrar and its
// callback is invoked synchronously, before body runs. A watch fires at most
// once. Callbacks may read and mutate observable objects, including this one.
//
// If a callback panics, the remaining callbacks still run, body is skipped
// and the first panic is re-raised.
func (r *Registrar) WithMutation(p PropertyID, body func()) {
	r.mustBeUsable(p)
	r.notify(p)
	body()
}

// Mutate is WithMutation for bodies that produce a value. The value is
// returned unchanged.
func Mutate[T any](r *Registrar, p PropertyID, body func() T) T {
	r.mustBeUsable(p)
	r.notify(p)
	return body()
}

// notify removes and fires every watch registered under p.
func (r *Registrar) notify(p PropertyID) {
	r.mu.Lock()
	ids := r.lookups[p]
	delete(r.lookups, p)

	fired := make([]*watch, 0, len(ids))
	for id := range ids {
		w, ok := r.watches[id]
		if !ok {
			continue
		}
		r.removeLocked(w)
		fired = append(fired, w)
	}
	r.mu.Unlock()

	slices.SortFunc(fired, func(a, b *watch) int {
		return cmp.Compare(a.seq, b.seq)
	})

	recordMutation(len(fired))
	logMutation(r, p, len(fired))

	runCallbacks(fired)
}

// runCallbacks invokes every callback even if some of them panic.
// The first panic is re-raised once all callbacks have run.
func runCallbacks(ws []*watch) {
	var (
		panicked   bool
		firstPanic any
	)
	for _, w := range ws {
		func() {
			defer func() {
				if rec := recover(); rec != nil && !panicked {
					panicked = true
					firstPanic = rec
				}
			}()
			w.callback()
		}()
	}
	if panicked {
		panic(firstPanic)
	}
}

// RegisterWatch registers callback under every property in props on this
// registrar only and returns the new watch's id. Duplicate properties
// collapse. An empty props registers nothing and returns the zero WatchID.
//
// Aggregation across registrars is done by the tracking scope, see Track.
func (r *Registrar) RegisterWatch(props []PropertyID, callback func()) WatchID {
	if r == nil {
		panic(errors.New("E002"))
	}
	if len(props) == 0 {
		return WatchID{}
	}
	if callback == nil {
		callback = func() {}
	}

	w := &watch{
		id:         uuid.New(),
		seq:        nextID(),
		properties: make([]PropertyID, 0, len(props)),
		callback:   callback,
	}
	for _, p := range props {
		mustBeValid(p)
		if !slices.Contains(w.properties, p) {
			w.properties = append(w.properties, p)
		}
	}

	r.mu.Lock()
	if r.watches == nil {
		r.watches = make(map[WatchID]*watch)
		r.lookups = make(map[PropertyID]map[WatchID]struct{})
	}
	r.watches[w.id] = w
	for _, p := range w.properties {
		set := r.lookups[p]
		if set == nil {
			set = make(map[WatchID]struct{})
			r.lookups[p] = set
		}
		set[w.id] = struct{}{}
	}
	r.mu.Unlock()

	recordRegistration()
	logRegister(r, w)

	return w.id
}

// CancelWatch removes the watch with the given id. It reports whether a
// watch was removed; cancelling an unknown or already removed id is a no-op.
func (r *Registrar) CancelWatch(id WatchID) bool {
	if r == nil {
		return false
	}

	r.mu.Lock()
	w, ok := r.watches[id]
	if ok {
		r.removeLocked(w)
	}
	r.mu.Unlock()

	if ok {
		recordCancellation()
	}
	logCancel(r, id, ok)
	return ok
}

// removeLocked drops w from watches and from every lookups set.
// Callers must hold r.mu.
func (r *Registrar) removeLocked(w *watch) {
	delete(r.watches, w.id)
	for _, p := range w.properties {
		set, ok := r.lookups[p]
		if !ok {
			continue
		}
		delete(set, w.id)
		if len(set) == 0 {
			delete(r.lookups, p)
		}
	}
	recordUnregistration()
}

// WatchCount returns the number of watches currently registered.
func (r *Registrar) WatchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watches)
}

// ObserverCount returns the number of watches currently registered under p.
func (r *Registrar) ObserverCount(p PropertyID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lookups[p])
}
