// Package observation provides fine-grained dependency tracking for
// observable objects.
//
// A tracking scope records exactly which properties a computation reads and
// calls back once, the first time any of them is mutated. It is the
// mechanism behind views that re-render only when the data they touched
// changes, without declaring dependencies by hand.
//
// # Observable Objects
//
// An observable object owns a Registrar, routes every property read through
// Access and every write through WithMutation (or Mutate):
//
//	var NameProperty = observation.NewProperty("Suspect.name")
//
//	type Suspect struct {
//	    registrar observation.Registrar
//	    mu        sync.RWMutex
//	    name      string
//	}
//
//	func (s *Suspect) Name() string {
//	    s.registrar.Access(NameProperty)
//	    s.mu.RLock()
//	    defer s.mu.RUnlock()
//	    return s.name
//	}
//
//	func (s *Suspect) SetName(name string) {
//	    s.registrar.WithMutation(NameProperty, func() {
//	        s.mu.Lock()
//	        s.name = name
//	        s.mu.Unlock()
//	    })
//	}
//
// The same PropertyID value must be used for reads and writes of a property.
//
// # Tracking Scopes
//
// Track (or WithObservationTracking) runs a computation and registers one
// logical watch across every object it read:
//
//	observation.Track(func() {
//	    fmt.Println(glib.Name(), jimmy.Name())
//	}, func() {
//	    fmt.Println("changed")
//	})
//
//	glib.SetName("Glib")   // prints "changed"
//	jimmy.SetName("Jim")   // prints nothing: the watch is gone everywhere
//
// onChange runs synchronously in the mutating goroutine, before the new
// value is stored. The watch is then removed from every registrar it was
// registered in; observing again requires a new tracking scope.
//
// # Thread Safety
//
// Registrars may be read and mutated from any goroutine. Each goroutine has
// its own tracking context, so concurrent scopes never see each other's
// reads. Nested scopes on one goroutine restore the outer scope on exit and
// fold their reads into it. A goroutine started inside a computation is not
// part of the scope.
//
// # Instrumentation
//
// SetLogger enables debug tracing through log/slog, EnableMetrics registers
// Prometheus metrics, and TrackContext records OpenTelemetry spans.
package observation
