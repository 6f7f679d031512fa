package suspect

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/observation/pkg/observation"
)

// Property identifiers, shared by every Suspect.
var (
	NameProperty           = observation.NewProperty("Suspect.name")
	SuspiciousnessProperty = observation.NewProperty("Suspect.suspiciousness")
)

// Suspect is an observable person of interest.
type Suspect struct {
	registrar observation.Registrar

	id string

	mu             sync.RWMutex
	name           string
	suspiciousness int

	// begun counts mutations that have announced a change, finished those
	// whose body has returned. They are equal when no setter is in flight.
	begun    atomic.Uint64
	finished atomic.Uint64
}

// New creates a suspect.
func New(id, name string, suspiciousness int) *Suspect {
	return &Suspect{id: id, name: name, suspiciousness: suspiciousness}
}

// ID returns the suspect's store key. It is immutable and not observed.
func (s *Suspect) ID() string {
	return s.id
}

// Name returns the suspect's name.
func (s *Suspect) Name() string {
	s.registrar.Access(NameProperty)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// SetName changes the suspect's name.
func (s *Suspect) SetName(name string) {
	s.begin()
	defer s.end()
	s.registrar.WithMutation(NameProperty, func() {
		s.mu.Lock()
		s.name = name
		s.mu.Unlock()
	})
}

// Suspiciousness returns how suspicious the suspect is.
func (s *Suspect) Suspiciousness() int {
	s.registrar.Access(SuspiciousnessProperty)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suspiciousness
}

// SetSuspiciousness changes how suspicious the suspect is.
func (s *Suspect) SetSuspiciousness(v int) {
	s.begin()
	defer s.end()
	s.registrar.WithMutation(SuspiciousnessProperty, func() {
		s.mu.Lock()
		s.suspiciousness = v
		s.mu.Unlock()
	})
}

// SwapSuspiciousness stores v and returns the previous value.
func (s *Suspect) SwapSuspiciousness(v int) int {
	s.begin()
	defer s.end()
	return observation.Mutate(&s.registrar, SuspiciousnessProperty, func() int {
		s.mu.Lock()
		defer s.mu.Unlock()
		old := s.suspiciousness
		s.suspiciousness = v
		return old
	})
}

func (s *Suspect) begin() { s.begun.Add(1) }
func (s *Suspect) end()   { s.finished.Add(1) }

// Stable runs read and reports whether no mutation of s overlapped it.
//
// Change callbacks run before the new value is stored, so a reader woken by
// one may still see the old value. A reader that tracks under Stable and gets
// false must render again instead of waiting for the next change.
func (s *Suspect) Stable(read func()) bool {
	before := s.finished.Load()
	read()
	return s.begun.Load() == before
}

// Registrar exposes the suspect's registrar for diagnostics.
func (s *Suspect) Registrar() *observation.Registrar {
	return &s.registrar
}

// Snapshot is a plain copy of a suspect's state.
type Snapshot struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Suspiciousness int    `json:"suspiciousness"`
}

// Snapshot reads both properties.
func (s *Suspect) Snapshot() Snapshot {
	return Snapshot{
		ID:             s.id,
		Name:           s.Name(),
		Suspiciousness: s.Suspiciousness(),
	}
}

// Headline renders a view that depends on the name only.
func (s *Suspect) Headline() string {
	return fmt.Sprintf("Report on %s", s.Name())
}

// Report renders a view that depends on both properties.
func (s *Suspect) Report() string {
	return fmt.Sprintf("%s: %s", s.Headline(), Verdict(s.Suspiciousness()))
}

// Verdict describes a suspiciousness level.
func Verdict(suspiciousness int) string {
	switch suspiciousness {
	case 0:
		return "A totally boring person"
	case 1:
		return "Something about them seems off"
	case 2:
		return "They're definitely hiding something"
	case 3:
		return "They're probably a criminal"
	case 4:
		return "They're definitely a criminal"
	case 5:
		return "Man, they're so criminal"
	case 6:
		return "I'd be shocked if they weren't a criminal"
	case 7:
		return "My money's on them being a criminal"
	default:
		return "HELP I'M TRAPPED IN A SUSPICIOUSNESS FACTORY"
	}
}
