package observation

import (
	"sync"
	"sync/atomic"
	"testing"
)

var (
	nameProperty           = NewProperty("suspect.name")
	suspiciousnessProperty = NewProperty("suspect.suspiciousness")
)

// testSuspect is a minimal observable object.
type testSuspect struct {
	registrar Registrar

	mu             sync.Mutex
	name           string
	suspiciousness int
}

func newTestSuspect(name string, suspiciousness int) *testSuspect {
	return &testSuspect{name: name, suspiciousness: suspiciousness}
}

func (s *testSuspect) Name() string {
	s.registrar.Access(nameProperty)
	return s.peekName()
}

func (s *testSuspect) peekName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *testSuspect) SetName(name string) {
	s.registrar.WithMutation(nameProperty, func() {
		s.mu.Lock()
		s.name = name
		s.mu.Unlock()
	})
}

func (s *testSuspect) Suspiciousness() int {
	s.registrar.Access(suspiciousnessProperty)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suspiciousness
}

func (s *testSuspect) SetSuspiciousness(v int) {
	s.registrar.WithMutation(suspiciousnessProperty, func() {
		s.mu.Lock()
		s.suspiciousness = v
		s.mu.Unlock()
	})
}

// counter counts onChange invocations.
type counter struct {
	n atomic.Int32
}

func (c *counter) inc() {
	c.n.Add(1)
}

func (c *counter) get() int {
	return int(c.n.Load())
}

func expectCount(t *testing.T, c *counter, want int) {
	t.Helper()
	if got := c.get(); got != want {
		t.Fatalf("onChange ran %d times, want %d", got, want)
	}
}

func expectWatches(t *testing.T, s *testSuspect, want int) {
	t.Helper()
	if got := s.registrar.WatchCount(); got != want {
		t.Fatalf("registrar has %d watches, want %d", got, want)
	}
}

// recoverPanic runs fn and returns the value it panicked with, if any.
func recoverPanic(fn func()) (rec any) {
	defer func() {
		rec = recover()
	}()
	fn()
	return nil
}
