package suspect

import (
	"testing"

	"github.com/vango-dev/observation/internal/errors"
	"github.com/vango-dev/observation/pkg/observation"
)

func TestSuspectAccessors(t *testing.T) {
	s := New("glib", "Glib Butler", 33)

	if s.ID() != "glib" || s.Name() != "Glib Butler" || s.Suspiciousness() != 33 {
		t.Fatalf("unexpected suspect %+v", s.Snapshot())
	}

	s.SetName("Glib")
	s.SetSuspiciousness(2)
	if got := s.Snapshot(); got != (Snapshot{ID: "glib", Name: "Glib", Suspiciousness: 2}) {
		t.Errorf("Snapshot() = %+v", got)
	}

	if old := s.SwapSuspiciousness(5); old != 2 {
		t.Errorf("SwapSuspiciousness() = %d, want 2", old)
	}
	if s.Suspiciousness() != 5 {
		t.Errorf("Suspiciousness() = %d, want 5", s.Suspiciousness())
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{0, "Report on Jimmy: A totally boring person"},
		{3, "Report on Jimmy: They're probably a criminal"},
		{7, "Report on Jimmy: My money's on them being a criminal"},
		{8, "Report on Jimmy: HELP I'M TRAPPED IN A SUSPICIOUSNESS FACTORY"},
		{-1, "Report on Jimmy: HELP I'M TRAPPED IN A SUSPICIOUSNESS FACTORY"},
	}

	for _, tt := range tests {
		s := New("jimmy", "Jimmy", tt.level)
		if got := s.Report(); got != tt.want {
			t.Errorf("Report() at level %d = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestHeadlineDependsOnNameOnly(t *testing.T) {
	s := New("jimmy", "Jimmy The Shrimp", 0)

	fired := 0
	headline := observation.WithObservationTracking(s.Headline, func() { fired++ })
	if headline != "Report on Jimmy The Shrimp" {
		t.Fatalf("Headline() = %q", headline)
	}

	s.SetSuspiciousness(10)
	if fired != 0 {
		t.Fatal("headline must not be invalidated by suspiciousness")
	}

	s.SetName("Jim Shrimp")
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}

func TestReportDependsOnBothProperties(t *testing.T) {
	s := New("glib", "Glib Butler", 33)

	fired := 0
	o := observation.Track(func() { _ = s.Report() }, func() { fired++ })
	if o.Dependencies() != 2 {
		t.Fatalf("Dependencies() = %d, want 2", o.Dependencies())
	}

	s.SetSuspiciousness(1)
	s.SetName("Glib")
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
	if n := s.Registrar().WatchCount(); n != 0 {
		t.Errorf("WatchCount() = %d, want 0", n)
	}
}

func TestStore(t *testing.T) {
	store := Seed()

	list := store.List()
	if len(list) != 2 || list[0].ID() != "glib" || list[1].ID() != "jimmy" {
		t.Fatalf("List() returned %d suspects in the wrong order", len(list))
	}

	glib, err := store.Get("glib")
	if err != nil || glib.Name() != "Glib Butler" {
		t.Fatalf("Get(glib) = %v, %v", glib, err)
	}

	if _, err := store.Get("nobody"); !errors.HasCode(err, "E220") {
		t.Errorf("Get(nobody) error = %v, want E220", err)
	}

	if err := store.Add(New("glib", "Other", 0)); !errors.HasCode(err, "E222") {
		t.Errorf("duplicate Add error = %v, want E222", err)
	}
	if err := store.Add(New("x", "X", 0)); err != nil {
		t.Errorf("Add(x) error = %v", err)
	}
	if len(store.List()) != 3 {
		t.Errorf("List() len = %d, want 3", len(store.List()))
	}
}

func TestStable(t *testing.T) {
	s := New("jimmy", "Jimmy The Shrimp", 10)

	if !s.Stable(func() { s.Report() }) {
		t.Error("read without mutation should be stable")
	}

	if s.Stable(func() { s.SetName("Jim") }) {
		t.Error("read overlapping a mutation should not be stable")
	}

	// A change callback runs before the body, so a read inside it overlaps
	// the mutation that triggered it.
	var inside bool
	observation.Track(func() { s.Name() }, func() {
		inside = s.Stable(func() { s.Name() })
	})
	s.SetName("Jimmy")
	if inside {
		t.Error("read inside a change callback should not be stable")
	}

	if !s.Stable(func() { s.Name() }) {
		t.Error("read after the mutation finished should be stable")
	}
}
