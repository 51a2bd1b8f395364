package presence

import "testing"

type fakeHandle struct {
	id string
}

func (f *fakeHandle) HandleID() string { return f.id }

func TestRegisterAndLookup(t *testing.T) {
	s := New()
	h := &fakeHandle{id: "conn-1"}

	s.Register("alice", h)

	got, ok := s.Lookup("alice")
	if !ok {
		t.Fatal("expected alice to be registered")
	}
	if got.HandleID() != "conn-1" {
		t.Errorf("Lookup handle = %s, want conn-1", got.HandleID())
	}

	identity, ok := s.ReverseLookup("conn-1")
	if !ok || identity != "alice" {
		t.Errorf("ReverseLookup = (%s, %v), want (alice, true)", identity, ok)
	}
}

func TestRegisterIdempotent(t *testing.T) {
	s := New()
	h := &fakeHandle{id: "conn-1"}

	s.Register("alice", h)
	s.Register("alice", h)

	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if identity, ok := s.ReverseLookup("conn-1"); !ok || identity != "alice" {
		t.Errorf("ReverseLookup = (%s, %v), want (alice, true)", identity, ok)
	}
}

func TestLatestJoinWins(t *testing.T) {
	s := New()
	old := &fakeHandle{id: "conn-old"}
	fresh := &fakeHandle{id: "conn-new"}

	s.Register("alice", old)
	s.Register("alice", fresh)

	got, ok := s.Lookup("alice")
	if !ok || got.HandleID() != "conn-new" {
		t.Fatalf("Lookup = %v, want conn-new", got)
	}

	// the stale handle must no longer resolve, so a late disconnect of
	// the old connection cannot evict the new mapping
	if _, ok := s.ReverseLookup("conn-old"); ok {
		t.Error("stale handle still resolves after re-join")
	}
	if identity, ok := s.ReverseLookup("conn-new"); !ok || identity != "alice" {
		t.Errorf("ReverseLookup(conn-new) = (%s, %v), want (alice, true)", identity, ok)
	}
}

func TestRemove(t *testing.T) {
	s := New()
	s.Register("alice", &fakeHandle{id: "conn-1"})

	s.Remove("alice")

	if _, ok := s.Lookup("alice"); ok {
		t.Error("alice still present after Remove")
	}
	if _, ok := s.ReverseLookup("conn-1"); ok {
		t.Error("conn-1 still resolves after Remove")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	s := New()
	s.Register("alice", &fakeHandle{id: "conn-1"})

	s.Remove("bob")

	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestLookupNotFound(t *testing.T) {
	s := New()

	if _, ok := s.Lookup("nobody"); ok {
		t.Error("Lookup returned ok for unknown identity")
	}
	if _, ok := s.ReverseLookup("no-conn"); ok {
		t.Error("ReverseLookup returned ok for unknown handle")
	}
}
