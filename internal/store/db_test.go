package store

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.CreateSchema(); err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	return s
}

// TestListLinkEvents_NoSchema_ReturnsErrNotInitialized verifies that listing
// on a fresh DB (no CreateSchema) returns ErrNotInitialized.
func TestListLinkEvents_NoSchema_ReturnsErrNotInitialized(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	_, err = s.ListLinkEvents("", 0)
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ListLinkEvents() error = %v; want ErrNotInitialized", err)
	}

	_, err = s.LatestLinkEvent("/work")
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("LatestLinkEvent() error = %v; want ErrNotInitialized", err)
	}
}

func TestErrNotInitialized_ErrorMessage(t *testing.T) {
	if !strings.Contains(ErrNotInitialized.Error(), "envlink link") {
		t.Errorf("ErrNotInitialized message %q should mention 'envlink link'", ErrNotInitialized.Error())
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateSchema(); err != nil {
		t.Fatalf("second CreateSchema() failed: %v", err)
	}
}

func TestInsertAndListLinkEvents(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	events := []*LinkEvent{
		{ProjectDir: "/work/a", LinkPath: "/work/a/venv", Target: "/envs/a-1", CreatedAt: base},
		{ProjectDir: "/work/b", LinkPath: "/work/b/venv", Target: "/envs/b-1", CreatedAt: base.Add(time.Minute)},
		{ProjectDir: "/work/a", LinkPath: "/work/a/venv", Target: "/envs/a-2", PreviousTarget: "/envs/a-1", ToolVersion: "1.8.2", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range events {
		id, err := s.InsertLinkEvent(e)
		if err != nil {
			t.Fatalf("InsertLinkEvent() failed: %v", err)
		}
		if id == 0 || e.ID != id {
			t.Errorf("expected ID to be set, got id=%d event.ID=%d", id, e.ID)
		}
	}

	all, err := s.ListLinkEvents("", 0)
	if err != nil {
		t.Fatalf("ListLinkEvents() failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].Target != "/envs/a-2" {
		t.Errorf("expected newest first, got %s", all[0].Target)
	}

	projectA, err := s.ListLinkEvents("/work/a", 0)
	if err != nil {
		t.Fatalf("ListLinkEvents(/work/a) failed: %v", err)
	}
	if len(projectA) != 2 {
		t.Fatalf("expected 2 events for /work/a, got %d", len(projectA))
	}
	if projectA[0].PreviousTarget != "/envs/a-1" || projectA[0].ToolVersion != "1.8.2" {
		t.Errorf("unexpected newest event: %+v", projectA[0])
	}
	if !projectA[1].CreatedAt.Equal(base) {
		t.Errorf("created_at round trip: got %v want %v", projectA[1].CreatedAt, base)
	}

	limited, err := s.ListLinkEvents("", 1)
	if err != nil {
		t.Fatalf("ListLinkEvents(limit=1) failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 event with limit, got %d", len(limited))
	}
}

func TestLatestLinkEvent(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.LatestLinkEvent("/work/a"); !errors.Is(err, ErrNoEvents) {
		t.Fatalf("expected ErrNoEvents, got %v", err)
	}

	now := time.Now()
	for i, target := range []string{"/envs/one", "/envs/two"} {
		_, err := s.InsertLinkEvent(&LinkEvent{
			ProjectDir: "/work/a",
			LinkPath:   "/work/a/venv",
			Target:     target,
			CreatedAt:  now.Add(time.Duration(i) * time.Millisecond),
		})
		if err != nil {
			t.Fatalf("InsertLinkEvent() failed: %v", err)
		}
	}

	latest, err := s.LatestLinkEvent("/work/a")
	if err != nil {
		t.Fatalf("LatestLinkEvent() failed: %v", err)
	}
	if latest.Target != "/envs/two" {
		t.Errorf("expected /envs/two, got %s", latest.Target)
	}
}

func TestInsertLinkEvent_DefaultsCreatedAt(t *testing.T) {
	s := newTestStore(t)
	event := &LinkEvent{ProjectDir: "/work", LinkPath: "/work/venv", Target: "/envs/x"}

	if _, err := s.InsertLinkEvent(event); err != nil {
		t.Fatalf("InsertLinkEvent() failed: %v", err)
	}
	if event.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be filled in")
	}

	count, err := s.CountLinkEvents()
	if err != nil {
		t.Fatalf("CountLinkEvents() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 event, got %d", count)
	}
}
