package chat

import (
	"fmt"
	"reflect"
	"testing"
)

func TestPresenceInsertionOrder(t *testing.T) {
	t.Parallel()

	p := newPresenceRegistry()
	for i := 1; i <= 4; i++ {
		p.Add(fmt.Sprintf("conn-%d", i), UserRef{ID: fmt.Sprintf("u%d", i), Username: fmt.Sprintf("user%d", i), Avatar: "U"})
	}

	snap := p.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("Snapshot() length = %d, want 4", len(snap))
	}
	for i, ref := range snap {
		want := fmt.Sprintf("u%d", i+1)
		if ref.ID != want {
			t.Errorf("Snapshot()[%d].ID = %q, want %q (join order)", i, ref.ID, want)
		}
	}
}

func TestPresenceRemove(t *testing.T) {
	t.Parallel()

	p := newPresenceRegistry()
	p.Add("conn-1", UserRef{ID: "u1"})
	p.Add("conn-2", UserRef{ID: "u2"})
	p.Add("conn-3", UserRef{ID: "u3"})

	entry, ok := p.Remove("conn-2")
	if !ok {
		t.Fatal("Remove(conn-2) reported not found")
	}
	if entry.User.ID != "u2" {
		t.Errorf("removed entry ID = %q, want u2", entry.User.ID)
	}

	if _, ok := p.Remove("conn-2"); ok {
		t.Error("Remove(conn-2) twice should report not found")
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}

	snap := p.Snapshot()
	if len(snap) != 2 || snap[0].ID != "u1" || snap[1].ID != "u3" {
		t.Errorf("Snapshot() after removal = %v, want [u1 u3]", snap)
	}
}

func TestPresenceSnapshotIdempotent(t *testing.T) {
	t.Parallel()

	p := newPresenceRegistry()
	p.Add("conn-1", UserRef{ID: "u1", Username: "alpha"})
	p.Add("conn-2", UserRef{ID: "u2", Username: "beta"})

	first := p.Snapshot()
	second := p.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("consecutive snapshots differ: %v vs %v", first, second)
	}
}

func TestPresenceAddExistingKeepsPosition(t *testing.T) {
	t.Parallel()

	p := newPresenceRegistry()
	p.Add("conn-1", UserRef{ID: "u1", Username: "old"})
	p.Add("conn-2", UserRef{ID: "u2"})
	p.Add("conn-1", UserRef{ID: "u1", Username: "new"})

	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}

	snap := p.Snapshot()
	if snap[0].Username != "new" {
		t.Errorf("Snapshot()[0].Username = %q, want the replacement entry first", snap[0].Username)
	}
}

func TestPresenceGet(t *testing.T) {
	t.Parallel()

	p := newPresenceRegistry()
	p.Add("conn-1", UserRef{ID: "u1"})

	if entry, ok := p.Get("conn-1"); !ok || entry.User.ID != "u1" {
		t.Errorf("Get(conn-1) = %v, %v", entry, ok)
	}
	if _, ok := p.Get("conn-9"); ok {
		t.Error("Get(conn-9) should report not found")
	}
}
