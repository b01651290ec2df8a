package errz

import (
	"strings"
	"testing"
)

func TestSnapshotCapBounded(t *testing.T) {
	e := New(TypeError, "boom")
	for i := 0; i < MaxSnapshots+5; i++ {
		e.PushSnapshot(Snapshot{Filename: "f", Line: i, Source: "x"})
	}
	if len(e.Snapshots) != MaxSnapshots {
		t.Fatalf("expected snapshots capped at %d, got %d", MaxSnapshots, len(e.Snapshots))
	}
}

func TestCorrelationIDUniquePerError(t *testing.T) {
	a := New(ValueError, "a")
	b := New(ValueError, "b")
	if a.CorrelationID == "" || b.CorrelationID == "" {
		t.Fatalf("expected non-empty correlation ids")
	}
	if a.CorrelationID == b.CorrelationID {
		t.Fatalf("expected distinct correlation ids per error instance")
	}
}

func TestTracebackIncludesCorrelationIDAndSnapshots(t *testing.T) {
	e := New(KeyError, "missing")
	e.PushSnapshot(Snapshot{Filename: "main.dusk", Line: 3, Source: "d[k]"})
	tb := e.Traceback()
	if len(tb) == 0 {
		t.Fatalf("expected non-empty traceback")
	}
	if !strings.Contains(tb, e.CorrelationID) {
		t.Fatalf("expected traceback to include correlation id %q, got %q", e.CorrelationID, tb)
	}
	if tb[len(tb)-len(e.Snapshots[0].String()):] != e.Snapshots[0].String() {
		t.Fatalf("expected traceback to end with the innermost snapshot, got %q", tb)
	}
}
