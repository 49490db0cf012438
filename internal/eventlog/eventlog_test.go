package eventlog

import "testing"

func TestLogAppendAndSnapshotOrdering(t *testing.T) {
	l := New(3)
	l.Append(0.1, KindIgnition, nil)
	l.Append(0.2, KindShutdown, nil)
	snap := l.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 events, got %d", len(snap))
	}
	if snap[0].Kind != KindIgnition || snap[1].Kind != KindShutdown {
		t.Errorf("unexpected ordering: %+v", snap)
	}
}

func TestLogOverwritesOldestOnOverflow(t *testing.T) {
	l := New(2)
	l.Append(0.1, KindIgnition, nil)
	l.Append(0.2, KindShutdown, nil)
	l.Append(0.3, KindScram, nil)

	snap := l.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected buffer capped at 2, got %d", len(snap))
	}
	if snap[0].Kind != KindShutdown || snap[1].Kind != KindScram {
		t.Errorf("expected oldest entry overwritten, got %+v", snap)
	}
}

func TestSnapshotIsDefensiveCopy(t *testing.T) {
	l := New(4)
	l.Append(0.0, KindBrownout, map[string]float64{"shed": 1})
	snap := l.Snapshot()
	snap[0].Payload["shed"] = 99

	second := l.Snapshot()
	if second[0].Payload["shed"] != 1 {
		t.Errorf("mutating a returned snapshot must not affect the log, got %v", second[0].Payload["shed"])
	}
}

func TestLogLen(t *testing.T) {
	l := New(3)
	if l.Len() != 0 {
		t.Fatalf("expected empty log, got len %d", l.Len())
	}
	l.Append(0, KindIgnition, nil)
	l.Append(0, KindShutdown, nil)
	if l.Len() != 2 {
		t.Errorf("expected len 2, got %d", l.Len())
	}
	l.Append(0, KindScram, nil)
	l.Append(0, KindScram, nil)
	if l.Len() != 3 {
		t.Errorf("expected len capped at capacity 3, got %d", l.Len())
	}
}
