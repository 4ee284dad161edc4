package reconciler

import (
	"context"
	"testing"
	"time"
)

// TestRunDebouncesRapidStructuralWrites exercises the full event loop: a
// rebuild-triggering write arms the debounce timer, a second write shortly
// after re-arms it, and build() only runs once the store goes quiet.
func TestRunDebouncesRapidStructuralWrites(t *testing.T) {
	seed := map[string]string{
		"cns/N/name":         "N",
		"cns/N/orchestrator": "bysystem",
	}
	e, fake := newTestEngine(seed)
	e.WithDebounceDelay(30 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	if err := fake.Put(context.Background(), "cns/N/nodes/A/contexts/X/provider/p1/version", "1"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	time.Sleep(15 * time.Millisecond)
	if err := fake.Put(context.Background(), "cns/N/nodes/B/contexts/X/consumer/p1/version", "1"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	time.Sleep(150 * time.Millisecond)

	conns := filterKeys(t, fake, "cns/N/nodes/A/contexts/X/provider/p1/connections/*/consumer")
	if len(conns) != 1 {
		t.Errorf("expected one connection after quiescence, got %d", len(conns))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() returned %v, want nil on cancellation", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}
