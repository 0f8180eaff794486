//go:build linux

package perf

import "testing"

// TestGroup_SoftwareCounters opens the software group and measures a spin
// loop. Skips when the kernel denies perf_event_open (common in containers
// and under strict perf_event_paranoid).
func TestGroup_SoftwareCounters(t *testing.T) {
	groups := Groups()
	if len(groups) == 0 {
		t.Fatal("no event groups on linux")
	}
	g, err := Open(groups[0])
	if err != nil {
		t.Skipf("perf_event_open unavailable: %v", err)
	}
	defer g.Close()

	if err := g.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := g.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	sink := 0
	for i := 0; i < 1_000_000; i++ {
		sink += i
	}
	if err := g.Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	_ = sink

	counts, err := g.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(counts) != len(groups[0]) {
		t.Fatalf("got %d counts, want %d", len(counts), len(groups[0]))
	}
	for _, c := range counts {
		if c.Desc == "" {
			t.Errorf("count with empty description: %+v", c)
		}
	}
}

func TestGroups_Shape(t *testing.T) {
	groups := Groups()
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if len(groups[0]) != 3 || len(groups[1]) != 5 {
		t.Errorf("group sizes = %d, %d; want 3, 5", len(groups[0]), len(groups[1]))
	}
}
