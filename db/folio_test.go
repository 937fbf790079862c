package db

import "testing"

// counterSim walks the folio allocation the way the creation transaction
// does: read the counter (or seed it), hand out the folio, advance.
type counterSim struct {
	next      *int
	maxStored *int
	base      int
}

func (c *counterSim) allocate() int {
	folio := nextFolio(c.next, c.maxStored, c.base)
	advanced := folio + 1
	c.next = &advanced
	return folio
}

func TestNextFolio_EmptyStore(t *testing.T) {
	if got := nextFolio(nil, nil, 300); got != 300 {
		t.Errorf("nextFolio = %d, want base 300", got)
	}
}

func TestNextFolio_SeedsFromMax(t *testing.T) {
	max := 457
	if got := nextFolio(nil, &max, 300); got != 458 {
		t.Errorf("nextFolio = %d, want 458", got)
	}
}

func TestNextFolio_CounterWins(t *testing.T) {
	next, max := 500, 457
	if got := nextFolio(&next, &max, 300); got != 500 {
		t.Errorf("nextFolio = %d, want counter value 500", got)
	}
}

// Three creations yield 300, 301, 302; folios are never reused, so after
// deleting one report the next creation still yields 303.
func TestFolioSequence(t *testing.T) {
	sim := &counterSim{base: 300}

	want := []int{300, 301, 302}
	for i, w := range want {
		if got := sim.allocate(); got != w {
			t.Fatalf("allocation %d = %d, want %d", i, got, w)
		}
	}

	// Deleting report 301 does not touch the counter.
	if got := sim.allocate(); got != 303 {
		t.Errorf("post-delete allocation = %d, want 303", got)
	}
}

// Each allocation is strictly greater than every folio seen before it.
func TestFolioMonotonic(t *testing.T) {
	sim := &counterSim{base: 300}
	prev := -1
	for i := 0; i < 50; i++ {
		got := sim.allocate()
		if got <= prev {
			t.Fatalf("allocation %d = %d, not greater than %d", i, got, prev)
		}
		prev = got
	}
}
