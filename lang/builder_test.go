package lang

import (
	"sync"
	"testing"
)

func TestSiteIDsDistinct(t *testing.T) {
	a := New("T")
	b := New("T")
	if a.Pos == b.Pos {
		t.Error("two allocations must get distinct site ids")
	}
}

func TestSiteIDsDistinctAcrossGoroutines(t *testing.T) {
	const n = 64
	pos := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pos <- New("T").Pos
		}()
	}
	wg.Wait()
	close(pos)
	seen := make(map[int]bool)
	for p := range pos {
		if seen[p] {
			t.Fatalf("site id %d handed out twice", p)
		}
		seen[p] = true
	}
}
