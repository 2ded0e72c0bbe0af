package model

import "sync"

type requestKind string

const (
	kindFetch  requestKind = "fetch"
	kindSave   requestKind = "save"
	kindDelete requestKind = "delete"
)

// inFlightTracker counts outstanding requests per kind. Counters never go
// negative: a release is idempotent and decrements saturate at zero, so a
// failure path can never strand an instance "in flight" or corrupt the
// shared state when identical operations overlap.
type inFlightTracker struct {
	mu     sync.Mutex
	counts map[requestKind]int
}

// acquire registers one in-flight request of the given kind and returns its
// release. The release is safe to call more than once; only the first call
// decrements.
func (t *inFlightTracker) acquire(kind requestKind) func() {
	t.mu.Lock()
	if t.counts == nil {
		t.counts = make(map[requestKind]int, 3)
	}
	t.counts[kind]++
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			if t.counts[kind] > 0 {
				t.counts[kind]--
			}
			t.mu.Unlock()
		})
	}
}

func (t *inFlightTracker) count(kind requestKind) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[kind]
}

func (t *inFlightTracker) total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	sum := 0
	for _, count := range t.counts {
		sum += count
	}
	return sum
}
