package reassembly

import (
	"context"
	"sync"
	"time"
)

// FragmentStore buffers parts until a message is complete. Append returns
// the ordered part texts and true on the call that completes the set, at
// which point the fragments are discarded from the store.
type FragmentStore interface {
	Append(ctx context.Context, part Part) ([]string, bool, error)
}

type memoryEntry struct {
	texts    map[int]string
	total    int
	lastSeen time.Time
}

// MemoryStore is the single-instance FragmentStore. Entries older than TTL
// are dropped lazily on access; a message whose remaining parts never
// arrive does not accumulate forever.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
	}
}

func (s *MemoryStore) Append(ctx context.Context, part Part) ([]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	key := part.key()
	e, ok := s.entries[key]
	if ok && s.ttl > 0 && now.Sub(e.lastSeen) > s.ttl {
		delete(s.entries, key)
		ok = false
	}
	if !ok {
		e = &memoryEntry{texts: make(map[int]string, part.Total), total: part.Total}
		s.entries[key] = e
	}
	e.texts[part.Index] = part.Text
	e.lastSeen = now

	if len(e.texts) < e.total {
		return nil, false, nil
	}

	texts := make([]string, e.total)
	for i := 1; i <= e.total; i++ {
		texts[i-1] = e.texts[i]
	}
	delete(s.entries, key)
	return texts, true, nil
}

// Pending reports how many incomplete messages are buffered.
func (s *MemoryStore) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
