// Package outputs provides the bounded per-run store of node results.
// Entries are keyed by node id (plus a few pseudo-keys such as the trigger
// input) and evicted least-recently-used when capacity is exceeded.
// Persistent entries are exempt from eviction. The store belongs to exactly
// one run and is only mutated by that run's coordinator, so it needs no
// locking.
package outputs

import (
	"container/list"
	"time"
)

const DefaultCapacity = 100

// Pseudo-keys written by the coordinator alongside node outputs.
const (
	KeyTrigger = "__trigger"
	KeyInput   = "__input"
)

type entry struct {
	key        string
	value      any
	lastAccess time.Time
	persistent bool
}

// Stats exposes the store's counters for operational visibility.
type Stats struct {
	Size      int   `json:"size"`
	Capacity  int   `json:"capacity"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// Store is a fixed-capacity key/value cache of per-node results.
type Store struct {
	capacity  int
	entries   map[string]*list.Element
	order     *list.List // front = most recently used
	hits      int64
	misses    int64
	evictions int64
}

// NewStore creates a store with the given capacity. Non-positive capacities
// fall back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Store{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the stored value for key. A miss is counted whether the key
// was never written or was evicted; the caller cannot tell the difference,
// which is why the coordinator errors explicitly on evicted upstream nodes.
func (s *Store) Get(key string) (any, bool) {
	elem, ok := s.entries[key]
	if !ok {
		s.misses++

		return nil, false
	}

	s.hits++

	ent, _ := elem.Value.(*entry)
	ent.lastAccess = time.Now().UTC()
	s.order.MoveToFront(elem)

	return ent.value, true
}

// Set writes a value, evicting the least-recently-used non-persistent entry
// when the store is full. Persistent entries are never evicted.
func (s *Store) Set(key string, value any, persistent bool) {
	if elem, ok := s.entries[key]; ok {
		ent, _ := elem.Value.(*entry)
		ent.value = value
		ent.persistent = ent.persistent || persistent
		ent.lastAccess = time.Now().UTC()
		s.order.MoveToFront(elem)

		return
	}

	if len(s.entries) >= s.capacity {
		s.evictOldest()
	}

	ent := &entry{
		key:        key,
		value:      value,
		lastAccess: time.Now().UTC(),
		persistent: persistent,
	}
	s.entries[key] = s.order.PushFront(ent)
}

// Warm bulk-inserts replayed node outputs, used when resuming a waiting run.
func (s *Store) Warm(values map[string]any) {
	for key, value := range values {
		s.Set(key, value, false)
	}
}

// Clear drops all entries. Called when the run reaches a terminal state.
func (s *Store) Clear() {
	s.entries = make(map[string]*list.Element, s.capacity)
	s.order.Init()
}

// Len returns the current number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Capacity returns the configured capacity.
func (s *Store) Capacity() int {
	return s.capacity
}

// Stats returns a snapshot of the store counters.
func (s *Store) Stats() Stats {
	return Stats{
		Size:      len(s.entries),
		Capacity:  s.capacity,
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
	}
}

func (s *Store) evictOldest() {
	for elem := s.order.Back(); elem != nil; elem = elem.Prev() {
		ent, _ := elem.Value.(*entry)
		if ent.persistent {
			continue
		}

		s.order.Remove(elem)
		delete(s.entries, ent.key)
		s.evictions++

		return
	}
	// Every entry is persistent: the store grows past capacity rather than
	// dropping the trigger input.
}
