package memengine

import "container/heap"

// mapHeapEntry is one element of a mapHeap: a key with its priority.
type mapHeapEntry[K comparable] struct {
	key      K
	priority float64
	index    int
}

// mapHeap is a min-heap over keys of type K ordered by a float64 priority,
// with O(log n) removal and lookup by key via an index map. It backs both
// the collection-level oldest-list queue and a list's oldest-item index.
type mapHeap[K comparable] struct {
	entries []*mapHeapEntry[K]
	index   map[K]*mapHeapEntry[K]
}

// newMapHeap returns an empty heap.
func newMapHeap[K comparable]() *mapHeap[K] {
	h := &mapHeap[K]{
		entries: make([]*mapHeapEntry[K], 0),
		index:   make(map[K]*mapHeapEntry[K]),
	}
	heap.Init(h)
	return h
}

func (h *mapHeap[K]) Len() int { return len(h.entries) }

func (h *mapHeap[K]) Less(i, j int) bool {
	return h.entries[i].priority < h.entries[j].priority
}

func (h *mapHeap[K]) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.entries[i].index = i
	h.entries[j].index = j
}

func (h *mapHeap[K]) Push(x any) {
	entry := x.(*mapHeapEntry[K])
	entry.index = len(h.entries)
	h.entries = append(h.entries, entry)
}

func (h *mapHeap[K]) Pop() any {
	n := len(h.entries)
	entry := h.entries[n-1]
	h.entries[n-1] = nil
	h.entries = h.entries[:n-1]
	return entry
}

// AddItem inserts key with priority, or updates its priority if key is
// already present.
func (h *mapHeap[K]) AddItem(key K, priority float64) {
	if entry, ok := h.index[key]; ok {
		entry.priority = priority
		heap.Fix(h, entry.index)
		return
	}
	entry := &mapHeapEntry[K]{key: key, priority: priority}
	h.index[key] = entry
	heap.Push(h, entry)
}

// RemoveByKey removes key from the heap, reporting whether it was present.
func (h *mapHeap[K]) RemoveByKey(key K) bool {
	entry, ok := h.index[key]
	if !ok {
		return false
	}
	heap.Remove(h, entry.index)
	delete(h.index, key)
	return true
}

// Peek returns the minimum-priority key without removing it.
func (h *mapHeap[K]) Peek() (key K, priority float64, ok bool) {
	if len(h.entries) == 0 {
		return key, 0, false
	}
	top := h.entries[0]
	return top.key, top.priority, true
}

// Contains reports whether key is present in the heap.
func (h *mapHeap[K]) Contains(key K) bool {
	_, ok := h.index[key]
	return ok
}

// GetByKey returns the priority stored for key.
func (h *mapHeap[K]) GetByKey(key K) (priority float64, ok bool) {
	entry, ok := h.index[key]
	if !ok {
		return 0, false
	}
	return entry.priority, true
}
