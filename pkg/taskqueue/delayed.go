package taskqueue

import "time"

// delayedEntry is a task scheduled to run at or after fireAt.
type delayedEntry struct {
	fireAt time.Time
	seq    uint64
	task   Task
	// index is used by heap.Interface methods.
	index int
}

// delayedHeap implements heap.Interface ordered by (fireAt, seq).
type delayedHeap []*delayedEntry

func (h delayedHeap) Len() int { return len(h) }

func (h delayedHeap) Less(i, j int) bool {
	if !h[i].fireAt.Equal(h[j].fireAt) {
		return h[i].fireAt.Before(h[j].fireAt)
	}
	// Deterministic tie-breaker: earlier posted task first.
	return h[i].seq < h[j].seq
}

func (h delayedHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *delayedHeap) Push(x any) {
	entry := x.(*delayedEntry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

func (h *delayedHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil   // avoid memory leak
	entry.index = -1 // for safety
	*h = old[0 : n-1]
	return entry
}

// peek returns the earliest entry without removing it.
// Returns nil if the heap is empty.
func (h delayedHeap) peek() *delayedEntry {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}
