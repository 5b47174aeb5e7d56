package scriptbridge

import (
	"container/heap"
	"time"

	"github.com/dop251/goja"
)

// pendingTimer is one scheduled callback, ordered by (fireAt, id) per
// spec §5's tie-break rule.
type pendingTimer struct {
	id     uint32
	fireAt time.Time
	cb     goja.Callable
}

type timerHeap []*pendingTimer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].fireAt.Equal(h[j].fireAt) {
		return h[i].id < h[j].id
	}
	return h[i].fireAt.Before(h[j].fireAt)
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)   { *h = append(*h, x.(*pendingTimer)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// timerQueue is spec §4.7's setTimeout/pump min-heap.
type timerQueue struct {
	heap   timerHeap
	nextID uint32
}

// schedule pushes a new pending timer and returns its monotonically
// increasing id.
func (q *timerQueue) schedule(now time.Time, delayMs int, cb goja.Callable) uint32 {
	q.nextID++
	id := q.nextID
	heap.Push(&q.heap, &pendingTimer{id: id, fireAt: now.Add(time.Duration(delayMs) * time.Millisecond), cb: cb})
	return id
}

// pump fires every timer whose fireAt is at or before now, in
// non-decreasing fireAt order (ties by id), by repeatedly peeking the
// heap's root and popping it rather than draining to a temporary slice
// first (spec §4.7: "does not allocate a temporary vector"). Errors
// thrown by a callback are reported via onError; processing continues
// to the next timer regardless (spec §7's ScriptRuntimeError handling).
func (q *timerQueue) pump(now time.Time, onError func(error)) int {
	fired := 0
	for len(q.heap) > 0 && !q.heap[0].fireAt.After(now) {
		t := heap.Pop(&q.heap).(*pendingTimer)
		if _, err := t.cb(goja.Undefined()); err != nil && onError != nil {
			onError(err)
		}
		fired++
	}
	return fired
}
