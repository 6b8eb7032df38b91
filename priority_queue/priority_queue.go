// priority_queue is a min-priority queue on container/heap, used as the open set of
// the path finder.
package priority_queue

import "container/heap"

type entry[T any] struct {
	priority float64
	item     T
}

type entries[T any] struct {
	items []entry[T]
	less  func(a, b T) bool
}

func (e *entries[T]) Len() int { return len(e.items) }

func (e *entries[T]) Less(i, j int) bool {
	a, b := e.items[i], e.items[j]
	if a.priority != b.priority || e.less == nil {
		return a.priority < b.priority
	}
	return e.less(a.item, b.item)
}

func (e *entries[T]) Swap(i, j int) { e.items[i], e.items[j] = e.items[j], e.items[i] }

func (e *entries[T]) Push(x any) { e.items = append(e.items, x.(entry[T])) }

func (e *entries[T]) Pop() any {
	n := len(e.items)
	last := e.items[n-1]
	e.items[n-1] = entry[T]{}
	e.items = e.items[:n-1]
	return last
}

// Queue pops the item with the lowest priority first. Without a tie-break, items of
// equal priority pop in heap order, which is not insertion order.
type Queue[T any] struct {
	heap entries[T]
}

// New returns an empty queue with no tie-break.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// NewWithTieBreak returns an empty queue where equal priorities pop in less order.
func NewWithTieBreak[T any](less func(a, b T) bool) *Queue[T] {
	return &Queue[T]{
		heap: entries[T]{less: less},
	}
}

// Push adds an item in O(log n).
func (q *Queue[T]) Push(priority float64, item T) {
	heap.Push(&q.heap, entry[T]{priority: priority, item: item})
}

// Pop removes and returns the min-priority item in O(log n). The bool is false when
// the queue is empty.
func (q *Queue[T]) Pop() (item T, priority float64, ok bool) {
	if q.IsEmpty() {
		return
	}
	e := heap.Pop(&q.heap).(entry[T])
	return e.item, e.priority, true
}

func (q *Queue[T]) IsEmpty() bool {
	return len(q.heap.items) == 0
}

func (q *Queue[T]) Len() int {
	return len(q.heap.items)
}
