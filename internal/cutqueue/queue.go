// Package cutqueue provides a priority queue of candidate cuts for
// GlobalMapper's worklist, ordered by a caller-supplied comparator instead
// of a fixed key, since the ranking changes with CostEvaluator's mode.
package cutqueue

import "container/heap"

// Item is one element stored in the queue. T is left as interface{}
// rather than parameterized over lutmap.SingleCut so this package stays
// free of a dependency on the root package (an implementation detail
// factored out, the way the teacher keeps internal/hdl free of hwsim
// imports it doesn't need).
type Item struct {
	Value interface{}
}

// Less compares two items. Supplied once at construction and never
// changed: GlobalMapper builds a fresh Queue every pass instead of
// re-ranking one in place, since the comparator itself is pass-specific.
type Less func(a, b interface{}) bool

type heapData struct {
	items []Item
	less  Less
}

func (h heapData) Len() int            { return len(h.items) }
func (h heapData) Less(i, j int) bool  { return h.less(h.items[i].Value, h.items[j].Value) }
func (h heapData) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *heapData) Push(x interface{}) { h.items = append(h.items, x.(Item)) }
func (h *heapData) Pop() interface{} {
	n := len(h.items)
	it := h.items[n-1]
	h.items = h.items[:n-1]
	return it
}

// Queue is a binary-heap priority queue ordered by a Less function fixed
// at construction time.
type Queue struct {
	data *heapData
}

// New returns an empty queue ordered by less.
func New(less Less) *Queue {
	return &Queue{data: &heapData{less: less}}
}

// Push adds v to the queue.
func (q *Queue) Push(v interface{}) { heap.Push(q.data, Item{Value: v}) }

// Pop removes and returns the highest-priority (least, per Less) value.
// Panics if the queue is empty, as with container/heap itself.
func (q *Queue) Pop() interface{} { return heap.Pop(q.data).(Item).Value }

// Len returns the number of queued items.
func (q *Queue) Len() int { return q.data.Len() }

// Items returns the queue's current contents in arbitrary (heap) order,
// without removing them — used by GlobalMapper's dual-output search,
// which scans the whole worklist for a compatible partner.
func (q *Queue) Items() []interface{} {
	out := make([]interface{}, q.data.Len())
	for i, it := range q.data.items {
		out[i] = it.Value
	}
	return out
}
