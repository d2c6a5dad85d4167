// Implements the ArrivalQueue, which holds instances that have not arrived yet,
// and the ReadySet, which holds arrived-but-unfinished instances in policy order.

package sim

import (
	"container/heap"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// ArrivalQueue is an ordered source of not-yet-arrived instances.
// Order: arrival time ascending, then insertion order.
type ArrivalQueue struct {
	queue []TaskInstance
}

// NewArrivalQueue validates instances and returns them as an ArrivalQueue.
// The input slice is copied; a malformed instance rejects the whole set.
func NewArrivalQueue(instances []TaskInstance) (*ArrivalQueue, error) {
	q := &ArrivalQueue{queue: make([]TaskInstance, len(instances))}
	copy(q.queue, instances)
	for i := range q.queue {
		t := &q.queue[i]
		if t.StaticPriority == 0 {
			t.StaticPriority = t.derivedPriority()
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("instance %d: %w", i, err)
		}
		if t.ExecutedTime != 0 {
			return nil, fmt.Errorf("instance %d: task %s already has %d executed slices", i, t.Name(), t.ExecutedTime)
		}
		t.seq = i
		t.State = StatePending
		t.Running = false
	}
	slices.SortStableFunc(q.queue, func(a, b TaskInstance) int {
		switch {
		case a.ArrivalTime < b.ArrivalTime:
			return -1
		case a.ArrivalTime > b.ArrivalTime:
			return 1
		}
		return 0
	})
	return q, nil
}

// Len returns the number of instances still to arrive.
func (aq *ArrivalQueue) Len() int {
	return len(aq.queue)
}

// Peek returns the next instance to arrive without removing it.
// Returns nil if the queue is empty.
func (aq *ArrivalQueue) Peek() *TaskInstance {
	if len(aq.queue) == 0 {
		return nil
	}
	return &aq.queue[0]
}

// PopDue removes and returns every instance whose arrival time is <= now,
// in queue order.
func (aq *ArrivalQueue) PopDue(now int64) []TaskInstance {
	n := 0
	for n < len(aq.queue) && aq.queue[n].ArrivalTime <= now {
		n++
	}
	due := aq.queue[:n:n]
	aq.queue = aq.queue[n:]
	return due
}

// Items returns the queue contents in arrival order.
// Callers MUST NOT modify the returned slice.
func (aq *ArrivalQueue) Items() []TaskInstance {
	return aq.queue
}

// clone returns an independent copy so a run never consumes the caller's queue.
func (aq *ArrivalQueue) clone() *ArrivalQueue {
	c := &ArrivalQueue{queue: make([]TaskInstance, len(aq.queue))}
	copy(c.queue, aq.queue)
	return c
}

func (aq *ArrivalQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := range aq.queue {
		sb.WriteString(aq.queue[i].Name())
		if i < len(aq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// ReadySet implements heap.Interface over arrived instances, ordered by Policy.Less.
// The top of the heap is the instance the policy would dispatch next.
type ReadySet struct {
	policy Policy
	items  []TaskInstance
}

// NewReadySet creates an empty ready set ordered by policy.
func NewReadySet(policy Policy) *ReadySet {
	rs := &ReadySet{
		policy: policy,
		items:  make([]TaskInstance, 0),
	}
	heap.Init(rs)
	return rs
}

// Len implements heap.Interface
func (rs *ReadySet) Len() int {
	return len(rs.items)
}

// Less implements heap.Interface
func (rs *ReadySet) Less(i, j int) bool {
	return rs.policy.Less(&rs.items[i], &rs.items[j])
}

// Swap implements heap.Interface
func (rs *ReadySet) Swap(i, j int) {
	rs.items[i], rs.items[j] = rs.items[j], rs.items[i]
}

// Push implements heap.Interface
func (rs *ReadySet) Push(x any) {
	rs.items = append(rs.items, x.(TaskInstance))
}

// Pop implements heap.Interface
func (rs *ReadySet) Pop() any {
	old := rs.items
	n := len(old)
	item := old[n-1]
	rs.items = old[0 : n-1]
	return item
}

// Add inserts an instance and marks it ready.
func (rs *ReadySet) Add(t TaskInstance) {
	t.State = StateReady
	t.Running = false
	heap.Push(rs, t)
}

// PopTop removes and returns the most urgent instance.
// Panics if the set is empty.
func (rs *ReadySet) PopTop() TaskInstance {
	if rs.Len() == 0 {
		panic("PopTop: ready set is empty")
	}
	return heap.Pop(rs).(TaskInstance)
}

// Peek returns the most urgent instance without removing it.
// Returns nil if the set is empty.
func (rs *ReadySet) Peek() *TaskInstance {
	if rs.Len() == 0 {
		return nil
	}
	return &rs.items[0]
}

// RecomputeLaxity refreshes DynamicLaxity of every ready instance as of now
// and restores heap order.
func (rs *ReadySet) RecomputeLaxity(now int64) {
	for i := range rs.items {
		rs.items[i].DynamicLaxity = rs.items[i].Laxity(now)
	}
	heap.Init(rs)
}

// Items returns the heap contents in heap (not rank) order.
// Callers MUST NOT modify the returned slice.
func (rs *ReadySet) Items() []TaskInstance {
	return rs.items
}

// contains reports whether an instance with the given admission sequence is ready.
func (rs *ReadySet) contains(seq int) bool {
	return slices.ContainsFunc(rs.items, func(t TaskInstance) bool { return t.seq == seq })
}
