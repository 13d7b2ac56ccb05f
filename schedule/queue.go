package schedule

import (
	"sort"

	"github.com/go-ddr/ddrgen/annotation"
	"github.com/go-ddr/ddrgen/graph"
)

// queue is what the scheduler's ready/blocked sets need beyond
// graph.RemovableCollection: a way to drain and to inspect membership.
// graph.FIFO and priorityQueue both satisfy it.
type queue interface {
	graph.RemovableCollection[annotation.Snippet]
	Pop() (*graph.Vertex[annotation.Snippet], bool)
	Len() int
	Items() []*graph.Vertex[annotation.Snippet]
}

// priorityQueue is the "reproducible" mode tie-break queue (spec §4.8):
// a min-priority queue keyed by (implementor_name_folded_or_null_first,
// deploy_strings lexicographic, undeploy_strings lexicographic),
// re-sorted on every push so Pop always returns the current minimum.
type priorityQueue struct {
	items    []*graph.Vertex[annotation.Snippet]
	byVertex map[*graph.Vertex[annotation.Snippet]]*entry
}

func newPriorityQueue(byVertex map[*graph.Vertex[annotation.Snippet]]*entry) *priorityQueue {
	return &priorityQueue{byVertex: byVertex}
}

func (q *priorityQueue) key(v *graph.Vertex[annotation.Snippet]) string {
	return tieKey(q.byVertex[v].snippet)
}

func (q *priorityQueue) Push(v *graph.Vertex[annotation.Snippet]) {
	q.items = append(q.items, v)
	sort.SliceStable(q.items, func(i, j int) bool { return q.key(q.items[i]) < q.key(q.items[j]) })
}

func (q *priorityQueue) Remove(v *graph.Vertex[annotation.Snippet]) {
	for i, it := range q.items {
		if it == v {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

func (q *priorityQueue) Pop() (*graph.Vertex[annotation.Snippet], bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	v := q.items[0]
	q.items = q.items[1:]
	return v, true
}

func (q *priorityQueue) Len() int { return len(q.items) }

func (q *priorityQueue) Items() []*graph.Vertex[annotation.Snippet] {
	return append([]*graph.Vertex[annotation.Snippet](nil), q.items...)
}
