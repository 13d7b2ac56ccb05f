package graph

// Collection receives vertices that became ready (indegree zero).
// Implementations may be an ordinary FIFO queue or a priority queue; the
// scheduler decides (spec §4.3).
type Collection[P any] interface {
	Push(*Vertex[P])
}

// RemovableCollection additionally supports removing a vertex that was
// previously pushed — used for the "blocked" set a vertex is moved out of
// once it becomes ready.
type RemovableCollection[P any] interface {
	Collection[P]
	Remove(*Vertex[P])
}

// Vertex is a node in a dependency graph: a payload, an indegree counter,
// and an out-adjacency list (spec §4.3).
type Vertex[P any] struct {
	Payload  P
	indegree int
	out      []*Vertex[P]
}

// New creates a Vertex wrapping payload.
func New[P any](payload P) *Vertex[P] {
	return &Vertex[P]{Payload: payload}
}

// Indegree returns the number of unresolved predecessors.
func (v *Vertex[P]) Indegree() int { return v.indegree }

// BumpIndegree artificially increases v's indegree without adding a real
// edge — used by the scheduler to defer a snippet requiring an
// implementor tag with no known provider (spec §4.8).
func (v *Vertex[P]) BumpIndegree() { v.indegree++ }

// ZeroIndegree forces v's indegree to zero, bypassing normal edge
// resolution. Used by the BaseUDT remove-direction cycle breaker to let
// the subsuming DROP TYPE ... CASCADE run immediately instead of waiting
// on the very successors it has just taken over (spec §4.8).
func (v *Vertex[P]) ZeroIndegree() { v.indegree = 0 }

// ReleaseIndegree undoes one BumpIndegree call. Used by the scheduler's
// fallback step to free a vertex whose sole remaining dependency is an
// implementor tag nobody provides (spec §4.8).
func (v *Vertex[P]) ReleaseIndegree() {
	if v.indegree > 0 {
		v.indegree--
	}
}

// Successors returns v's out-adjacency list. Callers must not mutate the
// returned slice.
func (v *Vertex[P]) Successors() []*Vertex[P] { return v.out }

// Precede wires an edge from v to other: v must be scheduled first.
// other's indegree is incremented and the edge is recorded on v.
func (v *Vertex[P]) Precede(other *Vertex[P]) {
	other.indegree++
	v.out = append(v.out, other)
}

// Use decrements the indegree of every successor of v, pushing any that
// reach zero onto ready.
func (v *Vertex[P]) Use(ready Collection[P]) {
	v.UseBlocked(ready, nil)
}

// UseBlocked is like Use, but additionally removes a freed successor from
// blocked (if non-nil) before pushing it onto ready.
func (v *Vertex[P]) UseBlocked(ready Collection[P], blocked RemovableCollection[P]) {
	for _, succ := range v.out {
		succ.indegree--
		if succ.indegree == 0 {
			if blocked != nil {
				blocked.Remove(succ)
			}
			ready.Push(succ)
		}
	}
}

// PrecedesTransitively reports whether target is reachable from v through
// one or more of v's direct successors, and returns the subset of those
// direct successors through which it is reachable. It returns (nil, false)
// if target is unreachable from v.
//
// Reachability is computed with a depth-first search memoized per vertex.
// A vertex still on the current search path counts as not reaching target
// for that branch only: once the search has met such a vertex, negative
// results are no longer memoized, since they may depend on a vertex whose
// search is unfinished. This terminates on a cyclic graph and classifies
// every direct successor exactly.
func (v *Vertex[P]) PrecedesTransitively(target *Vertex[P]) ([]*Vertex[P], bool) {
	memo := map[*Vertex[P]]bool{target: true}
	onStack := map[*Vertex[P]]bool{}
	cut := false

	var reaches func(u *Vertex[P]) bool
	reaches = func(u *Vertex[P]) bool {
		if r, ok := memo[u]; ok {
			return r
		}
		if onStack[u] {
			cut = true
			return false
		}
		onStack[u] = true
		result := false
		for _, w := range u.out {
			if reaches(w) {
				result = true
				break
			}
		}
		delete(onStack, u)
		if result || !cut {
			memo[u] = result
		}
		return result
	}

	var subset []*Vertex[P]
	for _, s := range v.out {
		if reaches(s) {
			subset = append(subset, s)
		}
	}
	if len(subset) == 0 {
		return nil, false
	}
	return subset, true
}

// TransferSuccessorsTo removes each vertex in subset from v's out-adjacency
// and adds it to other's, leaving every successor's indegree unchanged
// (the edge's "who must run first" obligation moves to other, the count
// of unresolved predecessors it represents does not). Used by the BaseUDT
// cycle breaker to hand a shell vertex the UDT's former successors.
func (v *Vertex[P]) TransferSuccessorsTo(other *Vertex[P], subset []*Vertex[P]) {
	move := make(map[*Vertex[P]]bool, len(subset))
	for _, s := range subset {
		move[s] = true
	}
	kept := v.out[:0:0]
	for _, s := range v.out {
		if move[s] {
			other.out = append(other.out, s)
		} else {
			kept = append(kept, s)
		}
	}
	v.out = kept
}

// FIFO is a simple first-in-first-out Collection/RemovableCollection.
type FIFO[P any] struct {
	items []*Vertex[P]
}

// Push appends v to the queue.
func (q *FIFO[P]) Push(v *Vertex[P]) { q.items = append(q.items, v) }

// Remove deletes the first occurrence of v from the queue, if present.
func (q *FIFO[P]) Remove(v *Vertex[P]) {
	for i, item := range q.items {
		if item == v {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Pop removes and returns the front of the queue, or (nil, false) if empty.
func (q *FIFO[P]) Pop() (*Vertex[P], bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	v := q.items[0]
	q.items = q.items[1:]
	return v, true
}

// Len reports the number of queued items.
func (q *FIFO[P]) Len() int { return len(q.items) }

// Items returns a snapshot of the queued items, in order.
func (q *FIFO[P]) Items() []*Vertex[P] { return append([]*Vertex[P](nil), q.items...) }
