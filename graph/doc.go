// Package graph provides the generic directed-graph primitives the
// scheduler is built on: [Vertex], a payload-carrying node with an
// indegree counter and out-adjacency list, and [Pair], a twinned
// forward/reverse vertex sharing one payload (spec §4.3–§4.4).
//
// velox itself has no public graph type of this shape — its dependency
// ordering is implicit in the entity declaration order consumed by
// compiler/gen/generate.go's errgroup fan-out. Vertex generalizes that
// idea into an explicit, reusable graph the scheduler package can run
// Kahn's algorithm over.
package graph
