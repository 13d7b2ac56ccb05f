package synth

import (
	"github.com/go-ddr/ddrgen/annotation"
	"github.com/go-ddr/ddrgen/identifier"
)

// Transform is one operand/return-sense flip a derived operator can apply
// relative to a base operator's function: commutation swaps operand
// order, negation flips the boolean sense of the result (spec §4.6).
type Transform int

const (
	Commutation Transform = 1 << iota
	Negation
)

// transformSet is a bitset of Transform values. Composing two path
// segments XORs their sets: applying the same transform twice is an
// identity (negating a predicate twice, or commuting an operand order
// twice, cancels out), so walking the commutator/negator graph composes
// by symmetric difference, not union.
type transformSet int

func (s transformSet) plus(t Transform) transformSet { return s ^ transformSet(t) }
func (s transformSet) has(t Transform) bool          { return s&transformSet(t) != 0 }

func (s transformSet) size() int {
	n := 0
	if s.has(Commutation) {
		n++
	}
	if s.has(Negation) {
		n++
	}
	return n
}

// path is one candidate derivation of a synthetic operator from a
// non-synthetic base, found by walking the commutator/negator edges
// within one annotated element's operator group. fromBase is the total
// transform set accumulated from base to the candidate; hops is the walk
// length, used only to break ties between equally-transformed paths.
type path struct {
	base     *annotation.Operator
	fromBase transformSet
	hops     int
}

// better reports whether p should replace than as the known-best path to
// some node: fewer net transforms wins (spec §4.6: "select the remaining
// path with the fewest transforms"), hop count breaks ties, and the base
// operator's symbol breaks further ties deterministically so reproducible
// mode picks the same derivation on every run.
func (p path) better(than path) bool {
	if p.fromBase.size() != than.fromBase.size() {
		return p.fromBase.size() < than.fromBase.size()
	}
	if p.hops != than.hops {
		return p.hops < than.hops
	}
	return p.base.Symbol.String() < than.base.Symbol.String()
}

// Synthesizer accumulates the operators annotating each host element and,
// once an element's group is known to be complete, resolves every
// synthetic operator in it against its non-synthetic siblings (spec
// §4.6's pre_synthesize).
type Synthesizer struct {
	groups map[string][]*annotation.Operator
}

// New returns an empty Synthesizer.
func New() *Synthesizer {
	return &Synthesizer{groups: map[string][]*annotation.Operator{}}
}

// PreSynthesize registers snip under element's group. Passing a nil snip
// marks the group complete, triggering derivation for every synthetic
// operator accumulated for that element and releasing the group (spec
// §4.6: "after the final (null) call for an element").
func (s *Synthesizer) PreSynthesize(element string, snip *annotation.Operator) {
	if snip == nil {
		s.resolve(s.groups[element])
		delete(s.groups, element)
		return
	}
	s.groups[element] = append(s.groups[element], snip)
}

// resolve derives every synthetic operator in group from its
// non-synthetic siblings and writes the result directly onto each
// synthetic Operator's ResolvedFunction/ResolvedSignature/Unresolvable
// fields.
func (s *Synthesizer) resolve(group []*annotation.Operator) {
	if len(group) == 0 {
		return
	}

	bySymbol := make(map[string]*annotation.Operator, len(group))
	for _, op := range group {
		bySymbol[op.Symbol.String()] = op
	}

	best := map[string]path{} // keyed by candidate operator's symbol

	relax := func(candidate string, p path) {
		if cur, ok := best[candidate]; !ok || p.better(cur) {
			best[candidate] = p
		}
	}

	var walk func(from *annotation.Operator, acc path, visited map[string]bool)
	walk = func(from *annotation.Operator, acc path, visited map[string]bool) {
		symbol := from.Symbol.String()
		if visited[symbol] {
			return
		}
		visited = cloneVisited(visited, symbol)

		step := func(neighborSymbol string, t Transform) {
			neighbor, ok := bySymbol[neighborSymbol]
			if !ok {
				return
			}
			next := path{base: acc.base, fromBase: acc.fromBase.plus(t), hops: acc.hops + 1}
			relax(neighbor.Symbol.String(), next)
			walk(neighbor, next, visited)
		}

		if from.HasCommutator {
			if from.CommutatorIsSelf {
				step(symbol, Commutation)
			} else {
				step(from.Commutator.String(), Commutation)
			}
		}
		if from.HasNegator {
			if from.NegatorIsSelf {
				step(symbol, Negation)
			} else {
				step(from.Negator.String(), Negation)
			}
		}
	}

	for _, op := range group {
		if op.SyntheticToken != "" {
			continue
		}
		walk(op, path{base: op}, map[string]bool{})
	}

	for _, op := range group {
		if op.SyntheticToken != "" {
			resolveOne(op, best)
		}
	}
}

func cloneVisited(v map[string]bool, add string) map[string]bool {
	cp := make(map[string]bool, len(v)+1)
	for k := range v {
		cp[k] = true
	}
	cp[add] = true
	return cp
}

// resolveOne fills in op's Resolved* fields from the best path found to
// it, filtered by what op's SyntheticToken requires: TWIN demands a
// commutation-bearing path, SELF demands a negation-only path (same
// operand order, flipped sense), and a named sibling reference demands
// the path actually originate at that sibling.
func resolveOne(op *annotation.Operator, best map[string]path) {
	p, ok := best[op.Symbol.String()]
	if !ok {
		op.Unresolvable = true
		return
	}

	switch op.SyntheticToken {
	case "TWIN":
		if !p.fromBase.has(Commutation) {
			op.Unresolvable = true
			return
		}
	case "SELF":
		if !p.fromBase.has(Negation) || p.fromBase.has(Commutation) {
			op.Unresolvable = true
			return
		}
	default:
		if p.base.Symbol.String() != op.SyntheticToken {
			op.Unresolvable = true
			return
		}
	}

	op.ResolvedFunction = p.base.FunctionName
	op.ResolvedSignature = deriveSignature(p.base, p.fromBase)
}

// deriveSignature renders the base operator's operand signature under
// the accumulated transform set: commutation reverses operand order (the
// derived operator is invoked with arguments swapped relative to the
// base); negation leaves operand types untouched, since only the base
// function's declared signature — never its body — matters to this
// package (spec §1 puts the runtime binding itself out of scope).
func deriveSignature(base *annotation.Operator, t transformSet) []identifier.DBType {
	operands := base.OperandTypes()
	if !t.has(Commutation) || len(operands) != 2 {
		return operands
	}
	return []identifier.DBType{operands[1], operands[0]}
}
