package schedule

import (
	"sort"
	"strings"

	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/annotation"
	"github.com/go-ddr/ddrgen/dependtag"
	"github.com/go-ddr/ddrgen/graph"
	"github.com/go-ddr/ddrgen/identifier"
)

// Options configures a Schedule run (spec §4.8, §6).
type Options struct {
	// Reproducible selects the deterministic min-priority tie-break queue
	// over the default FIFO one.
	Reproducible bool

	// DefaultImplementor is the implementor name that never needs a
	// known provider (ddr.implementor driver option).
	DefaultImplementor    identifier.Simple
	HasDefaultImplementor bool
}

// Result is the ordered install/remove sequence a Schedule run produces.
type Result struct {
	Install []annotation.Snippet
	Remove  []annotation.Snippet
}

// entry pairs a snippet with its vertex in both graphs, plus bookkeeping
// the cycle breaker needs to run at most once per direction.
type entry struct {
	snippet       annotation.Snippet
	pair          *graph.Pair[annotation.Snippet]
	brokenForward bool
	brokenReverse bool
}

// Schedule builds the install/remove dependency graphs over snippets'
// already-characterized provides/requires tags and drains them into two
// ordered sequences (spec §4.8). It reports a fatal error, via sink, for
// every explicit tag that is required but never provided, and for any
// cycle neither BaseUDT's cycle breaker nor the implementor-tag fallback
// can resolve; ok is false whenever any such diagnostic was reported.
func Schedule(snippets []annotation.Snippet, sink ddr.Sink, opts Options) (result Result, ok bool) {
	entries := make([]*entry, len(snippets))
	for i, sn := range snippets {
		entries[i] = &entry{snippet: sn, pair: graph.NewPair[annotation.Snippet](sn)}
	}

	providerOf := map[string][]*entry{}
	for _, e := range entries {
		for _, tag := range e.snippet.ProvidedTags() {
			providerOf[tag.Key()] = append(providerOf[tag.Key()], e)
		}
	}

	ok = true
	for _, e := range entries {
		for _, tag := range e.snippet.Requires() {
			providers := providerOf[tag.Key()]
			if len(providers) == 0 {
				if tag.Kind() == dependtag.Explicit {
					ddr.Errorf(sink, nil, "%s: required tag %s has no provider", e.snippet.Owner(), tag)
					ok = false
				}
				continue
			}
			for _, p := range providers {
				if p == e {
					continue
				}
				p.pair.Precede(e.pair)
			}
		}
	}
	if !ok {
		return Result{}, false
	}

	bumped := wireImplementorGroups(entries, opts)

	s := &scheduler{providerOf: providerOf, sink: sink}
	install, installOK := s.run(entries, true, opts.Reproducible, bumped)
	// Only the remove direction's cycle breaker marks BaseUDT's I/O
	// functions Subsumed; the install direction's breaker adds a shell
	// vertex instead and marks nothing, so the install order computed above
	// is not affected by what the remove pass changes.
	remove, removeOK := s.run(entries, false, opts.Reproducible, bumped)

	return Result{Install: install, Remove: remove}, installOK && removeOK
}

// wireImplementorGroups implements the implementor-tag half of spec
// §4.8: snippets sharing an implementor name are linked so the first
// one to declare that name runs first in both graphs (the condition the
// wrapping BEGIN/END block tests must be evaluated before any sibling
// block that shares it, in both install and remove order); a lone user
// of an implementor name has no such provider and is deprioritized
// (indegree bumped in both graphs) unless it names the configured
// default implementor.
func wireImplementorGroups(entries []*entry, opts Options) []*entry {
	groups := map[string][]*entry{}
	var order []string
	for _, e := range entries {
		name, has := e.snippet.ImplementorName()
		if !has {
			continue
		}
		key := name.Folded()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], e)
	}

	var bumped []*entry
	for _, key := range order {
		group := groups[key]
		if len(group) >= 2 {
			provider := group[0]
			if len(provider.snippet.UndeployStrings()) == 0 {
				provider.pair.Reverse.Payload = deployAsUndeploy{provider.snippet}
			}
			for _, consumer := range group[1:] {
				provider.pair.PrecedeBoth(consumer.pair)
			}
			continue
		}

		solo := group[0]
		if opts.HasDefaultImplementor {
			if name, _ := solo.snippet.ImplementorName(); name.Folded() == opts.DefaultImplementor.Folded() {
				continue
			}
		}
		solo.pair.Forward.BumpIndegree()
		solo.pair.Reverse.BumpIndegree()
		bumped = append(bumped, solo)
	}
	return bumped
}

// deployAsUndeploy proxies UndeployStrings to DeployStrings: a snippet
// whose implementor condition has no undeploy statements of its own
// still needs that condition re-checked in the remove block (spec
// §4.8).
type deployAsUndeploy struct{ annotation.Snippet }

func (d deployAsUndeploy) UndeployStrings() []string { return d.Snippet.DeployStrings() }

// scheduler holds the state shared by both the install and remove
// drains: the tag->provider index (needed again mid-run by the BaseUDT
// cycle breaker to find a type's I/O functions) and the diagnostic sink.
type scheduler struct {
	providerOf map[string][]*entry
	sink       ddr.Sink
}

// run drains one direction's graph to completion, returning the
// resulting order and whether it fully resolved (spec §4.8's main loop).
func (s *scheduler) run(entries []*entry, deploying bool, reproducible bool, bumpedEntries []*entry) ([]annotation.Snippet, bool) {
	vertexOf := func(e *entry) *graph.Vertex[annotation.Snippet] {
		if deploying {
			return e.pair.Forward
		}
		return e.pair.Reverse
	}

	byVertex := make(map[*graph.Vertex[annotation.Snippet]]*entry, len(entries))
	for _, e := range entries {
		byVertex[vertexOf(e)] = e
	}

	var ready, blocked queue
	if reproducible {
		ready = newPriorityQueue(byVertex)
		blocked = newPriorityQueue(byVertex)
	} else {
		ready = &graph.FIFO[annotation.Snippet]{}
		blocked = &graph.FIFO[annotation.Snippet]{}
	}

	for _, e := range entries {
		v := vertexOf(e)
		if v.Indegree() == 0 {
			ready.Push(v)
		} else {
			blocked.Push(v)
		}
	}

	stillBumped := make(map[*entry]bool, len(bumpedEntries))
	for _, e := range bumpedEntries {
		stillBumped[e] = true
	}

	done := map[*graph.Vertex[annotation.Snippet]]bool{}
	var output []annotation.Snippet

	for {
		for {
			v, has := ready.Pop()
			if !has {
				break
			}
			done[v] = true
			output = append(output, v.Payload)
			v.UseBlocked(ready, blocked)
		}

		if blocked.Len() == 0 {
			return output, true
		}

		var freed []*graph.Vertex[annotation.Snippet]
		for _, v := range blocked.Items() {
			e := byVertex[v]
			if extra := s.breakCycle(e, deploying); extra != nil {
				freed = append(freed, extra...)
			}
		}
		if len(freed) > 0 {
			for _, v := range freed {
				blocked.Remove(v)
				ready.Push(v)
			}
			continue
		}

		if victim := pickBumpedFallback(bumpedEntries, stillBumped, vertexOf, reproducible); victim != nil {
			v := vertexOf(victim)
			v.ReleaseIndegree()
			stillBumped[victim] = false
			if v.Indegree() == 0 {
				blocked.Remove(v)
				ready.Push(v)
			}
			continue
		}

		s.reportUnresolved(blocked, byVertex, done, deploying)
		return output, false
	}
}

// breakCycle dispatches to the one payload kind that knows how to break
// a cycle involving itself; every other snippet cannot self-nominate
// (spec §4.8 describes only BaseUDT's breaker).
func (s *scheduler) breakCycle(e *entry, deploying bool) []*graph.Vertex[annotation.Snippet] {
	u, ok := e.snippet.(*annotation.BaseUDT)
	if !ok {
		return nil
	}
	if deploying {
		if e.brokenForward {
			return nil
		}
		extra := s.breakBaseUDTDeploy(e, u)
		if extra != nil {
			e.brokenForward = true
		}
		return extra
	}
	if e.brokenReverse {
		return nil
	}
	extra := s.breakBaseUDTRemove(e, u)
	if extra != nil {
		e.brokenReverse = true
	}
	return extra
}

// ioTags reconstructs the four depend tags BaseUDT.Characterize derived
// for its I/O functions, so the scheduler can look their vertices back
// up without BaseUDT needing to hold references to them directly.
func ioTags(u *annotation.BaseUDT) []dependtag.Tag {
	self := identifier.Named{Name: u.Name}
	return []dependtag.Tag{
		dependtag.NewFunction(u.Input, []identifier.DBType{identifier.TypeCString}),
		dependtag.NewFunction(u.Output, []identifier.DBType{self}),
		dependtag.NewFunction(u.Receive, []identifier.DBType{identifier.TypeInternal}),
		dependtag.NewFunction(u.Send, []identifier.DBType{self}),
	}
}

// cyclicIOEntries returns the subset of u's I/O functions that actually
// form a mutual cycle with u: those whose own signature requires u's
// type (the I/O functions take or return the UDT itself, e.g. output and
// send), as opposed to ones that merely need to exist before u, which
// every I/O function does but which alone creates no cycle.
func (s *scheduler) cyclicIOEntries(u *annotation.BaseUDT) []*entry {
	selfTag := dependtag.NewType(u.Name)
	var out []*entry
	for _, tag := range ioTags(u) {
		providers, ok := s.providerOf[tag.Key()]
		if !ok || len(providers) == 0 {
			continue
		}
		io := providers[0]
		for _, req := range io.snippet.Requires() {
			if req.Equal(selfTag) {
				out = append(out, io)
				break
			}
		}
	}
	return out
}

// breakBaseUDTDeploy inserts u's Shell vertex ahead of its I/O functions,
// transferring u's own successor edges to it so the functions' `CREATE
// TYPE name` precondition is satisfied without waiting on u itself (spec
// §4.8).
func (s *scheduler) breakBaseUDTDeploy(e *entry, u *annotation.BaseUDT) []*graph.Vertex[annotation.Snippet] {
	cyclic := s.cyclicIOEntries(u)
	if len(cyclic) == 0 {
		return nil
	}

	shellSnippet := u.Shell()
	shellSnippet.Characterize(s.sink)
	shellPair := graph.NewPair[annotation.Snippet](shellSnippet)

	move := make([]*graph.Vertex[annotation.Snippet], 0, len(cyclic))
	for _, io := range cyclic {
		move = append(move, io.pair.Forward)
	}
	e.pair.Forward.TransferSuccessorsTo(shellPair.Forward, move)

	return []*graph.Vertex[annotation.Snippet]{shellPair.Forward}
}

// breakBaseUDTRemove marks u's cyclic I/O functions Subsumed (their own
// DROP FUNCTION would now be redundant, or erroring, once u's CASCADE
// runs) and frees u's own remove-graph vertex immediately instead of
// waiting on functions that are no longer going to run on their own
// (spec §4.8).
func (s *scheduler) breakBaseUDTRemove(e *entry, u *annotation.BaseUDT) []*graph.Vertex[annotation.Snippet] {
	cyclic := s.cyclicIOEntries(u)
	if len(cyclic) == 0 {
		return nil
	}

	for _, io := range cyclic {
		if fn, ok := io.snippet.(*annotation.Function); ok {
			fn.Subsumed = true
		}
	}
	e.pair.Reverse.ZeroIndegree()

	return []*graph.Vertex[annotation.Snippet]{e.pair.Reverse}
}

// pickBumpedFallback implements spec §4.8 step 3: a blocked vertex whose
// indegree is exactly 1 purely because of an earlier implementor-tag
// bump (no real provider exists, and it isn't the default implementor)
// is released rather than leaving the whole schedule stuck.
func pickBumpedFallback(bumpedEntries []*entry, stillBumped map[*entry]bool, vertexOf func(*entry) *graph.Vertex[annotation.Snippet], reproducible bool) *entry {
	var candidates []*entry
	for _, e := range bumpedEntries {
		if !stillBumped[e] {
			continue
		}
		if vertexOf(e).Indegree() == 1 {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	if !reproducible {
		return candidates[0]
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return tieKey(candidates[i].snippet) < tieKey(candidates[j].snippet)
	})
	return candidates[0]
}

// reportUnresolved names every requires tag still unsatisfied among the
// vertices that never drained, then lets the caller treat the run as
// failed (spec §4.8 step 4).
func (s *scheduler) reportUnresolved(blocked queue, byVertex map[*graph.Vertex[annotation.Snippet]]*entry, done map[*graph.Vertex[annotation.Snippet]]bool, deploying bool) {
	for _, v := range blocked.Items() {
		e := byVertex[v]
		for _, tag := range e.snippet.Requires() {
			satisfied := false
			for _, p := range s.providerOf[tag.Key()] {
				pv := p.pair.Forward
				if !deploying {
					pv = p.pair.Reverse
				}
				if done[pv] {
					satisfied = true
					break
				}
			}
			if !satisfied {
				ddr.Errorf(s.sink, nil, "%s: unresolved dependency %s", e.snippet.Owner(), tag)
			}
		}
	}
}

// tieKey renders a snippet's deterministic tie-break key: implementor
// name folded (absent sorts first), then deploy strings, then undeploy
// strings, lexicographically (spec §4.8's reproducible-mode ordering).
func tieKey(sn annotation.Snippet) string {
	prefix := "0|"
	if name, has := sn.ImplementorName(); has {
		prefix = "1|" + name.Folded()
	}
	return prefix + "|" + strings.Join(sn.DeployStrings(), "\x00") + "|" + strings.Join(sn.UndeployStrings(), "\x00")
}
