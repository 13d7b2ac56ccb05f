package driver

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/annotation"
	"github.com/go-ddr/ddrgen/emit"
	"github.com/go-ddr/ddrgen/schedule"
)

// roundKey identifies a snippet across rounds by (owning element, snippet
// subclass) — spec §5's key for the snippets map. The carrier's dynamic
// type stands in for "subclass": two carriers of different Go types can
// both own the same element (a UDT carrier and one of its I/O Function
// carriers, say) without colliding.
type roundKey struct {
	owner string
	kind  string
}

func keyOf(sn annotation.Snippet) roundKey {
	return roundKey{owner: sn.Owner(), kind: fmt.Sprintf("%T", sn)}
}

// trackingSink forwards every diagnostic to the caller's sink while
// separately remembering whether an error-severity one was ever reported,
// since the plain ddr.Sink interface is write-only (spec §6's diagnostic
// collaborator has no read side). The driver needs that bit itself to
// implement spec §5's "fatal diagnostic skips emission, never
// characterization" rule regardless of what concrete Sink the caller
// supplies.
type trackingSink struct {
	inner     ddr.Sink
	hasErrors bool
}

func (t *trackingSink) Report(d ddr.Diagnostic) {
	if d.Severity == ddr.Error {
		t.hasErrors = true
	}
	t.inner.Report(d)
}

// Driver runs the round-based processing loop of spec §5 over a
// configured Config and diagnostic sink.
type Driver struct {
	cfg      Config
	tracking *trackingSink

	mu      sync.Mutex
	pending map[roundKey]annotation.Snippet // this round only
	index   map[roundKey]int                // owner+kind -> position in all
	all     []annotation.Snippet            // accumulated across every round so far
}

// New returns a Driver configured by cfg, reporting diagnostics to sink.
func New(cfg Config, sink ddr.Sink) *Driver {
	return &Driver{
		cfg:      cfg,
		tracking: &trackingSink{inner: sink},
		pending:  map[roundKey]annotation.Snippet{},
		index:    map[roundKey]int{},
	}
}

// Round processes one annotation-processing round's worth of newly
// discovered carriers: each is first given the configured
// ddr.name.trusted/ddr.name.untrusted names, if it accepts them, then
// characterized concurrently, bounded by an errgroup the way
// compiler/gen/generate.go fans out per-type file generation, then
// drained into the driver's accumulated snippet set. Characterizing a
// carrier never returns a Go error (malformed input is a diagnostic, not
// a call failure); Round's own error return is reserved for ctx
// cancellation.
func (d *Driver) Round(ctx context.Context, round []annotation.Snippet) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, sn := range round {
		sn := sn
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if configurable, ok := sn.(annotation.HostLanguageConfigurable); ok {
				configurable.SetHostLanguageNames(d.cfg.NameTrusted, d.cfg.NameUntrusted)
			}
			sn.Characterize(d.tracking)
			d.mu.Lock()
			d.pending[keyOf(sn)] = sn
			d.mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	d.drain()
	return nil
}

// drain is defensive_early_characterize (spec §5): it moves every
// carrier staged this round into the accumulated set, replacing an
// earlier round's carrier for the same (owner, kind) rather than
// duplicating it, then clears the round's staging map.
func (d *Driver) drain() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, sn := range d.pending {
		if i, ok := d.index[k]; ok {
			d.all[i] = sn
		} else {
			d.index[k] = len(d.all)
			d.all = append(d.all, sn)
		}
		delete(d.pending, k)
	}
}

// Finish schedules and emits the descriptor text from every snippet
// accumulated across every Round call (spec §5: "emission happens only
// after the final round"). If any error-severity diagnostic was reported
// during characterization, Finish skips scheduling and emission
// entirely and returns ok=false; every diagnostic up to that point was
// already surfaced to the caller's sink via Round, since characterize is
// never cut short.
func (d *Driver) Finish() (text string, ok bool) {
	if d.tracking.hasErrors {
		return "", false
	}

	opts := schedule.Options{
		Reproducible:          d.cfg.Reproducible,
		DefaultImplementor:    d.cfg.Implementor,
		HasDefaultImplementor: d.cfg.HasImplementor,
	}
	result, schedOK := schedule.Schedule(d.all, d.tracking, opts)
	if !schedOK {
		return "", false
	}
	return emit.Render(result, d.tracking)
}

// Snippets returns every carrier accumulated so far, for callers (such as
// tests) that want to inspect driver state between rounds without forcing
// Finish.
func (d *Driver) Snippets() []annotation.Snippet {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]annotation.Snippet, len(d.all))
	copy(out, d.all)
	return out
}
