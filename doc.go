// Package ddr provides the shared diagnostic and error vocabulary used by
// every stage of the SQL deployment-descriptor generator: the identifier
// and type model, the dependency graph builder, the scheduler, the SQL
// emitter, and the driver that orchestrates them.
//
// # Pipeline
//
// A single run flows through these packages, in order:
//
//	identifier + typemap   -- name and type model
//	annotation              -- typed carriers for each declared object (Snippet)
//	synth                   -- derives commutator/negator operator variants
//	dependtag + graph       -- dependency keys and the DAG they wire together
//	schedule                -- topological install/remove ordering
//	emit                    -- serializes the schedule to descriptor text
//	driver                  -- reads annotated source and runs the above
//
// Diagnostics are reported through a [Sink] so that, per spec, fatal errors
// suppress emission without suppressing the rest of characterization: every
// error gets a chance to be reported before the driver gives up.
package ddr
