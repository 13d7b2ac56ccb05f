// Package driver runs the round-based processing loop described in spec
// §5: each round characterizes a fresh batch of annotation carriers and
// accumulates them into the running snippet set, then, once the host
// environment signals the final round, schedules and emits the deployment
// descriptor text in one pass.
//
// A typical caller looks like:
//
//	cfg, err := driver.NewConfig(
//		driver.WithImplementor("postgresql_83"),
//		driver.WithOutput("pljava.ddr"),
//	)
//	d := driver.New(cfg, sink)
//	for _, round := range rounds {
//		if err := d.Round(ctx, round); err != nil {
//			return err
//		}
//	}
//	text, ok := d.Finish()
package driver
