package driver

import "github.com/go-ddr/ddrgen/identifier"

// Config holds the driver options recognized by spec §6's table. Zero
// value is not directly usable; build one with NewConfig so the
// ddr.output default is populated.
type Config struct {
	// NameTrusted is the identifier for the trusted language binding
	// (ddr.name.trusted); defaults to "java".
	NameTrusted string

	// NameUntrusted is the identifier for the untrusted variant
	// (ddr.name.untrusted); defaults to NameTrusted+"U" unless set
	// explicitly.
	NameUntrusted string

	// Implementor is the default implementor name (ddr.implementor);
	// HasImplementor false means no default implementor wrapping is
	// applied at all ("-" in the option table disables wrapping).
	Implementor    identifier.Simple
	HasImplementor bool

	// Output is the descriptor's output filename (ddr.output); defaults
	// to "pljava.ddr".
	Output string

	// Reproducible selects the deterministic tie-break queue
	// (ddr.reproducible) over FIFO scheduling order.
	Reproducible bool
}

// Option configures a Config. Applying an Option can fail validation (an
// out-of-alphabet name, an empty required value), matching
// compiler/gen/option.go's Option func(*Config) error shape.
type Option func(*Config) error

// WithNameTrusted sets the trusted language binding identifier
// (ddr.name.trusted).
func WithNameTrusted(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return newConfigError("ddr.name.trusted", nil, "name cannot be empty")
		}
		if !identifier.ValidHostAlphabet(name) {
			return newConfigError("ddr.name.trusted", name, "must be a valid host identifier")
		}
		c.NameTrusted = name
		return nil
	}
}

// WithNameUntrusted sets the untrusted variant's identifier
// (ddr.name.untrusted). Without this option, NameUntrusted defaults to
// NameTrusted+"U" once NewConfig finishes applying every option.
func WithNameUntrusted(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return newConfigError("ddr.name.untrusted", nil, "name cannot be empty")
		}
		if !identifier.ValidHostAlphabet(name) {
			return newConfigError("ddr.name.untrusted", name, "must be a valid host identifier")
		}
		c.NameUntrusted = name
		return nil
	}
}

// WithImplementor sets the default implementor name (ddr.implementor). A
// value of "-" disables implementor wrapping entirely, per spec §6.
func WithImplementor(name string) Option {
	return func(c *Config) error {
		if name == "-" {
			c.Implementor, c.HasImplementor = identifier.Simple{}, false
			return nil
		}
		if name == "" {
			return newConfigError("ddr.implementor", nil, `name cannot be empty; use "-" to disable`)
		}
		c.Implementor, c.HasImplementor = identifier.NewSimpleFromSQL(name), true
		return nil
	}
}

// WithOutput sets the descriptor output filename (ddr.output).
func WithOutput(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return newConfigError("ddr.output", nil, "output path cannot be empty")
		}
		c.Output = path
		return nil
	}
}

// WithReproducible sets ddr.reproducible.
func WithReproducible(on bool) Option {
	return func(c *Config) error {
		c.Reproducible = on
		return nil
	}
}

// Apply applies opts to c in order, stopping at the first error.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// NewConfig builds a Config from its defaults (NameTrusted "java",
// NameUntrusted NameTrusted+"U", Output "pljava.ddr") plus opts, applied
// in order.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{NameTrusted: "java", Output: "pljava.ddr"}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if c.NameUntrusted == "" {
		c.NameUntrusted = c.NameTrusted + "U"
	}
	return c, nil
}

// MustNewConfig is like NewConfig but panics on error, for callers (tests,
// CLI flag wiring after its own validation) that already know opts are
// well-formed.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
