// Package options loads the driver's option map (spec §6: "option map
// for driver configuration") from a YAML file whose keys are the
// recognized ddr.* names verbatim, e.g.:
//
//	ddr.name.trusted: java
//	ddr.implementor: postgresql_83
//	ddr.output: pljava.ddr
//	ddr.reproducible: true
//
// A flat dotted-key map mirrors the option map's own shape more directly
// than a nested ddr: {name: {trusted: ...}} document would.
package options

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-ddr/ddrgen/driver"
)

type document struct {
	NameTrusted   string `yaml:"ddr.name.trusted"`
	NameUntrusted string `yaml:"ddr.name.untrusted"`
	Implementor   string `yaml:"ddr.implementor"`
	Output        string `yaml:"ddr.output"`
	Reproducible  bool   `yaml:"ddr.reproducible"`
}

// Load reads path and returns the driver.Option values it describes, in
// the fixed order NameTrusted, NameUntrusted, Implementor, Output,
// Reproducible, so driver.Config.Apply's first-error-wins behavior is
// deterministic regardless of the file's own key order.
func Load(path string) ([]driver.Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("driver/options: %w", err)
	}
	return Parse(data)
}

// Parse decodes data as a driver option document.
func Parse(data []byte) ([]driver.Option, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("driver/options: %w", err)
	}

	var opts []driver.Option
	if doc.NameTrusted != "" {
		opts = append(opts, driver.WithNameTrusted(doc.NameTrusted))
	}
	if doc.NameUntrusted != "" {
		opts = append(opts, driver.WithNameUntrusted(doc.NameUntrusted))
	}
	if doc.Implementor != "" {
		opts = append(opts, driver.WithImplementor(doc.Implementor))
	}
	if doc.Output != "" {
		opts = append(opts, driver.WithOutput(doc.Output))
	}
	opts = append(opts, driver.WithReproducible(doc.Reproducible))
	return opts, nil
}
