package options_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ddr/ddrgen/driver"
	"github.com/go-ddr/ddrgen/driver/options"
)

func TestParseAppliesEveryRecognizedKey(t *testing.T) {
	doc := []byte(`
ddr.name.trusted: plpython
ddr.name.untrusted: plpythonu
ddr.implementor: postgresql_83
ddr.output: custom.ddr
ddr.reproducible: true
`)

	opts, err := options.Parse(doc)
	require.NoError(t, err)

	cfg, err := driver.NewConfig(opts...)
	require.NoError(t, err)

	assert.Equal(t, "plpython", cfg.NameTrusted)
	assert.Equal(t, "plpythonu", cfg.NameUntrusted)
	assert.True(t, cfg.HasImplementor)
	assert.Equal(t, "postgresql_83", cfg.Implementor.Folded())
	assert.Equal(t, "custom.ddr", cfg.Output)
	assert.True(t, cfg.Reproducible)
}

func TestParseOmittedKeysFallBackToDefaults(t *testing.T) {
	opts, err := options.Parse([]byte(`ddr.output: only-this.ddr`))
	require.NoError(t, err)

	cfg, err := driver.NewConfig(opts...)
	require.NoError(t, err)

	assert.Equal(t, "java", cfg.NameTrusted)
	assert.Equal(t, "only-this.ddr", cfg.Output)
	assert.False(t, cfg.HasImplementor)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := options.Parse([]byte("not: [valid: yaml"))
	assert.Error(t, err)
}

func TestParsePropagatesOptionValidationError(t *testing.T) {
	opts, err := options.Parse([]byte("ddr.name.trusted: \"has space\""))
	require.NoError(t, err)

	_, err = driver.NewConfig(opts...)
	require.Error(t, err)
	var cfgErr *driver.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := options.Load("/nonexistent/path/does-not-exist.yaml")
	assert.Error(t, err)
}
