package driver_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/annotation"
	"github.com/go-ddr/ddrgen/driver"
	"github.com/go-ddr/ddrgen/identifier"
)

func TestDriverSingleRoundSchedulesAndEmits(t *testing.T) {
	a := annotation.NewSQLAction("pkg.A")
	a.ExplicitProvides = []string{"x"}
	a.Install = []string{"CREATE SCHEMA x;"}
	a.Remove = []string{"DROP SCHEMA x;"}

	b := annotation.NewSQLAction("pkg.B")
	b.ExplicitRequires = []string{"x"}
	b.Install = []string{"CREATE TABLE x.t (id int);"}
	b.Remove = []string{"DROP TABLE x.t;"}

	cfg := driver.MustNewConfig()
	sink := &ddr.CollectingSink{}
	d := driver.New(*cfg, sink)

	require.NoError(t, d.Round(context.Background(), []annotation.Snippet{a, b}))

	text, ok := d.Finish()
	require.True(t, ok, "diagnostics: %v", sink.Errors())
	assert.True(t, strings.Contains(text, "CREATE SCHEMA x;"))
	assert.Less(t, strings.Index(text, "CREATE SCHEMA x;"), strings.Index(text, "CREATE TABLE x.t"))
}

func TestDriverLaterRoundReplacesSameOwnerAndKind(t *testing.T) {
	cfg := driver.MustNewConfig()
	sink := &ddr.CollectingSink{}
	d := driver.New(*cfg, sink)

	first := annotation.NewSQLAction("pkg.A")
	first.Install = []string{"SELECT 1;"}
	require.NoError(t, d.Round(context.Background(), []annotation.Snippet{first}))

	second := annotation.NewSQLAction("pkg.A")
	second.Install = []string{"SELECT 2;"}
	require.NoError(t, d.Round(context.Background(), []annotation.Snippet{second}))

	snippets := d.Snippets()
	require.Len(t, snippets, 1, "the second round's re-annotation of pkg.A replaces the first, not appends")
	assert.Equal(t, []string{"SELECT 2;"}, snippets[0].DeployStrings())
}

func TestDriverFatalDiagnosticSkipsEmission(t *testing.T) {
	consumer := annotation.NewSQLAction("pkg.B")
	consumer.ExplicitRequires = []string{"nothing_provides_this"}
	consumer.Install = []string{"SELECT 1;"}

	cfg := driver.MustNewConfig()
	sink := &ddr.CollectingSink{}
	d := driver.New(*cfg, sink)

	require.NoError(t, d.Round(context.Background(), []annotation.Snippet{consumer}))

	_, ok := d.Finish()
	assert.False(t, ok)
	assert.True(t, sink.HasErrors())
}

func TestDriverRoundInjectsConfiguredHostLanguageNames(t *testing.T) {
	f := annotation.NewFunction("pkg.Widget.Frobnicate")
	f.HostSimpleName = "frobnicate"
	f.ReturnType = identifier.TypeInteger
	f.Trust = annotation.Unsandboxed

	cfg := driver.MustNewConfig(driver.WithNameTrusted("plpython"), driver.WithNameUntrusted("plpythonu"))
	sink := &ddr.CollectingSink{}
	d := driver.New(*cfg, sink)

	require.NoError(t, d.Round(context.Background(), []annotation.Snippet{f}))

	text, ok := d.Finish()
	require.True(t, ok, "diagnostics: %v", sink.Errors())
	assert.Contains(t, text, "LANGUAGE plpythonu ")
	assert.NotContains(t, text, "LANGUAGE javaU")
}

func TestDriverMultipleRoundsAccumulate(t *testing.T) {
	cfg := driver.MustNewConfig()
	sink := &ddr.CollectingSink{}
	d := driver.New(*cfg, sink)

	a := annotation.NewSQLAction("pkg.A")
	a.ExplicitProvides = []string{"x"}
	a.Install = []string{"CREATE SCHEMA x;"}
	a.Remove = []string{"DROP SCHEMA x;"}
	require.NoError(t, d.Round(context.Background(), []annotation.Snippet{a}))

	b := annotation.NewSQLAction("pkg.B")
	b.ExplicitRequires = []string{"x"}
	b.Install = []string{"CREATE TABLE x.t (id int);"}
	b.Remove = []string{"DROP TABLE x.t;"}
	require.NoError(t, d.Round(context.Background(), []annotation.Snippet{b}))

	text, ok := d.Finish()
	require.True(t, ok, "diagnostics: %v", sink.Errors())
	assert.Less(t, strings.Index(text, "CREATE SCHEMA x;"), strings.Index(text, "CREATE TABLE x.t"))
}
