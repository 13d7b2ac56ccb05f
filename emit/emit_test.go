package emit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/annotation"
	"github.com/go-ddr/ddrgen/emit"
	"github.com/go-ddr/ddrgen/identifier"
	"github.com/go-ddr/ddrgen/schedule"
)

func characterize(t *testing.T, snippets ...annotation.Snippet) *ddr.CollectingSink {
	t.Helper()
	sink := &ddr.CollectingSink{}
	for _, s := range snippets {
		s.Characterize(sink)
	}
	require.False(t, sink.HasErrors(), "characterize errors: %v", sink.Errors())
	return sink
}

func TestRenderSkeletonAndExplicitOrdering(t *testing.T) {
	a := annotation.NewSQLAction("pkg.A")
	a.ExplicitProvides = []string{"x"}
	a.Install = []string{"CREATE SCHEMA x;"}
	a.Remove = []string{"DROP SCHEMA x;"}

	b := annotation.NewSQLAction("pkg.B")
	b.ExplicitRequires = []string{"x"}
	b.Install = []string{"CREATE TABLE x.t (id int);"}
	b.Remove = []string{"DROP TABLE x.t;"}

	sink := characterize(t, a, b)
	result, ok := schedule.Schedule([]annotation.Snippet{a, b}, sink, schedule.Options{})
	require.True(t, ok)

	text, ok := emit.Render(result, sink)
	require.True(t, ok, "diagnostics: %v", sink.Errors())

	require.True(t, strings.HasPrefix(text, "SQLActions[]={\n"))
	require.True(t, strings.HasSuffix(text, "\n}\n"))

	installStart := strings.Index(text, `"BEGIN INSTALL`)
	removeStart := strings.Index(text, `"BEGIN REMOVE`)
	require.GreaterOrEqual(t, installStart, 0)
	require.GreaterOrEqual(t, removeStart, 0)
	require.Less(t, installStart, removeStart)

	require.True(t, strings.Contains(text, "END INSTALL"))
	require.True(t, strings.Contains(text, "END REMOVE"))

	schemaIdx := strings.Index(text, "CREATE SCHEMA x;")
	tableIdx := strings.Index(text, "CREATE TABLE x.t")
	require.GreaterOrEqual(t, schemaIdx, 0)
	require.GreaterOrEqual(t, tableIdx, 0)
	require.Less(t, schemaIdx, tableIdx, "A's schema must install before B's table")

	dropTableIdx := strings.Index(text, "DROP TABLE x.t;")
	dropSchemaIdx := strings.Index(text, "DROP SCHEMA x;")
	require.GreaterOrEqual(t, dropTableIdx, 0)
	require.GreaterOrEqual(t, dropSchemaIdx, 0)
	require.Less(t, dropTableIdx, dropSchemaIdx, "B's table must drop before A's schema")
}

func TestRenderWrapsImplementorConditionBothDirections(t *testing.T) {
	// a and b share an implementor name but no explicit provides/requires
	// relation of their own: the only thing ordering them is the shared
	// implementor condition (spec §4.9 scenario 3), which must hold in
	// both the install and remove block.
	a := annotation.NewSQLAction("pkg.A")
	a.Implementor, a.HasImplementor = identifier.NewSimpleFromSQL("postgresql_83"), true
	a.Install = []string{"SELECT pg_check_version();"}
	a.Remove = []string{"SELECT pg_check_version();"}

	b := annotation.NewSQLAction("pkg.B")
	b.Implementor, b.HasImplementor = identifier.NewSimpleFromSQL("postgresql_83"), true
	b.Install = []string{"ALTER TABLE t ADD COLUMN c int;"}
	b.Remove = []string{"ALTER TABLE t DROP COLUMN c;"}

	sink := characterize(t, a, b)
	result, ok := schedule.Schedule([]annotation.Snippet{a, b}, sink, schedule.Options{})
	require.True(t, ok)

	text, ok := emit.Render(result, sink)
	require.True(t, ok, "diagnostics: %v", sink.Errors())

	assert.Contains(t, text, "BEGIN postgresql_83\nSELECT pg_check_version();\nEND postgresql_83;")
	assert.Contains(t, text, "BEGIN postgresql_83\nALTER TABLE t ADD COLUMN c int;\nEND postgresql_83;")
}

func TestRenderRejectsUnterminatedQuote(t *testing.T) {
	bad := annotation.NewSQLAction("pkg.Bad")
	bad.Install = []string{`SELECT 'unterminated;`}

	sink := characterize(t, bad)
	result, ok := schedule.Schedule([]annotation.Snippet{bad}, sink, schedule.Options{})
	require.True(t, ok)

	_, renderOK := emit.Render(result, sink)
	assert.False(t, renderOK)
	assert.True(t, sink.HasErrors())
}

func TestRenderAcceptsDoubledQuoteAsEscape(t *testing.T) {
	ok1 := annotation.NewSQLAction("pkg.Ok1")
	ok1.Install = []string{`SELECT e'it''s fine';`}

	sink := characterize(t, ok1)
	result, scheduleOK := schedule.Schedule([]annotation.Snippet{ok1}, sink, schedule.Options{})
	require.True(t, scheduleOK)

	text, ok := emit.Render(result, sink)
	require.True(t, ok, "diagnostics: %v", sink.Errors())
	assert.Contains(t, text, `SELECT e'it''s fine';`)
}

func TestRenderRejectsInvalidImplementorAlphabet(t *testing.T) {
	bad := annotation.NewSQLAction("pkg.Bad")
	bad.Implementor, bad.HasImplementor = identifier.NewSimpleFromSQL(`"pg 83"`), true
	bad.Install = []string{"SELECT 1;"}
	bad.Remove = []string{"SELECT 1;"}

	sink := characterize(t, bad)
	result, scheduleOK := schedule.Schedule([]annotation.Snippet{bad}, sink, schedule.Options{})
	require.True(t, scheduleOK)

	_, ok := emit.Render(result, sink)
	assert.False(t, ok)
	assert.True(t, sink.HasErrors())
}
