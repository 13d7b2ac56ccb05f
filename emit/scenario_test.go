package emit_test

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/annotation"
	"github.com/go-ddr/ddrgen/emit"
	"github.com/go-ddr/ddrgen/schedule"
)

// TestRenderedInstallOrderIsExecutable plays the emitted install
// statements back against a mocked database/sql connection, in the
// order Schedule produced them, asserting the scheduler's topological
// order the same way a deployment tool would: by actually running each
// statement through a driver and requiring every expectation be met in
// sequence.
func TestRenderedInstallOrderIsExecutable(t *testing.T) {
	schema := annotation.NewSQLAction("pkg.Schema")
	schema.ExplicitProvides = []string{"widgets_schema"}
	schema.Install = []string{"CREATE SCHEMA widgets;"}
	schema.Remove = []string{"DROP SCHEMA widgets;"}

	table := annotation.NewSQLAction("pkg.Table")
	table.ExplicitRequires = []string{"widgets_schema"}
	table.Install = []string{"CREATE TABLE widgets.t (id int);"}
	table.Remove = []string{"DROP TABLE widgets.t;"}

	sink := &ddr.CollectingSink{}
	schema.Characterize(sink)
	table.Characterize(sink)
	require.False(t, sink.HasErrors(), "characterize errors: %v", sink.Errors())

	result, ok := schedule.Schedule([]annotation.Snippet{table, schema}, sink, schedule.Options{})
	require.True(t, ok, "diagnostics: %v", sink.Errors())

	text, ok := emit.Render(result, sink)
	require.True(t, ok, "diagnostics: %v", sink.Errors())
	assert.Contains(t, text, "CREATE SCHEMA widgets;")
	assert.Contains(t, text, "CREATE TABLE widgets.t")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE SCHEMA widgets").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE widgets.t").WillReturnResult(sqlmock.NewResult(0, 0))

	runStatements(t, db, result.Install, annotation.Snippet.DeployStrings)
	require.NoError(t, mock.ExpectationsWereMet(), "install statements must run in the scheduler's own order")
}

// TestRenderedRemoveOrderIsExecutable mirrors the install-order test for
// the remove sequence, which Schedule produces in the reverse
// dependency order: the table must be dropped before the schema that
// provides it.
func TestRenderedRemoveOrderIsExecutable(t *testing.T) {
	schema := annotation.NewSQLAction("pkg.Schema")
	schema.ExplicitProvides = []string{"widgets_schema"}
	schema.Install = []string{"CREATE SCHEMA widgets;"}
	schema.Remove = []string{"DROP SCHEMA widgets;"}

	table := annotation.NewSQLAction("pkg.Table")
	table.ExplicitRequires = []string{"widgets_schema"}
	table.Install = []string{"CREATE TABLE widgets.t (id int);"}
	table.Remove = []string{"DROP TABLE widgets.t;"}

	sink := &ddr.CollectingSink{}
	schema.Characterize(sink)
	table.Characterize(sink)
	require.False(t, sink.HasErrors(), "characterize errors: %v", sink.Errors())

	result, ok := schedule.Schedule([]annotation.Snippet{table, schema}, sink, schedule.Options{})
	require.True(t, ok, "diagnostics: %v", sink.Errors())

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DROP TABLE widgets.t").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP SCHEMA widgets").WillReturnResult(sqlmock.NewResult(0, 0))

	runStatements(t, db, result.Remove, annotation.Snippet.UndeployStrings)
	require.NoError(t, mock.ExpectationsWereMet(), "remove statements must run in reverse dependency order")
}

func runStatements(t *testing.T, db *sql.DB, snippets []annotation.Snippet, extract func(annotation.Snippet) []string) {
	t.Helper()
	for _, sn := range snippets {
		for _, stmt := range extract(sn) {
			_, err := db.Exec(stmt)
			require.NoError(t, err)
		}
	}
}
