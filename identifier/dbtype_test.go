package identifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ddr/ddrgen/identifier"
)

func TestParseSQLTypeReserved(t *testing.T) {
	dt, err := identifier.ParseSQLType("varchar")
	require.NoError(t, err)
	assert.False(t, dt.IsArray())
	assert.Equal(t, identifier.TypeVarchar.Name, dt.String(false))
}

func TestParseSQLTypeArray(t *testing.T) {
	dt, err := identifier.ParseSQLType("integer[]")
	require.NoError(t, err)
	assert.True(t, dt.IsArray())
	assert.Equal(t, identifier.TypeInteger.Name+"[]", dt.String(false))
}

func TestParseSQLTypeNamedQualified(t *testing.T) {
	dt, err := identifier.ParseSQLType("pg_catalog.bytea")
	require.NoError(t, err)
	named, ok := dt.(identifier.Named)
	require.True(t, ok)
	assert.Equal(t, "pg_catalog.bytea", named.Name.String())
}

func TestWithDefaultIncludeDefaultToggle(t *testing.T) {
	wrapped := identifier.WithDefault{Type: identifier.TypeInteger, Default: "DEFAULT e'0'::integer"}
	assert.Equal(t, identifier.TypeInteger.Name, wrapped.String(false))
	assert.Equal(t, identifier.TypeInteger.Name+" DEFAULT e'0'::integer", wrapped.String(true))
	assert.Equal(t, identifier.TypeInteger, wrapped.Base())
}

func TestNamedBaseDependTagSource(t *testing.T) {
	_, ok := identifier.NamedBase(identifier.TypeInteger)
	assert.False(t, ok, "reserved types have no Type depend tag")

	dt, err := identifier.ParseSQLType("public.my_udt")
	require.NoError(t, err)
	q, ok := identifier.NamedBase(dt)
	require.True(t, ok)
	assert.Equal(t, "public.my_udt", q.String())

	arr := identifier.Array{Elem: dt}
	q2, ok := identifier.NamedBase(arr)
	require.True(t, ok, "Base() unwraps through Array to reach the Named element")
	assert.Equal(t, q, q2)
}
