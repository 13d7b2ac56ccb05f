package typemap_test

import (
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ddr/ddrgen/identifier"
	"github.com/go-ddr/ddrgen/typemap"
)

func TestLookupPrimitives(t *testing.T) {
	m := typemap.NewMap()
	m.Freeze()

	dt, ok := m.Lookup(typemap.Go(types.Typ[types.Int64]), false)
	require.True(t, ok)
	assert.Equal(t, identifier.TypeBigInt, dt)

	dt, ok = m.Lookup(typemap.Go(types.Typ[types.String]), false)
	require.True(t, ok)
	assert.Equal(t, identifier.TypeText, dt)
}

func TestLookupBoxedCounterpart(t *testing.T) {
	m := typemap.NewMap()
	m.Freeze()

	dt, ok := m.Lookup(typemap.Go(types.NewPointer(types.Typ[types.Int64])), false)
	require.True(t, ok)
	assert.Equal(t, identifier.TypeBigInt, dt)
}

func TestLookupSuppressesAnyForCovariant(t *testing.T) {
	m := typemap.NewMap()
	m.Freeze()

	// An unrelated named type matches nothing but "any"; covariant lookup
	// must refuse the match, contravariant lookup may accept it.
	unrelated := typemap.Named{QualifiedName: "example.com/pkg.Widget"}
	_, ok := m.Lookup(unrelated, false)
	assert.False(t, ok, "any must be suppressed for covariant (return-type) lookups")

	dt, ok := m.Lookup(unrelated, true)
	require.True(t, ok)
	assert.Equal(t, identifier.TypeAny, dt)
}

func TestNamedFromGoTypeRoundTrips(t *testing.T) {
	m := typemap.NewMap()
	m.Freeze()

	timeType := types.NewNamed(
		types.NewTypeName(0, types.NewPackage("time", "time"), "Time", nil),
		types.NewStruct(nil, nil),
		nil,
	)
	host := typemap.NamedFromGoType(timeType)
	assert.Equal(t, "time.Time", host.Key())

	dt, ok := m.Lookup(host, false)
	require.True(t, ok)
	assert.Equal(t, identifier.TypeTimestamp, dt)
}

func TestArrayElemExcludesByteSlice(t *testing.T) {
	_, ok := typemap.ArrayElem(types.NewSlice(types.Typ[types.Byte]))
	assert.False(t, ok, "[]byte is the bytea scalar mapping, not an array shape")

	elem, ok := typemap.ArrayElem(types.NewSlice(types.Typ[types.Int32]))
	require.True(t, ok)
	assert.Equal(t, "int32", elem.Key())
}

func TestGetSQLTypeExplicitWins(t *testing.T) {
	m := typemap.NewMap()
	m.Freeze()

	dt, err := typemap.GetSQLType(m, typemap.Go(types.Typ[types.Int64]), nil, identifier.TypeVarchar, false, nil, false)
	require.NoError(t, err)
	assert.Equal(t, identifier.TypeVarchar, dt)
}

func TestGetSQLTypeArrayElement(t *testing.T) {
	m := typemap.NewMap()
	m.Freeze()

	dt, err := typemap.GetSQLType(m, nil, typemap.Go(types.Typ[types.Int32]), nil, false, nil, false)
	require.NoError(t, err)
	assert.True(t, dt.IsArray())
	assert.Equal(t, identifier.TypeInteger.String(false), dt.(identifier.Array).Elem.String(false))
}

func TestGetSQLTypeOptionalShortCircuitsToNull(t *testing.T) {
	m := typemap.NewMap()
	m.Freeze()

	dt, err := typemap.GetSQLType(m, typemap.Go(types.Typ[types.String]), nil, nil, false, &typemap.DefaultSpec{Literal: "ignored"}, true)
	require.NoError(t, err)
	assert.Contains(t, dt.String(true), "DEFAULT NULL")
}

func TestGetSQLTypeDefaultLiteralQuotedAndCast(t *testing.T) {
	m := typemap.NewMap()
	m.Freeze()

	dt, err := typemap.GetSQLType(m, typemap.Go(types.Typ[types.String]), nil, nil, false, &typemap.DefaultSpec{Literal: "it's fine"}, false)
	require.NoError(t, err)
	rendered := dt.String(true)
	assert.Contains(t, rendered, "::"+identifier.TypeText.String(false))
	assert.Contains(t, rendered, "DEFAULT "+identifier.EQuote("it's fine"))
	assert.Contains(t, rendered, "''")
}

func TestFreezeOrdersMoreSpecificFirst(t *testing.T) {
	m := typemap.NewMap()
	m.Freeze()

	// int8 is assignable to int8 only (go/types.AssignableTo is exact for
	// distinct basic kinds), so lookups must not cross-match int64.
	dt, ok := m.Lookup(typemap.Go(types.Typ[types.Int8]), false)
	require.True(t, ok)
	assert.Equal(t, identifier.TypeSmallInt, dt)
}
