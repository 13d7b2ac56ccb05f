package annotation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/annotation"
	"github.com/go-ddr/ddrgen/identifier"
)

func qname(local string) identifier.Qualified {
	return identifier.NewQualified(identifier.NewLocalSimple(identifier.NewSimpleFromSQL(local)))
}

func mustOp(t *testing.T, sym string) identifier.Operator {
	t.Helper()
	op, err := identifier.NewOperator(sym)
	require.NoError(t, err)
	return op
}

func TestSQLActionCharacterizeReturnsExplicitTags(t *testing.T) {
	a := annotation.NewSQLAction("pkg.Migrate")
	a.ExplicitProvides = []string{"seed-data"}
	a.Install = []string{"INSERT INTO t VALUES (1);"}
	a.Remove = []string{"DELETE FROM t;"}

	var sink ddr.CollectingSink
	tags := a.Characterize(&sink)
	require.Len(t, tags, 1)
	assert.False(t, sink.HasErrors())
	assert.Equal(t, a.Install, a.DeployStrings())
	assert.Equal(t, a.Remove, a.UndeployStrings())
}

func TestFunctionDefaultsNameFromHostMethod(t *testing.T) {
	f := annotation.NewFunction("pkg.Widget.Frobnicate")
	f.HostSimpleName = "frobnicate"
	f.Parameters = []annotation.Parameter{{Name: "n", Type: identifier.TypeInteger}}
	f.ReturnType = identifier.TypeText

	var sink ddr.CollectingSink
	tags := f.Characterize(&sink)
	require.False(t, sink.HasErrors())
	require.NotEmpty(t, tags)
	assert.Equal(t, "frobnicate", f.Name.Local().String())
}

func TestFunctionLanguageNameDefaultsWithoutDriver(t *testing.T) {
	trusted := annotation.NewFunction("pkg.Widget.Frobnicate")
	trusted.HostSimpleName = "frobnicate"
	trusted.ReturnType = identifier.TypeInteger

	var sink ddr.CollectingSink
	trusted.Characterize(&sink)
	require.False(t, sink.HasErrors())
	assert.Contains(t, trusted.DeployStrings()[0], "LANGUAGE java ")

	unsandboxed := annotation.NewFunction("pkg.Widget.Frobnicate")
	unsandboxed.HostSimpleName = "frobnicate"
	unsandboxed.ReturnType = identifier.TypeInteger
	unsandboxed.Trust = annotation.Unsandboxed
	unsandboxed.Characterize(&sink)
	require.False(t, sink.HasErrors())
	assert.Contains(t, unsandboxed.DeployStrings()[0], "LANGUAGE javaU ")
}

func TestFunctionLanguageNameUsesConfiguredHostLanguageNames(t *testing.T) {
	f := annotation.NewFunction("pkg.Widget.Frobnicate")
	f.HostSimpleName = "frobnicate"
	f.ReturnType = identifier.TypeInteger
	f.Trust = annotation.Unsandboxed

	var configurable annotation.HostLanguageConfigurable = f
	configurable.SetHostLanguageNames("plpython", "plpythonu")

	var sink ddr.CollectingSink
	f.Characterize(&sink)
	require.False(t, sink.HasErrors())
	assert.Contains(t, f.DeployStrings()[0], "LANGUAGE plpythonu ")
}

func TestFunctionTrustAndLanguageMutuallyExclusive(t *testing.T) {
	f := annotation.NewFunction("pkg.Widget.Frobnicate")
	f.HostSimpleName = "frobnicate"
	f.Trust = annotation.Unsandboxed
	f.ExplicitLanguage = "plperl"

	var sink ddr.CollectingSink
	f.Characterize(&sink)
	assert.True(t, sink.HasErrors())
}

func TestFunctionVariadicRequiresTrailingArray(t *testing.T) {
	f := annotation.NewFunction("pkg.Widget.Sum")
	f.HostSimpleName = "sum"
	f.Variadic = true
	f.Parameters = []annotation.Parameter{{Name: "n", Type: identifier.TypeInteger}}
	f.ReturnType = identifier.TypeInteger

	var sink ddr.CollectingSink
	f.Characterize(&sink)
	assert.True(t, sink.HasErrors(), "variadic without a trailing array parameter must fail")
}

func TestFunctionShapeDecisionTable(t *testing.T) {
	cases := []struct {
		name       string
		out        int
		returnType identifier.DBType
		hostShape  annotation.HostShape
		wantErr    bool
		wantSet    bool
	}{
		{name: "none/none scalar", hostShape: annotation.HostShapeScalar},
		{name: "none/RECORD", returnType: identifier.TypeRecord},
		{name: "none/other composite assumed", returnType: identifier.TypeText},
		{name: "one/none noncomposite", out: 1},
		{name: "one/RECORD composite warn", out: 1, returnType: identifier.TypeRecord},
		{name: "one/other error", out: 1, returnType: identifier.TypeText, wantErr: true},
		{name: "many/none composite", out: 2},
		{name: "many/any error", out: 2, returnType: identifier.TypeText, wantErr: true},
		{name: "iterator shape", hostShape: annotation.HostShapeIterator, wantSet: true},
		{name: "provider shape", hostShape: annotation.HostShapeProvider, wantSet: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := annotation.NewFunction("pkg.Widget.M")
			f.HostSimpleName = "m"
			f.HostShape = c.hostShape
			f.ReturnType = c.returnType
			for i := 0; i < c.out; i++ {
				f.Out = append(f.Out, annotation.OutParameter{Name: "o", Type: identifier.TypeInteger})
			}
			var sink ddr.CollectingSink
			f.Characterize(&sink)
			if c.wantErr {
				assert.True(t, sink.HasErrors(), "expected an error")
				return
			}
			require.False(t, sink.HasErrors(), sink.Diagnostics)
			header := f.DeployStrings()[0]
			assert.Equal(t, c.wantSet, strings.Contains(header, "SETOF"))
		})
	}
}

func TestTriggerTruncateForbidsRowScope(t *testing.T) {
	tr := annotation.NewTrigger("pkg.Widget.OnTruncate")
	tr.Name = "on_truncate"
	tr.Events = []annotation.TriggerEvent{annotation.Truncate}
	tr.Scope = annotation.ScopeRow
	tr.Called = annotation.After
	tr.Table = qname("widgets")

	var sink ddr.CollectingSink
	tags := tr.Characterize(&sink)
	assert.Empty(t, tags)
	assert.True(t, sink.HasErrors())
}

func TestTriggerInsteadOfForbidsWhen(t *testing.T) {
	tr := annotation.NewTrigger("pkg.Widget.OnInsert")
	tr.Name = "on_insert"
	tr.Events = []annotation.TriggerEvent{annotation.Insert}
	tr.Called = annotation.InsteadOf
	tr.When = "NEW.x > 0"
	tr.Table = qname("widgets")

	var sink ddr.CollectingSink
	tr.Characterize(&sink)
	assert.True(t, sink.HasErrors())
}

func TestTriggerValidConstraintTrigger(t *testing.T) {
	tr := annotation.NewTrigger("pkg.Widget.CheckFK")
	tr.Name = "check_fk"
	tr.Events = []annotation.TriggerEvent{annotation.Insert}
	tr.Called = annotation.After
	tr.Scope = annotation.ScopeRow
	tr.Constraint = true
	tr.Table = qname("widgets")

	var sink ddr.CollectingSink
	tr.Characterize(&sink)
	assert.False(t, sink.HasErrors(), sink.Diagnostics)
}

func TestBaseUDTPassByValueRequiresFixedLength(t *testing.T) {
	u := annotation.NewBaseUDT("pkg.Point")
	u.Name = qname("point_t")
	u.Input = qname("point_in")
	u.Output = qname("point_out")
	u.Receive = qname("point_recv")
	u.Send = qname("point_send")
	u.PassedByValue = true
	u.InternalLength = 12
	u.Category = 'U'

	var sink ddr.CollectingSink
	tags := u.Characterize(&sink)
	assert.Empty(t, tags)
	assert.True(t, sink.HasErrors())
}

func TestBaseUDTValidDeclaration(t *testing.T) {
	u := annotation.NewBaseUDT("pkg.Point")
	u.Name = qname("point_t")
	u.Input = qname("point_in")
	u.Output = qname("point_out")
	u.Receive = qname("point_recv")
	u.Send = qname("point_send")
	u.PassedByValue = false
	u.InternalLength = -1
	u.Storage = annotation.StorageExtended
	u.Category = 'U'

	var sink ddr.CollectingSink
	tags := u.Characterize(&sink)
	require.False(t, sink.HasErrors(), sink.Diagnostics)
	require.NotEmpty(t, tags)
	assert.Contains(t, u.DeployStrings()[0], "CREATE TYPE")
	assert.Contains(t, u.UndeployStrings()[0], "CASCADE")
}

func TestMappedUDTProvidesOnlyWithAttributes(t *testing.T) {
	bare := annotation.NewMappedUDT("pkg.Money")
	bare.Name = qname("money_t")
	bare.ClassName = "com.example.Money"
	var sink ddr.CollectingSink
	assert.Empty(t, bare.Characterize(&sink))

	structured := annotation.NewMappedUDT("pkg.Money")
	structured.Name = qname("money_t")
	structured.ClassName = "com.example.Money"
	structured.Attributes = []annotation.UDTAttribute{{Name: "cents", Type: identifier.TypeBigInt}}
	assert.NotEmpty(t, structured.Characterize(&sink))
	assert.Contains(t, structured.DeployStrings()[0], "CREATE TYPE")
	assert.Contains(t, structured.DeployStrings()[1], "add_type_mapping")
}

func TestCastRejectsSameTypeWithoutModifier(t *testing.T) {
	c := annotation.NewCast("pkg.Widget.castSelf")
	c.From = identifier.TypeInteger
	c.To = identifier.TypeInteger
	c.Path = annotation.PathFunction
	c.HasFunction = true
	c.FunctionName = qname("widget_cast")
	c.FunctionSignature = []identifier.DBType{identifier.TypeInteger}

	var sink ddr.CollectingSink
	c.Characterize(&sink)
	assert.True(t, sink.HasErrors())
}

func TestCastBinaryCoercion(t *testing.T) {
	c := annotation.NewCast("pkg.Widget.castBinary")
	c.From = identifier.TypeInteger
	c.To = identifier.TypeBigInt
	c.Path = annotation.PathBinary

	var sink ddr.CollectingSink
	c.Characterize(&sink)
	require.False(t, sink.HasErrors(), sink.Diagnostics)
	assert.Contains(t, c.DeployStrings()[0], "WITHOUT FUNCTION")
}

func TestOperatorSyntheticRequiresResolution(t *testing.T) {
	op := annotation.NewOperator("pkg.Widget.lt")
	op.Symbol = mustOp(t, "<%")
	op.SyntheticToken = "TWIN"
	op.Unresolvable = true

	var sink ddr.CollectingSink
	op.Characterize(&sink)
	assert.True(t, sink.HasErrors())
}

func TestOperatorNonSyntheticDeploy(t *testing.T) {
	op := annotation.NewOperator("pkg.Widget.lt")
	op.Symbol = mustOp(t, "<%")
	op.HasFunction = true
	op.FunctionName = qname("widget_lt")
	op.LeftType, op.HasLeft = identifier.TypeInteger, true
	op.RightType, op.HasRight = identifier.TypeInteger, true

	var sink ddr.CollectingSink
	tags := op.Characterize(&sink)
	require.False(t, sink.HasErrors(), sink.Diagnostics)
	require.NotEmpty(t, tags)
	assert.Contains(t, op.DeployStrings()[0], "CREATE OPERATOR")
}

func TestAggregateMissingFinalizerWithDirectArgsErrors(t *testing.T) {
	ag := annotation.NewAggregate("pkg.Widget.sumAll")
	ag.Name = qname("sum_all")
	ag.DirectArgs = []identifier.DBType{identifier.TypeInteger}
	ag.AggregatedArgs = []identifier.DBType{identifier.TypeInteger}
	ag.Plan.Accumulate = qname("widget_accum")
	ag.Plan.AccumulateSignature = []identifier.DBType{identifier.TypeBigInt, identifier.TypeInteger}
	ag.Plan.StateType = identifier.TypeBigInt

	var sink ddr.CollectingSink
	ag.Characterize(&sink)
	assert.True(t, sink.HasErrors())
}

func TestAggregateValidSimpleSum(t *testing.T) {
	ag := annotation.NewAggregate("pkg.Widget.sum")
	ag.Name = qname("widget_sum")
	ag.AggregatedArgs = []identifier.DBType{identifier.TypeInteger}
	ag.Plan.Accumulate = qname("widget_accum")
	ag.Plan.AccumulateSignature = []identifier.DBType{identifier.TypeBigInt, identifier.TypeInteger}
	ag.Plan.StateType = identifier.TypeBigInt
	ag.Plan.Finish = qname("widget_finish")
	ag.Plan.HasFinish = true

	var sink ddr.CollectingSink
	tags := ag.Characterize(&sink)
	require.False(t, sink.HasErrors(), sink.Diagnostics)
	require.NotEmpty(t, tags)
	assert.Contains(t, ag.DeployStrings()[0], "CREATE AGGREGATE")
}
