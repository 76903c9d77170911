package fixturelang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waveling/internal/dtype"
)

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse("test.fx", src)
	require.NoError(t, err)
	return f
}

func TestLowerDeclaresInputsOutputsPropertiesAndStates(t *testing.T) {
	src := `
input in: f32x1;
output out: f32x2;
property gain: f64;
state acc: f32x1[4];
stage {
	write out = read in;
}
`
	f := mustParse(t, src)
	prog, diags := Lower(f)
	require.Nil(t, diags)
	require.NotNil(t, prog)

	require.Len(t, prog.Inputs, 1)
	assert.Equal(t, dtype.VectorDescriptor{Primitive: dtype.F32, Width: 1}, prog.Inputs[0].Type)
	require.Len(t, prog.Outputs, 1)
	assert.Equal(t, dtype.VectorDescriptor{Primitive: dtype.F32, Width: 2}, prog.Outputs[0].Type)
	require.Len(t, prog.Properties, 1)
	require.Len(t, prog.States, 1)
	assert.Equal(t, 4, prog.States[0].Length)
}

func TestLowerRejectsNonF64Property(t *testing.T) {
	src := `
property gain: f32;
stage {}
`
	f := mustParse(t, src)
	_, diags := Lower(f)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "f64")
}

func TestLowerReportsUnknownNames(t *testing.T) {
	src := `
output out: f32x1;
stage {
	write out = read missing;
}
`
	f := mustParse(t, src)
	_, diags := Lower(f)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "missing")
}

func TestLowerBuildsArithmeticExpressionTree(t *testing.T) {
	src := `
input a: f32x1;
input b: f32x1;
output out: f32x1;
stage {
	write out = (read a + read b) * cast<f32>(2);
}
`
	f := mustParse(t, src)
	prog, diags := Lower(f)
	require.Nil(t, diags)
	require.NotNil(t, prog)
}

func TestLowerRelativeStateAccess(t *testing.T) {
	src := `
input in: f32x1;
output out: f32x1;
state buf: f32x1[3];
stage {
	write out = state buf~[0 - 2];
	let buf[0] = read in;
}
`
	f := mustParse(t, src)
	prog, diags := Lower(f)
	require.Nil(t, diags)
	require.NotNil(t, prog)
}
