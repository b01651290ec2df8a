package builtins

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusklang/dusk/object"
)

func setup(t *testing.T) (*object.Module, *bytes.Buffer) {
	t.Helper()
	mod := object.NewModule("builtins")
	var buf bytes.Buffer
	Register(mod, &buf)
	return mod, &buf
}

func call(t *testing.T, mod *object.Module, name string, args ...object.Object) (object.Object, error) {
	t.Helper()
	v, ok := mod.GetAttr(name)
	require.True(t, ok, "builtin %q not registered", name)
	fn, ok := v.(*object.NativeFunction)
	require.True(t, ok)
	return fn.Call(args)
}

func TestLen(t *testing.T) {
	mod, _ := setup(t)
	v, err := call(t, mod, "len", object.NewList([]object.Object{object.NewInt(1), object.NewInt(2)}))
	require.NoError(t, err)
	require.Equal(t, int64(2), v.(*object.Int).Value())

	_, err = call(t, mod, "len", object.NewInt(5))
	require.Error(t, err)
}

func TestPrintWritesToStdout(t *testing.T) {
	mod, buf := setup(t)
	_, err := call(t, mod, "print", object.NewStr("hi"), object.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, "hi 1\n", buf.String())
}

func TestRangeArgForms(t *testing.T) {
	mod, _ := setup(t)
	v, err := call(t, mod, "range", object.NewInt(5))
	require.NoError(t, err)
	r := v.(*object.Range)
	require.Equal(t, int64(0), r.Start)
	require.Equal(t, int64(5), r.Stop)
	require.Equal(t, int64(1), r.Step)

	v, err = call(t, mod, "range", object.NewInt(1), object.NewInt(10), object.NewInt(2))
	require.NoError(t, err)
	r = v.(*object.Range)
	require.Equal(t, int64(1), r.Start)
	require.Equal(t, int64(10), r.Stop)
	require.Equal(t, int64(2), r.Step)
}

func TestIsinstanceAcrossMRO(t *testing.T) {
	mod, _ := setup(t)
	base := object.NewClass("Base", nil)
	derived := object.NewClass("Derived", base)
	inst := object.NewInstance(derived)

	v, err := call(t, mod, "isinstance", inst, base)
	require.NoError(t, err)
	require.True(t, bool(v.(object.Bool)))

	other := object.NewClass("Other", nil)
	v, err = call(t, mod, "isinstance", inst, other)
	require.NoError(t, err)
	require.False(t, bool(v.(object.Bool)))
}

func TestAssertFailureMessage(t *testing.T) {
	mod, _ := setup(t)
	_, err := call(t, mod, "assert", object.False, object.NewStr("boom"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")

	_, err = call(t, mod, "assert", object.True)
	require.NoError(t, err)
}
