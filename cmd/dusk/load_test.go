package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusklang/dusk/op"
)

const samplePayload = `{
  "name": "sample",
  "mode": "eval",
  "instructions": [
    {"op": "LOAD_CONST", "arg": 0},
    {"op": "LOAD_CONST", "arg": 1},
    {"op": "BINARY_OP", "arg": 1},
    {"op": "RETURN_VALUE"}
  ],
  "constants": [
    {"type": "int", "value": 2},
    {"type": "int", "value": 3}
  ]
}`

func TestLoadCodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(samplePayload), 0o644))

	code, err := loadCode(path)
	require.NoError(t, err)
	require.Equal(t, 4, code.InstructionCount())
	require.Equal(t, op.LoadConst, code.InstructionAt(0).Op)
	require.Equal(t, op.ReturnValue, code.InstructionAt(3).Op)
	require.Equal(t, 2, code.ConstantCount())
}

func TestOpByNameUnknownOpcode(t *testing.T) {
	_, ok := opByName("NOT_A_REAL_OPCODE")
	require.False(t, ok)
}
