package dis

import (
	"strings"
	"testing"

	"github.com/dusklang/dusk/bytecode"
	"github.com/dusklang/dusk/object"
	"github.com/dusklang/dusk/op"
)

func TestDisassembleAnnotatesConstantsAndNames(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{
		Name: "sample",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadConst, Arg: 0, Block: -1},
			{Op: op.LoadNameRef, Arg: 0, Block: -1},
			{Op: op.BinaryOp, Arg: int(op.Add), Block: -1},
			{Op: op.Call, Arg: 2, Block: -1},
			{Op: op.ReturnValue, Block: -1},
		},
		Constants: []any{object.NewInt(41)},
		Names:     []bytecode.Name{{Name: "x", Scope: bytecode.ScopeLocal}},
	})

	rows := Disassemble(code)
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[0].Name != "LOAD_CONST" || rows[0].Annotation != "41" {
		t.Fatalf("expected LOAD_CONST annotated with constant repr, got %+v", rows[0])
	}
	if rows[1].Name != "LOAD_NAME_REF" || rows[1].Annotation != "x" {
		t.Fatalf("expected LOAD_NAME_REF annotated with name, got %+v", rows[1])
	}
	if rows[2].Annotation != "+" {
		t.Fatalf("expected BINARY_OP annotated with operator symbol, got %+v", rows[2])
	}
	if rows[3].Annotation != "argc=2 kwargc=0" {
		t.Fatalf("expected CALL annotated with arg/kwarg counts, got %+v", rows[3])
	}

	var buf strings.Builder
	Print(rows, &buf)
	out := buf.String()
	if !strings.Contains(out, "OFFSET") || !strings.Contains(out, "LOAD_CONST") {
		t.Fatalf("expected printed table to contain header and opcode names, got %q", out)
	}
}
