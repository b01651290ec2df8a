package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dusklang/dusk/bytecode"
	"github.com/dusklang/dusk/object"
	"github.com/dusklang/dusk/op"
)

// codeDoc is the on-disk JSON form of a bytecode.Code, the bridge between
// an external compiler (this module ships none, spec Non-goals) and the
// VM: a compiler front end emits this shape, and "dusk run"/"dusk dis"
// load it directly rather than compiling source themselves.
type codeDoc struct {
	Name         string            `json:"name"`
	Mode         string            `json:"mode"`
	Instructions []instructionDoc  `json:"instructions"`
	Constants    []json.RawMessage `json:"constants"`
	Names        []nameDoc         `json:"names"`
	Blocks       []blockDoc        `json:"blocks"`
	Labels       map[string]int    `json:"labels"`
	Source       string            `json:"source"`
	Filename     string            `json:"filename"`
	LocalCount   int               `json:"localCount"`
	GlobalCount  int               `json:"globalCount"`
	LocalNames   []string          `json:"localNames"`
	GlobalNames  []string          `json:"globalNames"`
}

type instructionDoc struct {
	Op    string `json:"op"`
	Arg   int    `json:"arg"`
	Block int    `json:"block"`
}

type nameDoc struct {
	Name  string `json:"name"`
	Scope string `json:"scope"`
}

type blockDoc struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Kind  string `json:"kind"`
}

// constantDoc tags a constant's wire representation so the loader can
// distinguish, say, an int from a string that happens to look numeric.
type constantDoc struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

func loadCode(path string) (*bytecode.Code, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc codeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	instrs := make([]bytecode.Instruction, len(doc.Instructions))
	for i, id := range doc.Instructions {
		code, ok := opByName(id.Op)
		if !ok {
			return nil, fmt.Errorf("unknown opcode %q at instruction %d", id.Op, i)
		}
		block := id.Block
		if block == 0 && len(doc.Blocks) == 0 {
			block = -1
		}
		instrs[i] = bytecode.Instruction{Op: code, Arg: id.Arg, Block: block}
	}

	consts := make([]any, len(doc.Constants))
	for i, raw := range doc.Constants {
		v, err := decodeConstant(raw)
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		consts[i] = v
	}

	names := make([]bytecode.Name, len(doc.Names))
	for i, n := range doc.Names {
		scope := bytecode.ScopeLocal
		if n.Scope == "global" {
			scope = bytecode.ScopeGlobal
		}
		names[i] = bytecode.Name{Name: n.Name, Scope: scope}
	}

	blocks := make([]bytecode.Block, len(doc.Blocks))
	for i, b := range doc.Blocks {
		kind := op.BlockLoop
		if b.Kind == "with" {
			kind = op.BlockWith
		}
		blocks[i] = bytecode.Block{Start: b.Start, End: b.End, Kind: kind}
	}

	mode := bytecode.Exec
	switch doc.Mode {
	case "eval":
		mode = bytecode.Eval
	case "json":
		mode = bytecode.JSON
	case "repl":
		mode = bytecode.REPL
	}

	return bytecode.NewCode(bytecode.CodeParams{
		Name:         doc.Name,
		IsNamed:      doc.Name != "",
		Mode:         mode,
		Instructions: instrs,
		Constants:    consts,
		Names:        names,
		Blocks:       blocks,
		Labels:       doc.Labels,
		Source:       doc.Source,
		Filename:     doc.Filename,
		LocalCount:   doc.LocalCount,
		GlobalCount:  doc.GlobalCount,
		LocalNames:   doc.LocalNames,
		GlobalNames:  doc.GlobalNames,
	}), nil
}

func decodeConstant(raw json.RawMessage) (any, error) {
	var tagged constantDoc
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return nil, err
	}
	switch tagged.Type {
	case "none":
		return object.None, nil
	case "bool":
		var v bool
		if err := json.Unmarshal(tagged.Value, &v); err != nil {
			return nil, err
		}
		return object.NewBool(v), nil
	case "int":
		var v int64
		if err := json.Unmarshal(tagged.Value, &v); err != nil {
			return nil, err
		}
		return object.NewInt(v), nil
	case "float":
		var v float64
		if err := json.Unmarshal(tagged.Value, &v); err != nil {
			return nil, err
		}
		return object.NewFloat(v), nil
	case "str":
		var v string
		if err := json.Unmarshal(tagged.Value, &v); err != nil {
			return nil, err
		}
		return object.NewStr(v), nil
	default:
		return nil, fmt.Errorf("unsupported constant type %q", tagged.Type)
	}
}

func opByName(name string) (op.Code, bool) {
	for code := op.Code(1); code < 256; code++ {
		if info := op.GetInfo(code); info.Name == name {
			return code, true
		}
	}
	return 0, false
}
