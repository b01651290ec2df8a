// Package bytecode provides immutable representations of compiled dusk
// code: the boundary artifact between an external compiler (out of scope
// for this module) and the vm package.
//
// # Key Types
//
//   - [Code]: an immutable compiled code block (module, function, or class
//     body) — co_code, co_consts, co_names, co_blocks, co_labels
//   - [Function]: an immutable function template referenced from co_consts
//   - [Instruction], [Name], [Block]: the elements of co_code/co_names/co_blocks
//   - [SourceLocation]: maps an instruction to a source position
//   - [Assembler]: a builder for constructing Code objects directly, used
//     by tests since no compiler ships in this module
//
// # Immutability
//
// Code and Function are immutable after construction: no mutation methods,
// all fields unexported, constructors copy input slices, accessors return
// values or index into internal state rather than exposing mutable slices.
// Instruction, Name, and Block are plain value structs with exported
// fields, and Assembler is a mutable builder.
//
// # Package Dependencies
//
// This package depends only on [github.com/dusklang/dusk/op], to avoid a
// circular dependency with the object package. Constants are stored as
// []any; the VM type-asserts an entry to object.Object when LOAD_CONST
// executes and reads *Function entries through LOAD_LAMBDA.
package bytecode
