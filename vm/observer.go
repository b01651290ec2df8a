package vm

import (
	"github.com/dusklang/dusk/bytecode"
	"github.com/dusklang/dusk/op"
)

// StepMode controls when OnStep callbacks fire. Ambient tooling (spec §4.3
// notes this is not a spec feature): a no-op Observer costs nothing in the
// hot loop beyond a nil check.
type StepMode uint8

const (
	StepAll StepMode = iota
	StepNone
	StepOnLine
)

// ObserverConfig specifies what events an Observer wants to receive.
type ObserverConfig struct {
	StepMode       StepMode
	ObserveCalls   bool
	ObserveReturns bool
}

// Observer watches VM execution for tracing, coverage, or debugging
// tooling built on top of the interpreter; it is attached with WithObserver.
// Returning false from any callback halts execution immediately.
type Observer interface {
	Config() ObserverConfig
	OnStep(event StepEvent) bool
	OnCall(event CallEvent) bool
	OnReturn(event ReturnEvent) bool
}

// StepEvent describes a single instruction about to execute.
type StepEvent struct {
	IP         int
	Opcode     op.Code
	OpcodeName string
	Location   bytecode.SourceLocation
	StackDepth int
	FrameDepth int
}

// CallEvent describes a function invocation.
type CallEvent struct {
	FunctionName string
	ArgCount     int
	FrameDepth   int
}

// ReturnEvent describes a function return.
type ReturnEvent struct {
	FunctionName string
	FrameDepth   int
}

// NoOpObserver implements Observer with no side effects; embed it to avoid
// implementing every callback.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig            { return ObserverConfig{StepMode: StepNone} }
func (NoOpObserver) OnStep(StepEvent) bool             { return true }
func (NoOpObserver) OnCall(CallEvent) bool             { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool         { return true }

var _ Observer = NoOpObserver{}
