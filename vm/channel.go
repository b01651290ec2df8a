package vm

import (
	"context"
	"time"

	"github.com/dusklang/dusk/bytecode"
	"github.com/dusklang/dusk/errz"
	"github.com/dusklang/dusk/object"
)

// ThreadState is the cooperative channel VM's four-state model (spec §4.8),
// grounded on original_source/src/vm.h's ThreadState enum.
type ThreadState int32

const (
	StateReady ThreadState = iota
	StateRunning
	StateSuspended
	StateFinished
)

func (s ThreadState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// channelPollInterval matches the original's 20ms busy-wait backoff in
// suspend()/sleep().
const channelPollInterval = 20 * time.Millisecond

// GetState reports the channel VM's current thread state.
func (vm *VM) GetState() ThreadState {
	return ThreadState(vm.m.state.Load())
}

// Terminate requests cancellation (keyboardInterrupt) and blocks until the
// running/suspended script observes it and reaches StateFinished, matching
// ThreadedVM::terminate's join-style wait.
func (vm *VM) Terminate() {
	st := vm.GetState()
	if st != StateRunning && st != StateSuspended {
		return
	}
	vm.m.halt.Store(true)
	for vm.GetState() != StateFinished {
		time.Sleep(channelPollInterval)
	}
}

// ResetState returns a finished VM to ready, allowing it to be reused for
// another ExecAsync call.
func (vm *VM) ResetState() {
	if vm.GetState() == StateFinished {
		vm.m.state.Store(int32(StateReady))
		vm.m.halt.Store(false)
	}
}

// ExecAsync compiles and runs source on a background goroutine, returning
// immediately; the caller observes progress via GetState and exchanges
// strings via WriteJSONRPCResponse once the script calls
// __string_channel_call and the state becomes StateSuspended.
func (vm *VM) ExecAsync(ctx context.Context, source, filename string, mode bytecode.Mode) {
	if vm.GetState() != StateReady {
		panic("vm: ExecAsync called while not in StateReady")
	}
	vm.m.state.Store(int32(StateRunning))
	go func() {
		defer vm.m.state.Store(int32(StateFinished))
		_, _ = vm.ExecSource(ctx, source, filename, mode, nil)
	}()
}

// WriteJSONRPCResponse supplies the host's reply to a suspended
// __string_channel_call, resuming the script.
func (vm *VM) WriteJSONRPCResponse(value string) {
	if vm.GetState() != StateSuspended {
		panic("vm: WriteJSONRPCResponse called while not suspended")
	}
	vm.m.responseString <- value
	vm.m.state.Store(int32(StateRunning))
}

// stringChannelCall implements __string_channel_call(str): sets the shared
// string slot, transitions to SUSPENDED, and polls (testing the stop flag
// every 20ms) until the host calls WriteJSONRPCResponse.
func (m *machine) stringChannelCall(args []object.Object) (object.Object, error) {
	if len(args) != 1 {
		return nil, object.NewTypeError("__string_channel_call() takes exactly one argument")
	}
	s, ok := args[0].(*object.Str)
	if !ok {
		return nil, object.NewTypeError("__string_channel_call() argument must be str")
	}

	select {
	case <-m.sharedString:
	default:
	}
	select {
	case m.sharedString <- s.Value():
	default:
	}
	m.state.Store(int32(StateSuspended))

	ticker := time.NewTicker(channelPollInterval)
	defer ticker.Stop()
	for {
		select {
		case resp := <-m.responseString:
			return object.NewStr(resp), nil
		case <-ticker.C:
			if m.halt.Load() {
				m.state.Store(int32(StateRunning))
				return nil, errz.New(errz.KeyboardInterrupt, "interrupted while suspended")
			}
		}
	}
}

// EnableChannelMode wires __string_channel_call into the builtins module
// for VMs that want the cooperative channel mode (spec §4.8). Opt-in: the
// default VM is single-shot and synchronous.
func (vm *VM) EnableChannelMode() {
	vm.m.sharedString = make(chan string, 1)
	vm.m.responseString = make(chan string)
	vm.BindBuiltinFunc("__string_channel_call", vm.m.stringChannelCall)
}
