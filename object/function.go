package object

import "github.com/dusklang/dusk/bytecode"

// Function is a runtime closure: a compiled template plus the module whose
// globals it resolves free names against. Closures here are "closures via
// captured globals" (spec §1): a function does not capture enclosing
// function locals, only the defining module's global namespace, matching
// the original interpreter's simpler scoping model.
type Function struct {
	template *bytecode.Function
	module   *Module
}

func NewFunction(template *bytecode.Function, module *Module) *Function {
	return &Function{template: template, module: module}
}

func (f *Function) Type() Type { return FUNCTION }
func (f *Function) Str() string {
	if f.template.Name() != "" {
		return "<function " + f.template.Name() + ">"
	}
	return "<function>"
}
func (f *Function) Repr() string { return f.Str() }
func (f *Function) callableMarker() {}

func (f *Function) Name() string              { return f.template.Name() }
func (f *Function) Template() *bytecode.Function { return f.template }
func (f *Function) Module() *Module           { return f.module }

// NativeFunc is the Go-native implementation of a builtin or embedder
// function: it receives already-evaluated argument Objects and returns a
// result or an error.
type NativeFunc func(args []Object) (Object, error)

// NativeFunction wraps a Go function so it can be called through CALL like
// any other callable.
type NativeFunction struct {
	name string
	fn   NativeFunc
}

func NewNativeFunction(name string, fn NativeFunc) *NativeFunction {
	return &NativeFunction{name: name, fn: fn}
}

func (n *NativeFunction) Type() Type     { return NATIVE_FUNCTION }
func (n *NativeFunction) Str() string    { return "<built-in function " + n.name + ">" }
func (n *NativeFunction) Repr() string   { return n.Str() }
func (n *NativeFunction) callableMarker() {}
func (n *NativeFunction) Name() string   { return n.name }
func (n *NativeFunction) Call(args []Object) (Object, error) { return n.fn(args) }

// BoundMethod pairs a receiver instance with the Function or
// NativeFunction it was looked up from. Per spec §4.4, bound methods are
// never stored as attributes on an instance; they are materialized
// on-the-fly by attribute lookup each time a method is fetched.
type BoundMethod struct {
	Receiver Object
	Func     Callable
}

func NewBoundMethod(receiver Object, fn Callable) *BoundMethod {
	return &BoundMethod{Receiver: receiver, Func: fn}
}

func (b *BoundMethod) Type() Type { return BOUND_METHOD }
func (b *BoundMethod) Str() string {
	return "<bound method of " + b.Receiver.Repr() + ">"
}
func (b *BoundMethod) Repr() string   { return b.Str() }
func (b *BoundMethod) callableMarker() {}
