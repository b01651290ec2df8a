package object

import "fmt"

// Module is a namespace: the attribute bag produced by executing a code
// object's globals, or a native module registered by the embedder. Every
// VM carries exactly one always-present "builtins" module (spec §4.7),
// consulted as NameRef's third lookup tier after locals and the current
// module's globals.
type Module struct {
	name  string
	attrs map[string]Object
	order []string
}

// NewModule creates an empty module with the given name.
func NewModule(name string) *Module {
	return &Module{name: name, attrs: make(map[string]Object)}
}

func (m *Module) Type() Type   { return MODULE }
func (m *Module) Str() string  { return fmt.Sprintf("<module %q>", m.name) }
func (m *Module) Repr() string { return m.Str() }

func (m *Module) Name() string { return m.name }

func (m *Module) GetAttr(name string) (Object, bool) {
	v, ok := m.attrs[name]
	return v, ok
}

func (m *Module) SetAttr(name string, value Object) error {
	if _, exists := m.attrs[name]; !exists {
		m.order = append(m.order, name)
	}
	m.attrs[name] = value
	return nil
}

// Names returns the module's attribute names in declaration order.
func (m *Module) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}
