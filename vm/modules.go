package vm

import (
	"github.com/dusklang/dusk/bytecode"
	"github.com/dusklang/dusk/errz"
	"github.com/dusklang/dusk/object"
)

// importModule implements IMPORT_NAME's resolution order (spec §4.7):
// eager module table, then lazy (compile-on-first-import, caching the
// result and removing the lazy entry), else ImportError.
func (m *machine) importModule(name string) (*object.Module, error) {
	if mod, ok := m.eagerModules[name]; ok {
		return mod, nil
	}
	if name == "builtins" {
		return m.builtins, nil
	}
	if source, ok := m.lazyModules[name]; ok {
		if m.compiler == nil {
			return nil, errz.New(errz.ImportError, "module '"+name+"' requires a compiler, none configured")
		}
		code, err := m.compiler.Compile(source, name, bytecode.Exec)
		if err != nil {
			return nil, errz.Newf(errz.ImportError, "failed to compile module '%s': %v", name, err)
		}
		mod := object.NewModule(name)
		mod.SetAttr("__name__", object.NewStr(name))
		if err := m.pushFrame(code, mod); err != nil {
			return nil, err
		}
		if _, err := m.eval(); err != nil {
			return nil, err
		}
		m.eagerModules[name] = mod
		delete(m.lazyModules, name)
		return mod, nil
	}
	return nil, errz.Newf(errz.ImportError, "no module named '%s'", name)
}
