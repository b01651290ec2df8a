// Package builtins provides the native functions installed into every VM's
// "builtins" pseudo-module (spec §4.7): len, print, type, isinstance, and
// the container constructors.
package builtins

import (
	"bufio"
	"io"

	"github.com/dusklang/dusk/object"
)

// Register installs the default builtin functions into mod, writing
// print() output to stdout.
func Register(mod *object.Module, stdout io.Writer) {
	w := bufio.NewWriter(stdout)
	bind := func(name string, fn object.NativeFunc) {
		mod.SetAttr(name, object.NewNativeFunction(name, fn))
	}

	bind("len", func(args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, object.NewTypeError("len() takes exactly one argument (%d given)", len(args))
		}
		l, ok := args[0].(object.Lengthable)
		if !ok {
			return nil, object.NewTypeError("object of type '%s' has no len()", args[0].Type())
		}
		return object.NewInt(int64(l.Len())), nil
	})

	bind("print", func(args []object.Object) (object.Object, error) {
		for i, a := range args {
			if i > 0 {
				w.WriteString(" ")
			}
			w.WriteString(a.Str())
		}
		w.WriteString("\n")
		w.Flush()
		return object.None, nil
	})

	bind("repr", func(args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, object.NewTypeError("repr() takes exactly one argument")
		}
		return object.NewStr(args[0].Repr()), nil
	})

	bind("str", func(args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, object.NewTypeError("str() takes exactly one argument")
		}
		return object.NewStr(args[0].Str()), nil
	})

	bind("type", func(args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, object.NewTypeError("type() takes exactly one argument")
		}
		if inst, ok := args[0].(*object.Instance); ok {
			return inst.Class, nil
		}
		return object.NewStr(string(args[0].Type())), nil
	})

	bind("isinstance", func(args []object.Object) (object.Object, error) {
		if len(args) != 2 {
			return nil, object.NewTypeError("isinstance() takes exactly two arguments")
		}
		cls, ok := args[1].(*object.Class)
		if !ok {
			return nil, object.NewTypeError("isinstance() arg 2 must be a type")
		}
		inst, ok := args[0].(*object.Instance)
		if !ok {
			return object.False, nil
		}
		return object.NewBool(inst.Class.IsSubclass(cls)), nil
	})

	bind("range", func(args []object.Object) (object.Object, error) {
		var start, stop, step int64 = 0, 0, 1
		ints := make([]int64, len(args))
		for i, a := range args {
			iv, ok := a.(*object.Int)
			if !ok {
				return nil, object.NewTypeError("range() arguments must be int")
			}
			ints[i] = iv.Value()
		}
		switch len(ints) {
		case 1:
			stop = ints[0]
		case 2:
			start, stop = ints[0], ints[1]
		case 3:
			start, stop, step = ints[0], ints[1], ints[2]
		default:
			return nil, object.NewTypeError("range() takes 1 to 3 arguments (%d given)", len(args))
		}
		return object.NewRange(start, stop, step), nil
	})

	bind("list", func(args []object.Object) (object.Object, error) {
		if len(args) == 0 {
			return object.NewList(nil), nil
		}
		if len(args) != 1 {
			return nil, object.NewTypeError("list() takes 0 or 1 arguments")
		}
		items, err := collect(args[0])
		if err != nil {
			return nil, err
		}
		return object.NewList(items), nil
	})

	bind("tuple", func(args []object.Object) (object.Object, error) {
		if len(args) == 0 {
			return object.NewTuple(nil), nil
		}
		if len(args) != 1 {
			return nil, object.NewTypeError("tuple() takes 0 or 1 arguments")
		}
		items, err := collect(args[0])
		if err != nil {
			return nil, err
		}
		return object.NewTuple(items), nil
	})

	bind("dict", func(args []object.Object) (object.Object, error) {
		if len(args) != 0 {
			return nil, object.NewTypeError("dict() takes no arguments")
		}
		return object.NewDict(), nil
	})

	bind("set", func(args []object.Object) (object.Object, error) {
		s := object.NewSet()
		if len(args) == 1 {
			items, err := collect(args[0])
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				if _, err := s.Add(item); err != nil {
					return nil, err
				}
			}
		} else if len(args) != 0 {
			return nil, object.NewTypeError("set() takes 0 or 1 arguments")
		}
		return s, nil
	})

	bind("assert", func(args []object.Object) (object.Object, error) {
		if len(args) == 0 {
			return nil, object.NewAssertionError("assert requires an argument")
		}
		if !object.Truthy(args[0]) {
			msg := "assertion failed"
			if len(args) > 1 {
				msg = args[1].Str()
			}
			return nil, object.NewAssertionError("%s", msg)
		}
		return object.None, nil
	})
}

func collect(v object.Object) ([]object.Object, error) {
	switch val := v.(type) {
	case *object.List:
		out := make([]object.Object, len(val.Items))
		copy(out, val.Items)
		return out, nil
	case *object.Tuple:
		out := make([]object.Object, len(val.Items))
		copy(out, val.Items)
		return out, nil
	case *object.Set:
		return val.Items(), nil
	case *object.Str:
		var items []object.Object
		it := object.NewStringIterator(val)
		for it.HasNext() {
			next, _ := it.Next()
			items = append(items, next)
		}
		return items, nil
	case *object.Range:
		var items []object.Object
		it := val.Iter()
		for it.HasNext() {
			next, _ := it.Next()
			items = append(items, next)
		}
		return items, nil
	default:
		return nil, object.NewTypeError("%q object is not iterable", v.Type())
	}
}
