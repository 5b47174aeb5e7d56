package scriptbridge

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/inoda-engine/browser/pkg/atom"
)

// classListAccessor backs Element.classList: add/remove/toggle/contains
// over the element's space-separated class attribute, grounded on the
// teacher's dom_classlist.go but built on dom.Document's atom-interned
// Classes rather than a raw string split on every call.
type classListAccessor struct {
	node *nodeAccessor
}

func newClassList(n *nodeAccessor) goja.Value {
	return n.vm().NewDynamicObject(&classListAccessor{node: n})
}

func (c *classListAccessor) classes() []atom.Atom {
	n, ok := c.node.node()
	if !ok {
		return nil
	}
	return n.Classes
}

func (c *classListAccessor) writeBack(classes []string) {
	_ = c.node.doc().SetAttribute(c.node.id(), "class", strings.Join(classes, " "))
}

func (c *classListAccessor) stringClasses() []string {
	n, ok := c.node.node()
	if !ok {
		return nil
	}
	atoms := c.node.doc().Atoms
	out := make([]string, len(n.Classes))
	for i, a := range n.Classes {
		out[i] = atoms.String(a)
	}
	return out
}

func (c *classListAccessor) contains(want string) bool {
	atoms := c.node.doc().Atoms
	for _, a := range c.classes() {
		if atoms.String(a) == want {
			return true
		}
	}
	return false
}

func (c *classListAccessor) Get(key string) goja.Value {
	vm := c.node.vm()
	switch key {
	case "length":
		return vm.ToValue(len(c.classes()))
	case "contains":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			return vm.ToValue(c.contains(call.Arguments[0].String()))
		})
	case "add":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			classes := c.stringClasses()
			for _, arg := range call.Arguments {
				name := arg.String()
				if !c.contains(name) {
					classes = append(classes, name)
				}
			}
			c.writeBack(classes)
			return goja.Undefined()
		})
	case "remove":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			remove := make(map[string]bool, len(call.Arguments))
			for _, arg := range call.Arguments {
				remove[arg.String()] = true
			}
			var kept []string
			for _, name := range c.stringClasses() {
				if !remove[name] {
					kept = append(kept, name)
				}
			}
			c.writeBack(kept)
			return goja.Undefined()
		})
	case "toggle":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			name := call.Arguments[0].String()
			if c.contains(name) {
				var kept []string
				for _, n := range c.stringClasses() {
					if n != name {
						kept = append(kept, n)
					}
				}
				c.writeBack(kept)
				return vm.ToValue(false)
			}
			c.writeBack(append(c.stringClasses(), name))
			return vm.ToValue(true)
		})
	}
	return goja.Undefined()
}

func (c *classListAccessor) Set(key string, val goja.Value) bool { return false }
func (c *classListAccessor) Has(key string) bool                 { return !goja.IsUndefined(c.Get(key)) }
func (c *classListAccessor) Delete(key string) bool              { return false }
func (c *classListAccessor) Keys() []string                      { return []string{"length"} }
