package scriptbridge

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"weak"

	"github.com/dop251/goja"

	"github.com/inoda-engine/browser/pkg/dom"
)

// NodeHandle is the Go-side half of a script-visible DOM wrapper: spec
// §4.7's "NodeHandle wrapper object". A NodeHandle's JS twin (obj) is
// created lazily and memoized so repeated queries for the same node
// return the exact same JS object, satisfying the "same wrapper as long
// as it's alive" identity property.
type NodeHandle struct {
	bridge *Bridge
	id     dom.NodeID
	obj    *goja.Object
}

// jsValue returns h's memoized JS wrapper, creating it on first use.
func (h *NodeHandle) jsValue(vm *goja.Runtime) goja.Value {
	if h.obj == nil {
		h.obj = vm.NewDynamicObject(&nodeAccessor{handle: h})
	}
	return h.obj
}

// handleTable is the "per-document __nodeCache" spec §4.7 names: a map
// from node identity to a weak reference to its wrapper, so a wrapper
// still reachable from the script heap is returned again on the next
// lookup, but an unreachable one doesn't pin memory forever. Guarded by
// a mutex because runtime.AddCleanup callbacks run on their own
// goroutine, concurrently with whatever goroutine is driving the script
// runtime — the one piece of this single-threaded engine that
// genuinely needs synchronization, since it talks to the GC rather than
// to script.
type handleTable struct {
	mu   sync.Mutex
	byID map[dom.NodeID]weak.Pointer[NodeHandle]
}

func newHandleTable() *handleTable {
	return &handleTable{byID: make(map[dom.NodeID]weak.Pointer[NodeHandle])}
}

// wrap returns the cached *NodeHandle for id if its wrapper is still
// alive, or mints a fresh one and registers a cleanup that removes the
// cache entry once the handle is collected. The cleanup never touches
// the arena (spec's "arena-script lifetime rule": wrapper finalization
// must not delete arena nodes, or reused slot+generation values would
// alias a stale wrapper — ABA corruption).
func (t *handleTable) wrap(b *Bridge, id dom.NodeID) *NodeHandle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if wp, ok := t.byID[id]; ok {
		if h := wp.Value(); h != nil {
			return h
		}
		delete(t.byID, id)
	}

	h := &NodeHandle{bridge: b, id: id}
	t.byID[id] = weak.Make(h)
	runtime.AddCleanup(h, cleanupHandle, cleanupArg{table: t, id: id})
	return h
}

type cleanupArg struct {
	table *handleTable
	id    dom.NodeID
}

// cleanupHandle must not close over the *NodeHandle being finalized —
// AddCleanup's arg parameter exists precisely so the cleanup can't
// accidentally resurrect it by capturing a reference.
func cleanupHandle(arg cleanupArg) {
	arg.table.mu.Lock()
	defer arg.table.mu.Unlock()
	if wp, ok := arg.table.byID[arg.id]; ok && wp.Value() == nil {
		delete(arg.table.byID, arg.id)
	}
}

// nodeAccessor implements goja.DynamicObject to intercept property
// access on a NodeHandle's JS wrapper, mirroring the teacher's
// elementAccessor (pkg/js/dom.go) but delegating to the arena through
// the owning Bridge instead of walking an *html.Node tree directly.
type nodeAccessor struct {
	handle *NodeHandle
}

func (a *nodeAccessor) vm() *goja.Runtime { return a.handle.bridge.vm }
func (a *nodeAccessor) doc() *dom.Document { return a.handle.bridge.doc }
func (a *nodeAccessor) id() dom.NodeID     { return a.handle.id }

func (a *nodeAccessor) node() (*dom.Node, bool) {
	return a.doc().Node(a.id())
}

func (a *nodeAccessor) Get(key string) goja.Value {
	vm := a.vm()
	switch key {
	case "__slot__":
		return vm.ToValue(a.id().Slot())
	case "__gen__":
		return vm.ToValue(a.id().Generation())
	}

	n, ok := a.node()
	if !ok {
		return goja.Undefined()
	}

	switch key {
	case "nodeType":
		if n.Kind == dom.KindText {
			return vm.ToValue(3)
		}
		return vm.ToValue(1)
	case "nodeName":
		if n.Kind == dom.KindText {
			return vm.ToValue("#text")
		}
		return vm.ToValue(strings.ToUpper(a.doc().Atoms.String(n.TagName)))
	case "nodeValue":
		if n.Kind == dom.KindText {
			return vm.ToValue(n.Text)
		}
		return goja.Null()
	case "tagName":
		if n.Kind != dom.KindElement {
			return goja.Undefined()
		}
		return vm.ToValue(strings.ToUpper(a.doc().Atoms.String(n.TagName)))
	case "id":
		return vm.ToValue(n.ID)
	case "className":
		v, _ := a.doc().GetAttribute(a.id(), "class")
		return vm.ToValue(v)
	case "textContent":
		return vm.ToValue(a.textContent(n))
	case "innerHTML":
		return vm.ToValue(a.doc().Serialize(a.id()))
	case "outerHTML":
		return vm.ToValue(a.doc().SerializeOuter(a.id()))
	case "getAttribute":
		return vm.ToValue(a.getAttributeFn())
	case "setAttribute":
		return vm.ToValue(a.setAttributeFn())
	case "hasAttribute":
		return vm.ToValue(a.hasAttributeFn())
	case "removeAttribute":
		return vm.ToValue(a.removeAttributeFn())
	case "appendChild":
		return vm.ToValue(a.appendChildFn())
	case "removeChild":
		return vm.ToValue(a.removeChildFn())
	case "cloneNode":
		return vm.ToValue(a.cloneNodeFn())
	case "children":
		return a.childrenArray(true)
	case "childNodes":
		return a.childrenArray(false)
	case "firstElementChild":
		return a.edgeChild(true, true)
	case "lastElementChild":
		return a.edgeChild(false, true)
	case "firstChild":
		return a.edgeChild(true, false)
	case "lastChild":
		return a.edgeChild(false, false)
	case "nextSibling":
		return a.sibling(n.NextSibling, false)
	case "previousSibling":
		return a.sibling(n.PrevSibling, false)
	case "nextElementSibling":
		return a.sibling(n.NextSibling, true)
	case "previousElementSibling":
		return a.sibling(n.PrevSibling, true)
	case "parentElement":
		return a.parent(true)
	case "parentNode":
		return a.parent(false)
	case "querySelector":
		return vm.ToValue(a.querySelectorFn())
	case "querySelectorAll":
		return vm.ToValue(a.querySelectorAllFn())
	case "matches":
		return vm.ToValue(a.matchesFn())
	case "closest":
		return vm.ToValue(a.closestFn())
	case "classList":
		return newClassList(a)
	}
	return goja.Undefined()
}

func (a *nodeAccessor) textContent(n *dom.Node) string {
	if n.Kind == dom.KindText {
		return n.Text
	}
	var sb strings.Builder
	var walk func(dom.NodeID)
	walk = func(id dom.NodeID) {
		cn, ok := a.doc().Node(id)
		if !ok {
			return
		}
		if cn.Kind == dom.KindText {
			sb.WriteString(cn.Text)
		}
		for c := cn.FirstChild; c != (dom.NodeID{}); {
			ccn, ok := a.doc().Node(c)
			if !ok {
				break
			}
			walk(c)
			c = ccn.NextSibling
		}
	}
	walk(a.id())
	return sb.String()
}

func (a *nodeAccessor) getAttributeFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		v, ok := a.doc().GetAttribute(a.id(), call.Arguments[0].String())
		if !ok {
			return goja.Null()
		}
		return a.vm().ToValue(v)
	}
}

func (a *nodeAccessor) setAttributeFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		if err := a.doc().SetAttribute(a.id(), call.Arguments[0].String(), call.Arguments[1].String()); err != nil {
			panic(a.vm().NewGoError(err))
		}
		return goja.Undefined()
	}
}

func (a *nodeAccessor) hasAttributeFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return a.vm().ToValue(false)
		}
		_, ok := a.doc().GetAttribute(a.id(), call.Arguments[0].String())
		return a.vm().ToValue(ok)
	}
}

func (a *nodeAccessor) removeAttributeFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		_ = a.doc().RemoveAttribute(a.id(), call.Arguments[0].String())
		return goja.Undefined()
	}
}

func (a *nodeAccessor) appendChildFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		child, ok := a.handle.bridge.unwrap(call.Arguments[0])
		if !ok {
			return goja.Undefined()
		}
		if err := a.handle.bridge.appendChild(a.id(), child); err != nil {
			panic(a.vm().NewGoError(err))
		}
		return call.Arguments[0]
	}
}

func (a *nodeAccessor) removeChildFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		child, ok := a.handle.bridge.unwrap(call.Arguments[0])
		if !ok {
			return goja.Undefined()
		}
		release := a.handle.bridge.borrow()
		defer release()
		_ = a.doc().RemoveNode(child)
		return call.Arguments[0]
	}
}

func (a *nodeAccessor) cloneNodeFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		deep := len(call.Arguments) > 0 && call.Arguments[0].ToBoolean()
		clone, err := a.doc().CloneNode(a.id(), deep)
		if err != nil {
			return goja.Null()
		}
		return a.handle.bridge.wrapForJS(clone)
	}
}

func (a *nodeAccessor) childrenArray(elementsOnly bool) goja.Value {
	n, ok := a.node()
	if !ok {
		return a.vm().NewArray()
	}
	arr := a.vm().NewArray()
	i := 0
	for c := n.FirstChild; c != (dom.NodeID{}); {
		cn, ok := a.doc().Node(c)
		if !ok {
			break
		}
		if !elementsOnly || cn.Kind == dom.KindElement {
			arr.Set(strconv.Itoa(i), a.handle.bridge.wrapForJS(c))
			i++
		}
		c = cn.NextSibling
	}
	return arr
}

func (a *nodeAccessor) edgeChild(first, elementsOnly bool) goja.Value {
	n, ok := a.node()
	if !ok {
		return goja.Null()
	}
	if !elementsOnly {
		if first {
			if n.FirstChild == (dom.NodeID{}) {
				return goja.Null()
			}
			return a.handle.bridge.wrapForJS(n.FirstChild)
		}
		if n.LastChild == (dom.NodeID{}) {
			return goja.Null()
		}
		return a.handle.bridge.wrapForJS(n.LastChild)
	}

	start, step := n.FirstChild, func(cn *dom.Node) dom.NodeID { return cn.NextSibling }
	if !first {
		start, step = n.LastChild, func(cn *dom.Node) dom.NodeID { return cn.PrevSibling }
	}
	for c := start; c != (dom.NodeID{}); {
		cn, ok := a.doc().Node(c)
		if !ok {
			break
		}
		if cn.Kind == dom.KindElement {
			return a.handle.bridge.wrapForJS(c)
		}
		c = step(cn)
	}
	return goja.Null()
}

func (a *nodeAccessor) sibling(id dom.NodeID, elementsOnly bool) goja.Value {
	for id != (dom.NodeID{}) {
		n, ok := a.doc().Node(id)
		if !ok {
			return goja.Null()
		}
		if !elementsOnly || n.Kind == dom.KindElement {
			return a.handle.bridge.wrapForJS(id)
		}
		id = n.NextSibling
	}
	return goja.Null()
}

func (a *nodeAccessor) parent(elementsOnly bool) goja.Value {
	n, ok := a.node()
	if !ok || n.Parent == (dom.NodeID{}) {
		return goja.Null()
	}
	pn, ok := a.doc().Node(n.Parent)
	if !ok {
		return goja.Null()
	}
	if elementsOnly && pn.Kind != dom.KindElement {
		return goja.Null()
	}
	if pn.Kind == dom.KindRoot {
		return goja.Null()
	}
	return a.handle.bridge.wrapForJS(n.Parent)
}

func (a *nodeAccessor) querySelectorFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		id, ok := querySelectorFrom(a.doc(), a.id(), call.Arguments[0].String())
		if !ok {
			return goja.Null()
		}
		return a.handle.bridge.wrapForJS(id)
	}
}

func (a *nodeAccessor) querySelectorAllFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		arr := a.vm().NewArray()
		if len(call.Arguments) == 0 {
			return arr
		}
		ids := querySelectorAllFrom(a.doc(), a.id(), call.Arguments[0].String())
		for i, id := range ids {
			arr.Set(strconv.Itoa(i), a.handle.bridge.wrapForJS(id))
		}
		return arr
	}
}

func (a *nodeAccessor) matchesFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return a.vm().ToValue(false)
		}
		return a.vm().ToValue(matchesSelf(a.doc(), a.id(), call.Arguments[0].String()))
	}
}

func (a *nodeAccessor) closestFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		id, ok := closestFrom(a.doc(), a.id(), call.Arguments[0].String())
		if !ok {
			return goja.Null()
		}
		return a.handle.bridge.wrapForJS(id)
	}
}

func (a *nodeAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "id":
		return a.doc().SetAttribute(a.id(), "id", val.String()) == nil
	case "className":
		return a.doc().SetAttribute(a.id(), "class", val.String()) == nil
	}
	return false
}

func (a *nodeAccessor) Has(key string) bool {
	return !goja.IsUndefined(a.Get(key))
}

func (a *nodeAccessor) Delete(key string) bool { return false }

func (a *nodeAccessor) Keys() []string {
	return []string{"nodeType", "nodeName", "tagName", "id", "className", "textContent"}
}
