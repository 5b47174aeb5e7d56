// Package scriptbridge is the Script Bridge (spec §4.7): it wraps a
// *dom.Document in single-threaded interior mutability and exposes a
// bounded DOM API, console, and a cooperative timer queue to a goja
// ECMAScript runtime. Grounded on the teacher's pkg/js (engine.go,
// dom*.go, console.go), generalized from *html.Node pointer walks to
// dom.NodeID arena lookups and from a hand-rolled console to
// github.com/dop251/goja_nodejs/console.
package scriptbridge

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/inoda-engine/browser/pkg/dom"
	"github.com/inoda-engine/browser/pkg/domerr"
)

// Bridge owns a Document's script-facing surface. It is not safe for
// concurrent use from multiple goroutines driving script execution —
// spec §5's single-threaded scheduling model — but its node-handle
// cache tolerates concurrent GC cleanup callbacks (see handle.go).
type Bridge struct {
	doc     *dom.Document
	vm      *goja.Runtime
	log     *zap.Logger
	timers  *timerQueue
	handles *handleTable

	borrowed  bool
	listeners []registeredListener
}

type registeredListener struct {
	event string
	cb    goja.Callable
}

// New builds a Bridge over doc with a fresh goja runtime, registering
// console, document, and setTimeout globals. log defaults to a no-op
// logger, matching every other engine component's optional-logger
// convention.
func New(doc *dom.Document, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bridge{
		doc:     doc,
		vm:      goja.New(),
		log:     log,
		timers:  &timerQueue{},
		handles: newHandleTable(),
	}
	registerConsole(b.vm, log)
	b.registerDocument()
	b.registerTimers()
	return b
}

// Runtime exposes the underlying goja runtime for callers that need to
// register additional globals before Execute runs (e.g. a host-provided
// window object); not part of spec's bounded surface itself.
func (b *Bridge) Runtime() *goja.Runtime { return b.vm }

// borrow enforces spec §5/§7's single-outstanding-borrow rule: a second
// call before the first releases is a Fatal bug in the bridge, not a
// recoverable script error, so it panics rather than returning an error.
func (b *Bridge) borrow() func() {
	if b.borrowed {
		panic("scriptbridge: reentrant document borrow (Fatal, spec §5/§7)")
	}
	b.borrowed = true
	return func() { b.borrowed = false }
}

// Execute runs every script harvested onto doc, in document order.
// Errors from one script are logged via console.error semantics and
// execution continues to the next (spec §7's ScriptRuntimeError).
func (b *Bridge) Execute() {
	for i, script := range b.doc.Scripts {
		if _, err := b.vm.RunString(script); err != nil {
			b.log.Error("scriptbridge: script error", zap.Int("index", i), zap.Error(err))
		}
	}
}

// Pump fires every due timer, per spec §4.7's JsEngine::pump. It holds
// no document borrow of its own — the original's pump() (inoda-core's
// js/mod.rs) only ever borrows pending_timers to drain the heap, and
// releases that before invoking any callback, so a timer callback that
// mutates the DOM (appendChild, removeChild, ...) takes its own
// short-lived borrow exactly like a top-level script statement would.
func (b *Bridge) Pump(now time.Time) int {
	return b.timers.pump(now, func(err error) {
		b.log.Error("scriptbridge: timer callback error", zap.Error(err))
	})
}

func (b *Bridge) wrapForJS(id dom.NodeID) goja.Value {
	return b.handles.wrap(b, id).jsValue(b.vm)
}

// unwrap recovers the NodeID a wrapper value carries, reading the hidden
// __slot__/__gen__ properties nodeAccessor.Get exposes rather than
// depending on goja's object-export internals.
func (b *Bridge) unwrap(val goja.Value) (dom.NodeID, bool) {
	if val == nil || goja.IsNull(val) || goja.IsUndefined(val) {
		return dom.NodeID{}, false
	}
	obj := val.ToObject(b.vm)
	slotVal := obj.Get("__slot__")
	genVal := obj.Get("__gen__")
	if slotVal == nil || genVal == nil || goja.IsUndefined(slotVal) || goja.IsUndefined(genVal) {
		return dom.NodeID{}, false
	}
	return dom.NewNodeIDFromParts(uint32(slotVal.ToInteger()), uint32(genVal.ToInteger())), true
}

func (b *Bridge) appendChild(parent, child dom.NodeID) error {
	release := b.borrow()
	defer release()
	return b.doc.AppendChild(parent, child)
}

func (b *Bridge) registerDocument() {
	vm := b.vm
	docObj := vm.NewObject()

	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		id, ok := b.doc.GetElementByID(call.Arguments[0].String())
		if !ok {
			return goja.Null()
		}
		return b.wrapForJS(id)
	})

	docObj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		id, ok := querySelectorFrom(b.doc, b.doc.Root, call.Arguments[0].String())
		if !ok {
			return goja.Null()
		}
		return b.wrapForJS(id)
	})

	docObj.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		arr := vm.NewArray()
		if len(call.Arguments) == 0 {
			return arr
		}
		ids := querySelectorAllFrom(b.doc, b.doc.Root, call.Arguments[0].String())
		for i, id := range ids {
			arr.Set(strconv.Itoa(i), b.wrapForJS(id))
		}
		return arr
	})

	docObj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("createElement requires a tag name"))
		}
		id := b.doc.CreateElement(call.Arguments[0].String(), nil)
		return b.wrapForJS(id)
	})

	docObj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		text := ""
		if len(call.Arguments) > 0 {
			text = call.Arguments[0].String()
		}
		return b.wrapForJS(b.doc.CreateText(text))
	})

	docObj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("appendChild requires (parent, child)"))
		}
		parent, ok := b.unwrap(call.Arguments[0])
		if !ok {
			return goja.Undefined()
		}
		child, ok := b.unwrap(call.Arguments[1])
		if !ok {
			return goja.Undefined()
		}
		if err := b.appendChild(parent, child); err != nil {
			panic(vm.NewGoError(fmt.Errorf("%s", errorMessage(err))))
		}
		return call.Arguments[1]
	})

	// addEventListener registers the pair but never dispatches — spec
	// §4.7 names this explicitly as a scaffold.
	docObj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		cb, ok := goja.AssertFunction(call.Arguments[1])
		if ok {
			b.listeners = append(b.listeners, registeredListener{event: call.Arguments[0].String(), cb: cb})
		}
		return goja.Undefined()
	})

	vm.Set("document", docObj)
}

func (b *Bridge) registerTimers() {
	vm := b.vm
	vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("setTimeout requires a callback"))
		}
		cb, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			panic(vm.NewTypeError("setTimeout: first argument must be a function"))
		}
		delayMs := 0
		if len(call.Arguments) > 1 {
			delayMs = int(call.Arguments[1].ToInteger())
		}
		id := b.timers.schedule(time.Now(), delayMs, cb)
		return vm.ToValue(id)
	})
}

func errorMessage(err error) string {
	switch {
	case err == domerr.ErrInvalidParent:
		return "InvalidParent: text nodes cannot have children"
	case err == domerr.ErrCycle:
		return "Cycle: cannot append an ancestor as its own descendant"
	case err == domerr.ErrStaleHandle:
		return "StaleHandle: node no longer exists"
	default:
		return fmt.Sprintf("scriptbridge: %v", err)
	}
}
