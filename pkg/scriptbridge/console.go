package scriptbridge

import (
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"go.uber.org/zap"
)

// zapPrinter adapts *zap.Logger to goja_nodejs/console's Printer
// interface, so console.log|warn|error (spec §4.7) flow through the same
// structured logger the rest of the engine uses instead of a bare
// fmt.Println (what both the teacher and original_source fall back to
// absent a logger).
type zapPrinter struct {
	log *zap.Logger
}

func (p zapPrinter) Log(s string)   { p.log.Info(s) }
func (p zapPrinter) Warn(s string)  { p.log.Warn(s) }
func (p zapPrinter) Error(s string) { p.log.Error(s) }

// registerConsole wires console.log|warn|error into vm via a require
// registry carrying a single native module: console, backed by
// zapPrinter. This is goja_nodejs's own documented pattern for
// substituting a custom Printer.
func registerConsole(vm *goja.Runtime, log *zap.Logger) {
	registry := new(require.Registry)
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(zapPrinter{log: log}))
	registry.Enable(vm)
	console.Enable(vm)
}
