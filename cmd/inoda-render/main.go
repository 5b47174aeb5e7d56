// Command inoda-render is the demonstration host named in the design
// document: a thin cobra.Command that drives the full pipeline (parse
// HTML, compile stylesheets, cascade, layout, render) and writes a PNG.
// It is not part of the engine's own API surface — the core packages
// take no CLI or environment configuration of their own — but a host
// application has to supply a viewport and register fonts somewhere,
// and this is that somewhere. Grounded on the teacher's cmd/l14show
// for the pipeline order and _examples/xkilldash9x-scalpel-cli's
// cmd/root.go for the cobra/zap wiring shape.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inoda-engine/browser/internal/obslog"
	"github.com/inoda-engine/browser/pkg/cssom"
	"github.com/inoda-engine/browser/pkg/htmlparse"
	"github.com/inoda-engine/browser/pkg/layout"
	"github.com/inoda-engine/browser/pkg/layout/flexsolver"
	"github.com/inoda-engine/browser/pkg/render"
	"github.com/inoda-engine/browser/pkg/render/ggbackend"
	"github.com/inoda-engine/browser/pkg/scriptbridge"
	"github.com/inoda-engine/browser/pkg/text"
)

var (
	width     int
	height    int
	output    string
	cssPath   string
	runScript bool
	logLevel  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "inoda-render <input.html>",
		Short: "Render an HTML document to a PNG using the inoda browser engine",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	rootCmd.Flags().IntVarP(&width, "width", "w", 800, "viewport width in pixels")
	rootCmd.Flags().IntVarP(&height, "height", "h", 600, "viewport height in pixels")
	rootCmd.Flags().StringVarP(&output, "out", "o", "output.png", "output PNG file path")
	rootCmd.Flags().StringVar(&cssPath, "css", "", "external stylesheet to apply in addition to any <style> tags")
	rootCmd.Flags().BoolVar(&runScript, "script", false, "execute any embedded <script> tags before rendering")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	log := obslog.Init(obslog.Config{Level: logLevel, ServiceName: "inoda-render"}, zapcore.Lock(os.Stderr))
	inputPath := args[0]

	htmlBytes, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	doc, err := htmlparse.ParseString(string(htmlBytes), log)
	if err != nil {
		return fmt.Errorf("parsing HTML: %w", err)
	}
	log.Info("parsed document", zap.Int("stylesheets", len(doc.StyleTexts)), zap.Int("scripts", len(doc.Scripts)))

	if runScript && len(doc.Scripts) > 0 {
		bridge := scriptbridge.New(doc, log)
		bridge.Execute()
	}

	authorCSS := ""
	for _, s := range doc.StyleTexts {
		authorCSS += s + "\n"
	}
	if cssPath != "" {
		external, err := os.ReadFile(cssPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", cssPath, err)
		}
		authorCSS += string(external) + "\n"
	}
	sheet := cssom.CompileWithUA(authorCSS, log)

	vw, vh := float64(width), float64(height)
	styled := cssom.Cascade(doc, sheet, doc.Root)

	fonts := text.DefaultFontConfig()
	tm := layout.NewTextMeasurer(doc, fonts)
	tree := layout.BuildTree(doc, styled, vw, vh, tm)

	flexsolver.Solve(tree, flexsolver.Size{Width: vw, Height: vh})
	cache := layout.Finalize(doc, styled, tree, tm)

	backend := ggbackend.New(width, height, fonts)
	render.Walk(doc, styled, tree, cache, backend)

	if err := backend.SavePNG(output); err != nil {
		return fmt.Errorf("saving %s: %w", output, err)
	}
	log.Info("wrote render", zap.String("path", output), zap.Int("width", width), zap.Int("height", height))
	return nil
}
