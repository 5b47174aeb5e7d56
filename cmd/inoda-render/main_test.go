package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/inoda-engine/browser/pkg/cssom"
	"github.com/inoda-engine/browser/pkg/htmlparse"
	"github.com/inoda-engine/browser/pkg/layout"
	"github.com/inoda-engine/browser/pkg/layout/flexsolver"
	"github.com/inoda-engine/browser/pkg/render"
	"github.com/inoda-engine/browser/pkg/render/ggbackend"
	"github.com/inoda-engine/browser/pkg/text"
)

func TestIntegrationFullPipelineWritesPNG(t *testing.T) {
	doc, err := htmlparse.ParseString(`
		<html><head><style>div { background-color: red; width: 100px; height: 50px; }</style></head>
		<body><div>hello</div></body></html>
	`, nil)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	authorCSS := ""
	for _, s := range doc.StyleTexts {
		authorCSS += s + "\n"
	}
	sheet := cssom.CompileWithUA(authorCSS, nil)
	styled := cssom.Cascade(doc, sheet, doc.Root)

	fonts := requireBundledFont(t)
	tm := layout.NewTextMeasurer(doc, fonts)
	tree := layout.BuildTree(doc, styled, 400, 300, tm)
	flexsolver.Solve(tree, flexsolver.Size{Width: 400, Height: 300})
	cache := layout.Finalize(doc, styled, tree, tm)

	backend := ggbackend.New(400, 300, fonts)
	render.Walk(doc, styled, tree, cache, backend)

	out := filepath.Join(t.TempDir(), "out.png")
	if err := backend.SavePNG(out); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected non-empty PNG output")
	}
}

func requireBundledFont(t *testing.T) text.FontConfig {
	t.Helper()
	cfg := text.DefaultFontConfig()
	if _, err := os.Stat(cfg.Regular); err != nil {
		t.Skipf("bundled font assets not present at %s", cfg.Regular)
	}
	return cfg
}
