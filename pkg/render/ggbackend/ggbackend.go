// Package ggbackend is a concrete render.Backend built on gg's software
// rasterizer, grounded on the teacher's Renderer/drawBox/drawBorder/
// drawText (pkg/render/render.go).
package ggbackend

import (
	"github.com/fogleman/gg"

	"github.com/inoda-engine/browser/pkg/render"
	"github.com/inoda-engine/browser/pkg/text"
)

// GGBackend rasterizes to an in-memory image via gg.Context. It embeds
// render.TextLayoutDrawer to get DrawTextLayout for free, the "default
// draw_text_layout convenience method... provided via embedding" spec §4.6
// describes.
type GGBackend struct {
	render.TextLayoutDrawer

	ctx    *gg.Context
	fonts  text.FontConfig
	loaded map[string]bool
}

// New allocates a width x height canvas, filled white the way the
// teacher's cmd tools initialize a fresh page before painting.
func New(width, height int, fonts text.FontConfig) *GGBackend {
	ctx := gg.NewContext(width, height)
	ctx.SetRGB(1, 1, 1)
	ctx.Clear()
	return &GGBackend{ctx: ctx, fonts: fonts, loaded: make(map[string]bool)}
}

// FillRect fills rect with color, alpha included.
func (b *GGBackend) FillRect(rect render.Rect, color render.Color) {
	b.ctx.SetRGBA(float64(color.R)/255.0, float64(color.G)/255.0, float64(color.B)/255.0, float64(color.A)/255.0)
	if rect.W <= 0 || rect.H <= 0 {
		return
	}
	b.ctx.DrawRectangle(rect.X, rect.Y, rect.W, rect.H)
	b.ctx.Fill()
}

// StrokeRect outlines rect with a single width-px stroke — spec's border
// model is a uniform 1px rule, not the teacher's per-side widths/styles.
func (b *GGBackend) StrokeRect(rect render.Rect, color render.Color, width float64) {
	if rect.W <= 0 || rect.H <= 0 {
		return
	}
	b.ctx.SetRGBA(float64(color.R)/255.0, float64(color.G)/255.0, float64(color.B)/255.0, float64(color.A)/255.0)
	b.ctx.SetLineWidth(width)
	b.ctx.DrawRectangle(rect.X-width/2, rect.Y-width/2, rect.W+width, rect.H+width)
	b.ctx.Stroke()
}

// DrawGlyphs paints one shaped line. gg's public API draws strings, not
// glyph indices, so this re-renders run.Text at run.X/run.Y rather than
// walking run.Glyphs directly — a limitation of this specific backend,
// not of the Backend interface, which a glyph-index-capable backend
// could satisfy exactly.
func (b *GGBackend) DrawGlyphs(run render.GlyphRun, color render.Color, fontSizePx float64) {
	if run.Text == "" {
		return
	}
	// Backend.DrawGlyphs carries no font-family/weight, so this backend
	// always paints the regular face; a backend wired closer to the
	// shaper (which already picked the right face) could do better.
	fontPath := b.fonts.Regular
	if err := b.ctx.LoadFontFace(fontPath, fontSizePx); err != nil {
		return
	}
	b.ctx.SetRGBA(float64(color.R)/255.0, float64(color.G)/255.0, float64(color.B)/255.0, float64(color.A)/255.0)
	// run.Y is the line's top; gg.DrawString expects a baseline, matching
	// the teacher's textY := box.Y + fontSize baseline offset.
	b.ctx.DrawString(run.Text, run.X, run.Y+fontSizePx)
}

// SavePNG writes the rasterized canvas to filename.
func (b *GGBackend) SavePNG(filename string) error {
	return b.ctx.SavePNG(filename)
}

// Image exposes the underlying canvas for callers that want to encode it
// themselves (tests, alternate output formats).
func (b *GGBackend) Image() *gg.Context {
	return b.ctx
}
