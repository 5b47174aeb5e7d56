package text

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// GlyphID is a font-internal glyph index, kept opaque to callers the way
// the Render Walker's DrawGlyphs contract expects (spec §4.6: "preserving
// glyph metrics, not re-stringifying").
type GlyphID uint16

// ShapedGlyph is one positioned glyph within a shaped line, pen-relative
// to the line's origin.
type ShapedGlyph struct {
	GID      GlyphID
	Cluster  int
	X, Y     float64
	XAdvance float64
}

// Color is the shaping package's own RGBA quad, decoupled from cssom the
// way flexsolver is decoupled from cssom — the Layout Coupling Layer
// converts cssom.Color at the boundary.
type Color struct {
	R, G, B, A uint8
}

// LineRun is one wrapped, positioned line of text ready for the Render
// Walker's draw-glyph-run calls.
type LineRun struct {
	Text   string
	Glyphs []ShapedGlyph
	Width  float64
}

var (
	fontCacheMu sync.RWMutex
	fontCache   = make(map[string]*gotext.Font)

	shaperPool = sync.Pool{
		New: func() any { return &shaping.HarfbuzzShaper{} },
	}
)

func loadFont(path string) (*gotext.Font, error) {
	fontCacheMu.RLock()
	if f, ok := fontCache[path]; ok {
		fontCacheMu.RUnlock()
		return f, nil
	}
	fontCacheMu.RUnlock()

	fontCacheMu.Lock()
	defer fontCacheMu.Unlock()
	if f, ok := fontCache[path]; ok {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: reading font %q: %w", path, err)
	}
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parsing font %q: %w", path, err)
	}
	fontCache[path] = face.Font
	return face.Font, nil
}

// ShapedBuffer is a text node's pre-shaped, incrementally rewrappable
// glyph source (spec §4.5: "create a pre-shaped text buffer ... shaping
// runs exactly once per text node per layout cycle" — that one shape is
// this constructor; SetSize/ShapeUntilScroll below only rewrap the
// already-shaped word runs against a candidate width, they never
// re-invoke the font's shaping tables from scratch per word).
type ShapedBuffer struct {
	words        []string
	leadingSpace bool
	fontSizePx   float64
	lineHeightPx float64
	color        Color
	face         *gotext.Face

	width        float32
	maxLineWidth float32
	lines        []LineRun
}

// NewShapedBuffer builds a shaped buffer for text, resolved against the
// element's inherited font-family, font-weight, font-size, line-height
// and color (spec §4.5's pre-pass inputs; em/rem/vw/vh resolution to
// fontSizePx/lineHeightPx pixels is the Layout Adapter's job before it
// calls here).
func NewShapedBuffer(text, fontFamily, fontWeight string, fontSizePx, lineHeightPx float64, color Color, cfg FontConfig) (*ShapedBuffer, error) {
	path := cfg.ResolvePath(fontFamily, fontWeight)
	f, err := loadFont(path)
	if err != nil {
		return nil, err
	}

	words, leadingSpace := splitWords(text)
	return &ShapedBuffer{
		words:        words,
		leadingSpace: leadingSpace,
		fontSizePx:   fontSizePx,
		lineHeightPx: lineHeightPx,
		color:        color,
		face:         gotext.NewFace(f),
	}, nil
}

// SetSize records the candidate wrap width for the next ShapeUntilScroll
// call, per spec §4.5 step 1.
func (b *ShapedBuffer) SetSize(width float32) {
	b.width = width
}

// ShapeUntilScroll rewraps the buffer's words against the width set by
// SetSize using a greedy word-wrap (grounded on the teacher's
// BreakTextIntoLinesWithWrap in pkg/text/measure.go, generalized from
// gg.MeasureString to go-text/typesetting's HarfBuzz shaper so wrap
// widths reflect real kerning and ligatures instead of naive glyph-width
// summation), and returns the widest line together with every line's
// positioned glyph run, per spec §4.5 step 2-3.
func (b *ShapedBuffer) ShapeUntilScroll() (maxLineWidth float32, lines []LineRun) {
	if len(b.words) == 0 {
		b.lines = nil
		b.maxLineWidth = 0
		return 0, nil
	}

	var out []LineRun
	current := ""
	var currentRun LineRun

	flush := func() {
		if current == "" {
			return
		}
		out = append(out, currentRun)
		if float32(currentRun.Width) > b.maxLineWidth {
			b.maxLineWidth = float32(currentRun.Width)
		}
	}

	b.maxLineWidth = 0
	for i, word := range b.words {
		if i == 0 && b.leadingSpace {
			word = " " + word
		}
		candidate := current
		if candidate != "" {
			candidate += " "
		}
		candidate += word

		run := b.shapeLine(candidate)
		if float64(b.width) > 0 && run.Width > float64(b.width) && current != "" {
			flush()
			current = word
			currentRun = b.shapeLine(current)
			continue
		}
		current = candidate
		currentRun = run
	}
	flush()

	b.lines = out
	return b.maxLineWidth, b.lines
}

// shapeLine runs one HarfBuzz shaping pass over a candidate line, pooling
// the (not concurrency-safe) HarfbuzzShaper instance the way the
// go-text/typesetting shaper adapter in the example pack does.
func (b *ShapedBuffer) shapeLine(lineText string) LineRun {
	runes := []rune(lineText)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR, // spec's scope carries no bidi/vertical text.
		Face:      b.face,
		Size:      floatToFixed(b.fontSizePx),
		Script:    language.Latin,
		Language:  language.NewLanguage("en"),
	}

	shaper := shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := shaper.Shape(input)
	shaperPool.Put(shaper)

	glyphs := make([]ShapedGlyph, len(output.Glyphs))
	var x float64
	for i, g := range output.Glyphs {
		adv := fixedToFloat(g.XAdvance)
		glyphs[i] = ShapedGlyph{
			GID:      GlyphID(uint16(g.GlyphID)),
			Cluster:  g.ClusterIndex,
			X:        x + fixedToFloat(g.XOffset),
			Y:        fixedToFloat(g.YOffset),
			XAdvance: adv,
		}
		x += adv
	}

	return LineRun{Text: lineText, Glyphs: glyphs, Width: x}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// LineHeightPx is the resolved line-height in pixels this buffer was
// built with, used by the Layout Adapter's measure closure to report
// num_lines*line_height.
func (b *ShapedBuffer) LineHeightPx() float64 { return b.lineHeightPx }

// FontSizePx is the resolved font-size in pixels this buffer was shaped
// at, forwarded to the Render Walker's draw-glyph-run calls.
func (b *ShapedBuffer) FontSizePx() float64 { return b.fontSizePx }

// Color is the resolved inherited color the Render Walker paints glyphs
// with.
func (b *ShapedBuffer) Color() Color { return b.color }

// Lines returns the line runs computed by the most recent
// ShapeUntilScroll call, without reshaping — the finalize pass reads a
// leaf's already-wrapped lines back out through this after Solve
// returns, rather than invoking the solver's Measure closure again.
func (b *ShapedBuffer) Lines() []LineRun { return b.lines }

// splitWords splits text on runs of ASCII whitespace, reporting whether
// the original text had leading whitespace so a text node that follows
// an inline sibling (e.g. "</a> more text") keeps its separating space —
// grounded on the teacher's splitIntoWords/leadingSpace handling.
func splitWords(text string) (words []string, leadingSpace bool) {
	if text == "" {
		return nil, false
	}
	if r := text[0]; r == ' ' || r == '\t' || r == '\n' {
		leadingSpace = true
	}
	return strings.Fields(text), leadingSpace
}
