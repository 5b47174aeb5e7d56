// Package htmlparse drives an external streaming HTML tokenizer and
// translates its tokens into arena mutations on a dom.Document. See
// spec §4.2.
package htmlparse

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/inoda-engine/browser/pkg/dom"
)

type rawTagState int

const (
	rawNone rawTagState = iota
	rawScript
	rawStyle
)

// Adapter drives golang.org/x/net/html's Tokenizer and builds a dom.Document
// from the token stream, applying implicit-closure recovery the way a
// tolerant HTML parser does.
type Adapter struct {
	doc           *dom.Document
	tok           *html.Tokenizer
	currentParent dom.NodeID
	rawTag        rawTagState
	rawTagName    string
	log           *zap.Logger
}

// New returns an Adapter that will parse r into a fresh dom.Document.
// A nil logger falls back to a no-op logger.
func New(r io.Reader, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	doc := dom.NewDocument()
	return &Adapter{
		doc:           doc,
		tok:           html.NewTokenizer(r),
		currentParent: doc.Root,
		log:           log,
	}
}

// Parse consumes the entire input and returns the built document.
func Parse(r io.Reader, log *zap.Logger) (*dom.Document, error) {
	a := New(r, log)
	return a.Run()
}

// ParseString is a convenience wrapper over Parse for in-memory HTML text.
func ParseString(src string, log *zap.Logger) (*dom.Document, error) {
	return Parse(strings.NewReader(src), log)
}

// Run drives the tokenizer to completion, mutating and returning the
// Adapter's document.
func (a *Adapter) Run() (*dom.Document, error) {
	for {
		tt := a.tok.Next()
		switch tt {
		case html.ErrorToken:
			if err := a.tok.Err(); err != io.EOF {
				return nil, fmt.Errorf("htmlparse: tokenizer error: %w", err)
			}
			return a.doc, nil
		case html.TextToken:
			a.handleText(a.tok.Token())
		case html.StartTagToken, html.SelfClosingTagToken:
			a.handleStartTag(a.tok.Token(), tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			a.handleEndTag(a.tok.Token())
		case html.CommentToken, html.DoctypeToken:
			// skipped per spec
		}
	}
}

func (a *Adapter) handleText(tok html.Token) {
	text := tok.Data
	if text == "" {
		return
	}
	switch a.rawTag {
	case rawScript:
		a.doc.Scripts = append(a.doc.Scripts, text)
	case rawStyle:
		a.doc.StyleTexts = append(a.doc.StyleTexts, text)
	default:
		// Whitespace-only text is preserved: required for correct inline
		// spacing semantics.
		id := a.doc.CreateText(text)
		if err := a.doc.AppendChild(a.currentParent, id); err != nil {
			a.log.Warn("htmlparse: append text failed", zap.Error(err))
		}
	}
}

func (a *Adapter) handleStartTag(tok html.Token, selfClosing bool) {
	name := tok.Data

	if a.rawTag != rawNone {
		// A nested tag surfaced while a raw_tag is open (the tokenizer
		// normally swallows this into a single TextToken, but stay
		// defensive per spec's literal-reemission rule).
		a.reemitRaw(serializeStartTag(tok))
		return
	}

	a.applyImplicitClosure(name)

	el := a.doc.CreateElement(name, nil)
	for _, htmlAttr := range tok.Attr {
		if err := a.doc.SetAttribute(el, htmlAttr.Key, htmlAttr.Val); err != nil {
			a.log.Warn("htmlparse: set attribute failed", zap.String("tag", name), zap.Error(err))
		}
	}

	if err := a.doc.AppendChild(a.currentParent, el); err != nil {
		a.log.Warn("htmlparse: append element failed", zap.String("tag", name), zap.Error(err))
		return
	}

	isVoid := selfClosing || voidElements[name]
	if !isVoid {
		a.currentParent = el
	}

	switch name {
	case "script":
		a.rawTag = rawScript
		a.rawTagName = name
	case "style":
		a.rawTag = rawStyle
		a.rawTagName = name
	}
}

func (a *Adapter) handleEndTag(tok html.Token) {
	name := tok.Data

	if a.rawTag != rawNone {
		if name == a.rawTagName {
			a.rawTag = rawNone
			a.rawTagName = ""
			if n, ok := a.doc.Node(a.currentParent); ok {
				a.currentParent = n.Parent
			}
			return
		}
		// Inside raw_tag but name differs: literal text.
		a.reemitRaw("</" + name + ">")
		return
	}

	a.closeTag(name)
}

// reemitRaw folds a literal tag string into whichever accumulator (Scripts,
// StyleTexts, or a plain text child) is currently active.
func (a *Adapter) reemitRaw(literal string) {
	switch a.rawTag {
	case rawScript:
		a.doc.Scripts = append(a.doc.Scripts, literal)
	case rawStyle:
		a.doc.StyleTexts = append(a.doc.StyleTexts, literal)
	default:
		id := a.doc.CreateText(literal)
		_ = a.doc.AppendChild(a.currentParent, id)
	}
}

// applyImplicitClosure walks ancestors of currentParent looking for an
// element that name should implicitly close (a block-level element closes
// an open <p>; <li> closes a sibling <li>), stopping at block boundaries
// to avoid over-popping.
func (a *Adapter) applyImplicitClosure(name string) {
	if blockElements[name] {
		a.closeOpenAncestor("p")
	}
	if name == "li" {
		a.closeOpenAncestor("li")
	}
}

// closeOpenAncestor pops currentParent up to (and one past) the nearest
// open ancestor with tag, stopping early at a block-boundary element.
func (a *Adapter) closeOpenAncestor(tag string) {
	cur := a.currentParent
	for {
		n, ok := a.doc.Node(cur)
		if !ok || n.Kind == dom.KindRoot {
			return
		}
		tagName := a.doc.Atoms.String(n.TagName)
		if tagName == tag {
			a.currentParent = n.Parent
			return
		}
		if blockBoundaries[tagName] {
			return
		}
		cur = n.Parent
	}
}

// closeTag pops currentParent up to (and one past) the nearest ancestor
// whose tag matches name. A missing match is silently ignored, per spec's
// HTML-tolerance requirement.
func (a *Adapter) closeTag(name string) {
	cur := a.currentParent
	for {
		n, ok := a.doc.Node(cur)
		if !ok || n.Kind == dom.KindRoot {
			return
		}
		tagName := a.doc.Atoms.String(n.TagName)
		if tagName == name {
			a.currentParent = n.Parent
			return
		}
		cur = n.Parent
	}
}

func serializeStartTag(tok html.Token) string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(tok.Data)
	for _, a := range tok.Attr {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(a.Val)
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	return sb.String()
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"details": true, "dialog": true, "dd": true, "div": true, "dl": true,
	"dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hgroup": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "ul": true,
}

// blockBoundaries bounds the implicit-closure ancestor walk, per spec.
var blockBoundaries = map[string]bool{
	"div": true, "body": true, "td": true, "th": true, "table": true,
}
