package dom

import (
	"sort"
	"strings"

	"github.com/inoda-engine/browser/pkg/atom"
	"github.com/inoda-engine/browser/pkg/domerr"
)

// Contains reports whether other is id itself or a descendant of it.
func (d *Document) Contains(id, other NodeID) bool {
	return d.isAncestorOf(id, other)
}

// CloneNode copies the node at id. If deep is true, all descendants are
// cloned too. The clone is detached (no parent, no siblings) and, for
// elements, gets a fresh id_map entry only if the caller later re-inserts
// it and calls SetAttribute — CloneNode itself does not touch idIndex,
// since a document with two elements sharing an id is a pre-existing
// author error, not something clone should paper over.
func (d *Document) CloneNode(id NodeID, deep bool) (NodeID, error) {
	n, ok := d.arena.get(id)
	if !ok {
		return NodeID{}, domerr.ErrStaleHandle
	}
	clone := *n
	clone.Parent = NodeID{}
	clone.PrevSibling = NodeID{}
	clone.NextSibling = NodeID{}
	clone.FirstChild = NodeID{}
	clone.LastChild = NodeID{}
	clone.Attrs = append([]Attr(nil), n.Attrs...)
	clone.Classes = append([]atom.Atom(nil), n.Classes...)

	newID := d.arena.alloc(clone)
	if deep {
		for child := n.FirstChild; child != (NodeID{}); {
			cn, ok := d.arena.get(child)
			if !ok {
				break
			}
			childClone, err := d.CloneNode(child, true)
			if err == nil {
				_ = d.AppendChild(newID, childClone)
			}
			child = cn.NextSibling
		}
	}
	return newID, nil
}

// Serialize returns the innerHTML of id: the concatenated markup of its
// children, not its own tag.
func (d *Document) Serialize(id NodeID) string {
	n, ok := d.arena.get(id)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for child := n.FirstChild; child != (NodeID{}); {
		cn, ok := d.arena.get(child)
		if !ok {
			break
		}
		d.serializeNode(&sb, child)
		child = cn.NextSibling
	}
	return sb.String()
}

// SerializeOuter returns the outerHTML of id: its own tag plus all descendants.
func (d *Document) SerializeOuter(id NodeID) string {
	var sb strings.Builder
	d.serializeNode(&sb, id)
	return sb.String()
}

func (d *Document) serializeNode(sb *strings.Builder, id NodeID) {
	n, ok := d.arena.get(id)
	if !ok {
		return
	}
	if n.Kind == KindText {
		sb.WriteString(escapeHTML(n.Text))
		return
	}
	if n.Kind == KindRoot {
		for child := n.FirstChild; child != (NodeID{}); {
			cn, ok := d.arena.get(child)
			if !ok {
				break
			}
			d.serializeNode(sb, child)
			child = cn.NextSibling
		}
		return
	}

	tag := d.Atoms.String(n.TagName)
	sb.WriteByte('<')
	sb.WriteString(tag)

	if len(n.Attrs) > 0 {
		type kv struct{ k, v string }
		pairs := make([]kv, 0, len(n.Attrs))
		for _, a := range n.Attrs {
			pairs = append(pairs, kv{d.Atoms.String(a.Key), a.Value})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })
		for _, p := range pairs {
			sb.WriteByte(' ')
			sb.WriteString(p.k)
			sb.WriteString(`="`)
			sb.WriteString(escapeAttr(p.v))
			sb.WriteByte('"')
		}
	}

	if isVoidElement(tag) {
		sb.WriteString(">")
		return
	}

	sb.WriteByte('>')
	for child := n.FirstChild; child != (NodeID{}); {
		cn, ok := d.arena.get(child)
		if !ok {
			break
		}
		d.serializeNode(sb, child)
		child = cn.NextSibling
	}
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteByte('>')
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func isVoidElement(tag string) bool {
	switch tag {
	case "br", "hr", "img", "input", "meta", "link", "area", "base",
		"col", "embed", "param", "source", "track", "wbr":
		return true
	}
	return false
}
