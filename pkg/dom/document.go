// Package dom implements the document store: a generational arena of
// nodes wired as an intrusive doubly-linked sibling list, with an
// identifier index for O(1) getElementById lookups. See spec §3–§4.1.
package dom

import (
	"strings"

	"github.com/inoda-engine/browser/pkg/atom"
	"github.com/inoda-engine/browser/pkg/domerr"
)

// Document owns the arena, the root identifier, harvested stylesheet and
// script text, and the id-to-handle index.
type Document struct {
	arena      *arena
	Root       NodeID
	Atoms      *atom.Table
	StyleTexts []string
	Scripts    []string
	idIndex    map[string]NodeID
}

// NewDocument returns an empty Document containing a single Root node.
func NewDocument() *Document {
	a := newArena()
	d := &Document{
		arena:   a,
		Atoms:   atom.NewTable(),
		idIndex: make(map[string]NodeID),
	}
	d.Root = a.alloc(Node{Kind: KindRoot})
	return d
}

// Node returns the live node for id, or ok=false if id is stale or unknown.
func (d *Document) Node(id NodeID) (*Node, bool) {
	return d.arena.get(id)
}

// IsAttached reports whether id is reachable from the root by walking
// Parent links. Detached nodes (from CreateElement or a removed subtree
// that outlives its own removal) return false.
func (d *Document) IsAttached(id NodeID) bool {
	n, ok := d.arena.get(id)
	if !ok {
		return false
	}
	for {
		if n.Kind == KindRoot {
			return id == d.Root
		}
		if n.Parent == (NodeID{}) {
			return false
		}
		if n.Parent == d.Root {
			return true
		}
		var ok2 bool
		n, ok2 = d.arena.get(n.Parent)
		if !ok2 {
			return false
		}
		id = n.Parent
	}
}

// CreateElement allocates a detached element node.
func (d *Document) CreateElement(tag string, attrs []Attr) NodeID {
	n := Node{
		Kind:    KindElement,
		TagName: d.Atoms.Intern(strings.ToLower(tag)),
		Attrs:   append([]Attr(nil), attrs...),
	}
	for _, a := range attrs {
		key := d.Atoms.String(a.Key)
		switch key {
		case "id":
			n.ID = a.Value
		case "class":
			n.Classes = splitClasses(d.Atoms, a.Value)
		}
	}
	return d.arena.alloc(n)
}

// CreateText allocates a detached text node.
func (d *Document) CreateText(text string) NodeID {
	return d.arena.alloc(Node{Kind: KindText, Text: text})
}

// AppendChild unlinks child from its current siblings (if attached) and
// links it as the last child of parent.
func (d *Document) AppendChild(parent, child NodeID) error {
	p, ok := d.arena.get(parent)
	if !ok {
		return domerr.ErrStaleHandle
	}
	c, ok := d.arena.get(child)
	if !ok {
		return domerr.ErrStaleHandle
	}
	if p.Kind == KindText {
		return domerr.ErrInvalidParent
	}
	if d.isAncestorOf(child, parent) {
		return domerr.ErrCycle
	}

	if c.Parent != (NodeID{}) || (c.PrevSibling != (NodeID{})) || (c.NextSibling != (NodeID{})) || d.firstChildIs(c.Parent, child) {
		d.unlink(child)
		// re-fetch: unlink may not have touched c's own fields beyond Parent/siblings
		c, _ = d.arena.get(child)
	}

	c.Parent = parent
	c.PrevSibling = NodeID{}
	c.NextSibling = NodeID{}

	p, _ = d.arena.get(parent) // re-fetch after potential unlink mutated arena
	if p.LastChild == (NodeID{}) {
		p.FirstChild = child
		p.LastChild = child
	} else {
		last, _ := d.arena.get(p.LastChild)
		last.NextSibling = child
		c.PrevSibling = p.LastChild
		p.LastChild = child
	}
	return nil
}

// firstChildIs reports whether child is the recorded first child of a
// (possibly stale/zero) parent id — used only to decide whether an
// already-unparented node still needs unlinking from a stale sibling chain.
func (d *Document) firstChildIs(parent, child NodeID) bool {
	if parent == (NodeID{}) {
		return false
	}
	p, ok := d.arena.get(parent)
	return ok && p.FirstChild == child
}

// isAncestorOf reports whether candidate is node or an ancestor of node.
func (d *Document) isAncestorOf(candidate, node NodeID) bool {
	cur := node
	for {
		n, ok := d.arena.get(cur)
		if !ok {
			return false
		}
		if cur == candidate {
			return true
		}
		if n.Kind == KindRoot {
			return false
		}
		if n.Parent == (NodeID{}) {
			return false
		}
		cur = n.Parent
	}
}

// unlink removes id from its current parent's child chain, leaving id's
// own Parent/sibling fields to be overwritten by the caller.
func (d *Document) unlink(id NodeID) {
	n, ok := d.arena.get(id)
	if !ok {
		return
	}
	parent := n.Parent
	prev := n.PrevSibling
	next := n.NextSibling

	if prev != (NodeID{}) {
		if pn, ok := d.arena.get(prev); ok {
			pn.NextSibling = next
		}
	}
	if next != (NodeID{}) {
		if nn, ok := d.arena.get(next); ok {
			nn.PrevSibling = prev
		}
	}
	if parent != (NodeID{}) {
		if pn, ok := d.arena.get(parent); ok {
			if pn.FirstChild == id {
				pn.FirstChild = next
			}
			if pn.LastChild == id {
				pn.LastChild = prev
			}
		}
	}
}

// RemoveNode unlinks h and iteratively (queue-based, never recursive) frees
// its entire subtree, so deeply nested documents don't overflow the stack.
func (d *Document) RemoveNode(h NodeID) error {
	n, ok := d.arena.get(h)
	if !ok {
		return domerr.ErrStaleHandle
	}
	d.unlink(h)
	n.Parent = NodeID{}
	n.PrevSibling = NodeID{}
	n.NextSibling = NodeID{}

	queue := []NodeID{h}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		node, ok := d.arena.get(id)
		if !ok {
			continue
		}
		for child := node.FirstChild; child != (NodeID{}); {
			cn, ok := d.arena.get(child)
			if !ok {
				break
			}
			queue = append(queue, child)
			child = cn.NextSibling
		}
		if node.Kind == KindElement && node.ID != "" {
			if cur, ok := d.idIndex[node.ID]; ok && cur == id {
				delete(d.idIndex, node.ID)
			}
		}
		d.arena.free_(id)
	}
	return nil
}

// SetAttribute inserts or overwrites an attribute. Setting "id" removes the
// old id mapping (if it still points at this node) before inserting the
// new one, which also displaces any prior mapping for the new value.
func (d *Document) SetAttribute(h NodeID, key, value string) error {
	n, ok := d.arena.get(h)
	if !ok {
		return domerr.ErrStaleHandle
	}
	if n.Kind != KindElement {
		return domerr.ErrInvalidParent
	}
	atomKey := d.Atoms.Intern(key)
	found := false
	for i := range n.Attrs {
		if n.Attrs[i].Key == atomKey {
			n.Attrs[i].Value = value
			found = true
			break
		}
	}
	if !found {
		n.Attrs = append(n.Attrs, Attr{Key: atomKey, Value: value})
	}

	switch key {
	case "id":
		if n.ID != "" {
			if cur, ok := d.idIndex[n.ID]; ok && cur == h {
				delete(d.idIndex, n.ID)
			}
		}
		n.ID = value
		d.idIndex[value] = h
	case "class":
		n.Classes = splitClasses(d.Atoms, value)
	}
	return nil
}

// RemoveAttribute deletes an attribute outright, including the id_map
// entry when key is "id" — unlike SetAttribute(h, key, ""), which would
// leave the attribute present with an empty value.
func (d *Document) RemoveAttribute(h NodeID, key string) error {
	n, ok := d.arena.get(h)
	if !ok {
		return domerr.ErrStaleHandle
	}
	if n.Kind != KindElement {
		return domerr.ErrInvalidParent
	}
	atomKey := d.Atoms.Intern(key)
	for i := range n.Attrs {
		if n.Attrs[i].Key == atomKey {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			break
		}
	}
	switch key {
	case "id":
		if n.ID != "" {
			if cur, ok := d.idIndex[n.ID]; ok && cur == h {
				delete(d.idIndex, n.ID)
			}
		}
		n.ID = ""
	case "class":
		n.Classes = nil
	}
	return nil
}

// GetAttribute returns an element's attribute value.
func (d *Document) GetAttribute(h NodeID, key string) (string, bool) {
	n, ok := d.arena.get(h)
	if !ok || n.Kind != KindElement {
		return "", false
	}
	atomKey := d.Atoms.Intern(key)
	for _, a := range n.Attrs {
		if a.Key == atomKey {
			return a.Value, true
		}
	}
	return "", false
}

// GetElementByID performs a direct id_map lookup.
func (d *Document) GetElementByID(id string) (NodeID, bool) {
	h, ok := d.idIndex[id]
	return h, ok
}

func splitClasses(atoms *atom.Table, value string) []atom.Atom {
	fields := strings.Fields(value)
	out := make([]atom.Atom, 0, len(fields))
	seen := make(map[atom.Atom]bool, len(fields))
	for _, f := range fields {
		a := atoms.Intern(f)
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}
