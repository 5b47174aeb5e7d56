package dom

import "github.com/inoda-engine/browser/pkg/atom"

// NodeKind discriminates the three node shapes the document store supports.
type NodeKind uint8

const (
	KindRoot NodeKind = iota
	KindElement
	KindText
)

// NodeID is an opaque generational handle into a Document's arena. The zero
// value is never issued by the arena (slot 0 is reserved), so a zero NodeID
// reliably fails every lookup.
type NodeID struct {
	slot       uint32
	generation uint32
}

// Slot and Generation expose NodeID's opaque parts for callers that need
// to round-trip an identity across a boundary that can't carry the
// struct directly — the script bridge stashes them as hidden numeric
// properties on a node's JS wrapper so it can recover the NodeID from a
// goja.Value without depending on goja's object-export internals.
func (id NodeID) Slot() uint32       { return id.slot }
func (id NodeID) Generation() uint32 { return id.generation }

// NewNodeIDFromParts reconstructs a NodeID from parts previously read via
// Slot/Generation. Only meaningful when both came from a NodeID minted by
// the same Document's arena.
func NewNodeIDFromParts(slot, generation uint32) NodeID {
	return NodeID{slot: slot, generation: generation}
}

// Attr is a single attribute, key interned, value left as a plain string
// (attribute values are free-form text, not worth interning).
type Attr struct {
	Key   atom.Atom
	Value string
}

// Node is the tagged variant backing all three node shapes. Fields that
// don't apply to a given Kind are left zero; see spec §3 for the shape
// definitions this mirrors.
type Node struct {
	Kind NodeKind

	// Element fields.
	TagName atom.Atom
	Attrs   []Attr
	Classes []atom.Atom
	ID      string

	// Text fields.
	Text string

	// Intrusive links, shared by Element and Text; Root uses only
	// FirstChild/LastChild.
	Parent      NodeID
	FirstChild  NodeID
	LastChild   NodeID
	PrevSibling NodeID
	NextSibling NodeID
}
