// Package atom implements a small single-threaded string interner used for
// tag names, attribute keys, class names, and CSS property names.
//
// The engine is single-threaded end to end (spec §5), so the interner needs
// no locking. No third-party interning library appears anywhere in the
// retrieved example pack, so this stays on the standard library — the one
// deliberately stdlib-only piece of the data model, noted in DESIGN.md.
package atom

// Atom is a cheap-to-compare, cheap-to-hash handle for an interned string.
type Atom uint32

// Empty is the zero Atom, always the empty string.
const Empty Atom = 0

// Table interns strings to Atoms and back.
type Table struct {
	byString map[string]Atom
	byAtom   []string
}

// NewTable returns a Table pre-seeded with the empty string at Empty.
func NewTable() *Table {
	t := &Table{
		byString: make(map[string]Atom, 64),
		byAtom:   make([]string, 1, 64),
	}
	t.byString[""] = Empty
	return t
}

// Intern returns the Atom for s, allocating a new one if s hasn't been seen.
func (t *Table) Intern(s string) Atom {
	if s == "" {
		return Empty
	}
	if a, ok := t.byString[s]; ok {
		return a
	}
	a := Atom(len(t.byAtom))
	t.byAtom = append(t.byAtom, s)
	t.byString[s] = a
	return a
}

// String returns the interned string for a. Unknown atoms return "".
func (t *Table) String(a Atom) string {
	if int(a) >= len(t.byAtom) {
		return ""
	}
	return t.byAtom[a]
}
