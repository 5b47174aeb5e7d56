package cssom

import (
	"github.com/inoda-engine/browser/pkg/atom"
	"github.com/inoda-engine/browser/pkg/dom"
)

// inheritableProperties is the fixed inheritable subset spec §4.4 step 2
// names: color, font-family, font-size, font-weight, line-height,
// text-align, visibility.
var inheritableProperties = map[string]bool{
	"color": true, "font-family": true, "font-size": true,
	"font-weight": true, "line-height": true, "text-align": true,
	"visibility": true,
}

// PropertySet is an immutable computed-declaration vector. Go's garbage
// collector already gives "shared until the last reference drops" for
// free, so a plain shared *PropertySet pointer is the idiomatic Go
// realization of spec's Rc-shared vector — no manual refcounting needed.
// Never mutate a PropertySet in place once published to a StyledNode;
// build a new one and swap the pointer.
type PropertySet struct {
	values map[string]Value
}

// newPropertySet builds a PropertySet from an ordered declaration list,
// applying later-wins overwrite semantics for duplicate properties.
func newPropertySet(decls []Declaration) *PropertySet {
	ps := &PropertySet{values: make(map[string]Value, len(decls))}
	for _, d := range decls {
		ps.values[d.Property] = d.Value
	}
	return ps
}

// Get returns the resolved value for property, and whether it was set.
func (ps *PropertySet) Get(property string) (Value, bool) {
	if ps == nil {
		return Value{}, false
	}
	v, ok := ps.values[property]
	return v, ok
}

// StyledNode pairs a dom.NodeID with its resolved, possibly-shared PropertySet.
type StyledNode struct {
	Node       dom.NodeID
	Properties *PropertySet
	Children   []*StyledNode
}

// Cascade computes styled nodes for the whole document via a DFS from the
// given root, per spec §4.4. The cascade carries typed Values through
// unresolved; viewport- and font-relative lengths are resolved later by
// the layout adapter.
func Cascade(doc *dom.Document, sheet *Stylesheet, root dom.NodeID) *StyledNode {
	return cascadeNode(doc, sheet, root, nil)
}

func cascadeNode(doc *dom.Document, sheet *Stylesheet, id dom.NodeID, parentProps *PropertySet) *StyledNode {
	n, ok := doc.Node(id)
	if !ok {
		return nil
	}

	var props *PropertySet
	if n.Kind == dom.KindElement {
		props = computeElementStyle(doc, sheet, id, n, parentProps)
	} else {
		props = parentProps
	}

	styled := &StyledNode{Node: id, Properties: props}
	for child := n.FirstChild; child != (dom.NodeID{}); {
		cn, ok := doc.Node(child)
		if !ok {
			break
		}
		if childStyled := cascadeNode(doc, sheet, child, props); childStyled != nil {
			styled.Children = append(styled.Children, childStyled)
		}
		child = cn.NextSibling
	}
	return styled
}

func computeElementStyle(doc *dom.Document, sheet *Stylesheet, id dom.NodeID, n *dom.Node, parentProps *PropertySet) *PropertySet {
	matched := matchingRules(doc, sheet, id, n)
	inlineText, hasInline := doc.GetAttribute(id, "style")
	hasInline = hasInline && inlineText != ""

	if len(matched) == 0 && !hasInline {
		// No own declarations and no inline style: reuse the parent's
		// shared vector directly, no allocation (spec §4.4 step 3).
		return parentProps
	}

	var decls []Declaration
	for prop, v := range inheritedSubset(parentProps) {
		decls = append(decls, Declaration{Property: prop, Value: v})
	}
	for _, rule := range matched {
		decls = append(decls, rule.Declarations...)
	}
	if hasInline {
		decls = append(decls, ParseDeclarationBlock(inlineText, nil)...)
	}

	return newPropertySet(decls)
}

func inheritedSubset(props *PropertySet) map[string]Value {
	if props == nil {
		return nil
	}
	out := make(map[string]Value, len(inheritableProperties))
	for prop := range inheritableProperties {
		if v, ok := props.Get(prop); ok {
			out[prop] = v
		}
	}
	return out
}

// matchingRules performs the k-way merge over the candidate buckets
// (by_id[element.id], by_class[c] for each class, by_tag[tag], universal),
// each already sorted by (specificity, rule_index) ascending, and returns
// accepted rules in merged order. No intermediate merged slice of
// candidates is built beyond the read-pointer bookkeeping itself.
func matchingRules(doc *dom.Document, sheet *Stylesheet, id dom.NodeID, n *dom.Node) []*IndexedRule {
	var buckets [][]*IndexedRule
	if n.ID != "" {
		if b := sheet.ByID[n.ID]; len(b) > 0 {
			buckets = append(buckets, b)
		}
	}
	for _, c := range n.Classes {
		if b := sheet.ByClass[doc.Atoms.String(c)]; len(b) > 0 {
			buckets = append(buckets, b)
		}
	}
	if tag := doc.Atoms.String(n.TagName); tag != "" {
		if b := sheet.ByTag[tag]; len(b) > 0 {
			buckets = append(buckets, b)
		}
	}
	if len(sheet.Universal) > 0 {
		buckets = append(buckets, sheet.Universal)
	}
	if len(buckets) == 0 {
		return nil
	}

	cursors := make([]int, len(buckets))
	var result []*IndexedRule
	for {
		best := -1
		for i, cur := range cursors {
			if cur >= len(buckets[i]) {
				continue
			}
			if best == -1 || rulesLess(buckets[i][cur], buckets[best][cursors[best]]) {
				best = i
			}
		}
		if best == -1 {
			break
		}
		rule := buckets[best][cursors[best]]
		cursors[best]++
		if matchesComplexSelector(doc, id, rule.Selector) {
			result = append(result, rule)
		}
	}
	return result
}

// matchesComplexSelector evaluates sel right-to-left against id's ancestor
// chain, per spec §4.4 step 1: descendant combinator accepts any ancestor
// with a matching compound; child combinator requires the immediate
// parent to match. Grounded on the teacher's matchesCompoundSelector /
// matchesAncestor in pkg/css/matcher.go, generalized from *html.Node
// pointer walks to dom.NodeID walks via doc.Node(id).Parent.
func matchesComplexSelector(doc *dom.Document, id dom.NodeID, sel ComplexSelector) bool {
	return matchesFrom(doc, id, sel, len(sel.Compounds)-1)
}

// Matches reports whether id matches sel. Exported for the script bridge's
// querySelector/querySelectorAll/matches/closest bindings, which need the
// same selector-matching grammar the cascade itself uses (spec §4.7).
func Matches(doc *dom.Document, id dom.NodeID, sel ComplexSelector) bool {
	return matchesComplexSelector(doc, id, sel)
}

func matchesFrom(doc *dom.Document, id dom.NodeID, sel ComplexSelector, partIndex int) bool {
	n, ok := doc.Node(id)
	if !ok || n.Kind != dom.KindElement {
		return false
	}
	if !matchesCompound(doc, n, sel.Compounds[partIndex]) {
		return false
	}
	if partIndex == 0 {
		return true
	}

	combinator := sel.Combinators[partIndex-1]
	switch combinator {
	case Child:
		if n.Parent == (dom.NodeID{}) {
			return false
		}
		return matchesFrom(doc, n.Parent, sel, partIndex-1)
	default: // Descendant
		for ancestor := n.Parent; ancestor != (dom.NodeID{}); {
			an, ok := doc.Node(ancestor)
			if !ok {
				return false
			}
			if an.Kind == dom.KindElement && matchesFrom(doc, ancestor, sel, partIndex-1) {
				return true
			}
			ancestor = an.Parent
		}
		return false
	}
}

func matchesCompound(doc *dom.Document, n *dom.Node, c CompoundSelector) bool {
	if c.Tag != "" && doc.Atoms.String(n.TagName) != c.Tag {
		return false
	}
	if c.ID != "" && n.ID != c.ID {
		return false
	}
	for _, want := range c.Classes {
		if !hasClass(doc.Atoms, n.Classes, want) {
			return false
		}
	}
	return true
}

func hasClass(atoms *atom.Table, classes []atom.Atom, want string) bool {
	for _, c := range classes {
		if atoms.String(c) == want {
			return true
		}
	}
	return false
}
