package scriptbridge

import (
	"github.com/inoda-engine/browser/pkg/cssom"
	"github.com/inoda-engine/browser/pkg/dom"
)

// querySelectorFrom returns the first element in DFS order under root
// (root itself included) whose compound selector chain matches sel,
// parsed with the same grammar stylesheet selectors use (spec §4.7).
func querySelectorFrom(doc *dom.Document, root dom.NodeID, sel string) (dom.NodeID, bool) {
	list, ok := cssom.ParseSelectorList(sel)
	if !ok || len(list) == 0 {
		return dom.NodeID{}, false
	}
	var found dom.NodeID
	var ok2 bool
	walkDFS(doc, root, func(id dom.NodeID) bool {
		if ok2 {
			return false
		}
		if matchesAny(doc, id, list) {
			found, ok2 = id, true
			return false
		}
		return true
	})
	return found, ok2
}

// querySelectorAllFrom collects every DFS-order match under root.
func querySelectorAllFrom(doc *dom.Document, root dom.NodeID, sel string) []dom.NodeID {
	list, ok := cssom.ParseSelectorList(sel)
	if !ok || len(list) == 0 {
		return nil
	}
	var out []dom.NodeID
	walkDFS(doc, root, func(id dom.NodeID) bool {
		if matchesAny(doc, id, list) {
			out = append(out, id)
		}
		return true
	})
	return out
}

// matchesSelf reports whether id itself matches sel (Element.matches).
func matchesSelf(doc *dom.Document, id dom.NodeID, sel string) bool {
	list, ok := cssom.ParseSelectorList(sel)
	if !ok {
		return false
	}
	return matchesAny(doc, id, list)
}

// closestFrom walks id and its ancestors, returning the first that
// matches sel (Element.closest).
func closestFrom(doc *dom.Document, id dom.NodeID, sel string) (dom.NodeID, bool) {
	list, ok := cssom.ParseSelectorList(sel)
	if !ok || len(list) == 0 {
		return dom.NodeID{}, false
	}
	cur := id
	for {
		n, ok := doc.Node(cur)
		if !ok {
			return dom.NodeID{}, false
		}
		if n.Kind == dom.KindElement && matchesAny(doc, cur, list) {
			return cur, true
		}
		if n.Kind == dom.KindRoot || n.Parent == (dom.NodeID{}) {
			return dom.NodeID{}, false
		}
		cur = n.Parent
	}
}

func matchesAny(doc *dom.Document, id dom.NodeID, list []cssom.ComplexSelector) bool {
	n, ok := doc.Node(id)
	if !ok || n.Kind != dom.KindElement {
		return false
	}
	for _, sel := range list {
		if cssom.Matches(doc, id, sel) {
			return true
		}
	}
	return false
}

// walkDFS visits id and its descendants in document order. visit
// returning false skips that node's own children but does not otherwise
// halt the walk; callers that need "first match" latch a found flag
// themselves (see querySelectorFrom) rather than this helper threading a
// global cancellation signal back up through the recursion.
func walkDFS(doc *dom.Document, id dom.NodeID, visit func(dom.NodeID) bool) {
	n, ok := doc.Node(id)
	if !ok {
		return
	}
	if n.Kind == dom.KindElement {
		if !visit(id) {
			return
		}
	}
	for child := n.FirstChild; child != (dom.NodeID{}); {
		cn, ok := doc.Node(child)
		if !ok {
			break
		}
		walkDFS(doc, child, visit)
		child = cn.NextSibling
	}
}
