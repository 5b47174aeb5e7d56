package cssom

import "strings"

// Combinator joins two compound selectors in a complex selector. Only
// descendant and child are supported, per spec §3.
type Combinator int

const (
	// Descendant is the implicit whitespace combinator: "div span".
	Descendant Combinator = iota
	// Child is the ">" combinator: "div > span".
	Child
)

// CompoundSelector is a single simple-selector group with no combinator:
// an optional tag, optional id, and zero or more classes, all of which
// must match the same element.
type CompoundSelector struct {
	Tag     string // "" means no tag constraint
	ID      string // "" means no id constraint
	Classes []string
}

// Specificity is the (id, class, tag) triple used to order matching rules.
// Comparison is lexicographic on the three fields, in that order.
type Specificity struct {
	ID    int
	Class int
	Tag   int
}

// Less reports whether s sorts before other.
func (s Specificity) Less(other Specificity) bool {
	if s.ID != other.ID {
		return s.ID < other.ID
	}
	if s.Class != other.Class {
		return s.Class < other.Class
	}
	return s.Tag < other.Tag
}

// ComplexSelector is an ordered chain of compound selectors joined by
// combinators, read left to right in source order (so the last element of
// Compounds is the selector's rightmost/subject compound).
type ComplexSelector struct {
	Compounds   []CompoundSelector
	Combinators []Combinator // len(Combinators) == len(Compounds)-1
	Specificity Specificity
}

// ParseSelectorList splits a selector-list string on top-level commas and
// parses each entry. A malformed entry causes that whole selector to be
// dropped; ok reports whether at least one selector parsed successfully
// (matching spec's "an unparseable selector skips the whole rule" only
// applying to that one comma-separated entry, not the entire rule, in
// with the standard CSS grouping semantics).
func ParseSelectorList(raw string) ([]ComplexSelector, bool) {
	entries := trimAll(splitTopLevel(raw, ','))
	if len(entries) == 0 {
		return nil, false
	}
	var out []ComplexSelector
	for _, entry := range entries {
		sel, ok := parseComplexSelector(entry)
		if ok {
			out = append(out, sel)
		}
	}
	return out, len(out) > 0
}

func parseComplexSelector(raw string) (ComplexSelector, bool) {
	raw = strings.ReplaceAll(raw, ">", " > ")
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ComplexSelector{}, false
	}

	var compounds []CompoundSelector
	var combinators []Combinator
	pendingChild := false

	for _, f := range fields {
		if f == ">" {
			pendingChild = true
			continue
		}
		if strings.HasPrefix(f, ">") {
			pendingChild = true
			f = strings.TrimPrefix(f, ">")
			if f == "" {
				continue
			}
		}
		compound, ok := parseCompound(f)
		if !ok {
			return ComplexSelector{}, false
		}
		if len(compounds) > 0 {
			if pendingChild {
				combinators = append(combinators, Child)
			} else {
				combinators = append(combinators, Descendant)
			}
		}
		pendingChild = false
		compounds = append(compounds, compound)
	}
	if len(compounds) == 0 {
		return ComplexSelector{}, false
	}

	return ComplexSelector{
		Compounds:   compounds,
		Combinators: combinators,
		Specificity: computeSpecificity(compounds),
	}, true
}

// parseCompound parses one compound selector token, e.g. "div.card#main".
func parseCompound(s string) (CompoundSelector, bool) {
	var c CompoundSelector
	i := 0
	for i < len(s) {
		switch s[i] {
		case '#':
			j := i + 1
			for j < len(s) && isSelectorNameByte(s[j]) {
				j++
			}
			if j == i+1 {
				return CompoundSelector{}, false
			}
			c.ID = s[i+1 : j]
			i = j
		case '.':
			j := i + 1
			for j < len(s) && isSelectorNameByte(s[j]) {
				j++
			}
			if j == i+1 {
				return CompoundSelector{}, false
			}
			c.Classes = append(c.Classes, s[i+1:j])
			i = j
		default:
			j := i
			for j < len(s) && isSelectorNameByte(s[j]) {
				j++
			}
			if j == i {
				return CompoundSelector{}, false
			}
			tag := s[i:j]
			if tag != "*" {
				c.Tag = tag
			}
			i = j
		}
	}
	if c.Tag == "" && c.ID == "" && len(c.Classes) == 0 {
		return CompoundSelector{}, false
	}
	return c, true
}

func isSelectorNameByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func computeSpecificity(compounds []CompoundSelector) Specificity {
	var s Specificity
	for _, c := range compounds {
		if c.ID != "" {
			s.ID++
		}
		s.Class += len(c.Classes)
		if c.Tag != "" {
			s.Tag++
		}
	}
	return s
}

// HasChildCombinator reports whether any combinator in the chain is a
// child combinator, used as the cascade's specificity tie-break: a
// selector chain that pins its ancestor with ">" is a strictly narrower
// match than the equivalent descendant-combinator chain, so it wins ties
// (spec §4.4 scenario 2 — see DESIGN.md's Open Question resolution).
func (cs ComplexSelector) HasChildCombinator() bool {
	for _, c := range cs.Combinators {
		if c == Child {
			return true
		}
	}
	return false
}

// RightmostKey reports the bucketing key spec §4.3 step 4 selects for a
// complex selector: the rightmost compound's most-specific identifier,
// in priority id > class > tag > universal.
func (cs ComplexSelector) RightmostKey() (kind BucketKind, key string) {
	rightmost := cs.Compounds[len(cs.Compounds)-1]
	switch {
	case rightmost.ID != "":
		return BucketByID, rightmost.ID
	case len(rightmost.Classes) > 0:
		return BucketByClass, rightmost.Classes[0]
	case rightmost.Tag != "":
		return BucketByTag, rightmost.Tag
	default:
		return BucketUniversal, ""
	}
}

// BucketKind names which of the four stylesheet buckets a rule was filed under.
type BucketKind int

const (
	BucketByID BucketKind = iota
	BucketByClass
	BucketByTag
	BucketUniversal
)
