package cssom

import (
	"strings"

	"go.uber.org/zap"

	"github.com/inoda-engine/browser/pkg/domerr"
)

// Declaration is a single resolved property/value pair.
type Declaration struct {
	Property string
	Value    Value
}

// IndexedRule pairs a complex selector with its declaration block and the
// source-order index used as the cascade's secondary sort key.
type IndexedRule struct {
	Selector     ComplexSelector
	Declarations []Declaration
	RuleIndex    int
}

// Stylesheet is the compiled, bucketed form spec §4.3 produces: four
// buckets, each already sorted by (specificity, rule_index) ascending so
// the cascade's k-way merge never has to sort.
type Stylesheet struct {
	ByID      map[string][]*IndexedRule
	ByClass   map[string][]*IndexedRule
	ByTag     map[string][]*IndexedRule
	Universal []*IndexedRule
}

// Compile parses raw CSS text into a Stylesheet. A malformed entry of a
// selector list is dropped, and the rule only when none of its entries
// parse; malformed individual declarations are dropped and
// logged, without aborting the rest of the rule (spec §4.4 failure
// semantics). A nil logger is treated as a no-op logger.
func Compile(cssText string, log *zap.Logger) *Stylesheet {
	if log == nil {
		log = zap.NewNop()
	}
	sheet := &Stylesheet{
		ByID:    make(map[string][]*IndexedRule),
		ByClass: make(map[string][]*IndexedRule),
		ByTag:   make(map[string][]*IndexedRule),
	}

	ruleIndex := 0
	for _, block := range splitRuleBlocks(cssText) {
		bracePos := strings.Index(block, "{")
		if bracePos == -1 {
			continue
		}
		selectorText := strings.TrimSpace(block[:bracePos])
		declEnd := strings.LastIndex(block, "}")
		if declEnd == -1 {
			declEnd = len(block)
		}
		declText := block[bracePos+1 : declEnd]

		selectors, ok := ParseSelectorList(selectorText)
		if !ok {
			log.Warn("cssom: dropping rule with unparseable selector", zap.Error(domerr.ParseWarning{
				Stage: "selector", Detail: selectorText,
			}))
			continue
		}
		decls := parseDeclarationBlock(declText, log)
		if len(decls) == 0 {
			continue
		}

		for _, sel := range selectors {
			rule := &IndexedRule{Selector: sel, Declarations: decls, RuleIndex: ruleIndex}
			kind, key := sel.RightmostKey()
			switch kind {
			case BucketByID:
				sheet.ByID[key] = append(sheet.ByID[key], rule)
			case BucketByClass:
				sheet.ByClass[key] = append(sheet.ByClass[key], rule)
			case BucketByTag:
				sheet.ByTag[key] = append(sheet.ByTag[key], rule)
			default:
				sheet.Universal = append(sheet.Universal, rule)
			}
			ruleIndex++
		}
	}

	sortBuckets(sheet)
	return sheet
}

func sortBuckets(sheet *Stylesheet) {
	for _, b := range sheet.ByID {
		sortRules(b)
	}
	for _, b := range sheet.ByClass {
		sortRules(b)
	}
	for _, b := range sheet.ByTag {
		sortRules(b)
	}
	sortRules(sheet.Universal)
}

func sortRules(rules []*IndexedRule) {
	// Small insertion sort: buckets are tiny (rules per id/class/tag), and
	// this keeps the ordering key ((specificity, rule_index)) explicit
	// rather than reaching for sort.Slice's closure-based comparator.
	for i := 1; i < len(rules); i++ {
		j := i
		for j > 0 && rulesLess(rules[j], rules[j-1]) {
			rules[j], rules[j-1] = rules[j-1], rules[j]
			j--
		}
	}
}

func rulesLess(a, b *IndexedRule) bool {
	if a.Selector.Specificity != b.Selector.Specificity {
		return a.Selector.Specificity.Less(b.Selector.Specificity)
	}
	// Specificity tie: a chain pinned by a child combinator is narrower
	// than the equivalent descendant chain, so it's ordered to apply
	// last (and therefore win, since later-applied overrides earlier).
	aChild, bChild := a.Selector.HasChildCombinator(), b.Selector.HasChildCombinator()
	if aChild != bChild {
		return !aChild
	}
	return a.RuleIndex < b.RuleIndex
}

// splitRuleBlocks splits CSS text into brace-balanced "selector { decls }"
// chunks, grounded on the teacher's splitRules in pkg/css/stylesheet.go.
func splitRuleBlocks(css string) []string {
	var blocks []string
	depth := 0
	start := 0
	for i, ch := range css {
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				block := css[start : i+1]
				if strings.TrimSpace(block) != "" {
					blocks = append(blocks, block)
				}
				start = i + 1
			}
		}
	}
	return blocks
}

// ParseDeclarationBlock parses a "prop: value; prop2: value2" block,
// expanding shorthands, into resolved Declarations. Used both for
// stylesheet rule bodies and for inline style="" attributes (spec §4.3:
// "parsed via the same declaration grammar in isolation").
func ParseDeclarationBlock(declText string, log *zap.Logger) []Declaration {
	if log == nil {
		log = zap.NewNop()
	}
	return parseDeclarationBlock(declText, log)
}

func parseDeclarationBlock(declText string, log *zap.Logger) []Declaration {
	var out []Declaration
	for _, entry := range splitTopLevel(declText, ';') {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		colon := strings.Index(entry, ":")
		if colon == -1 {
			continue
		}
		property := strings.TrimSpace(entry[:colon])
		rawValue := strings.TrimSpace(entry[colon+1:])
		if property == "" || rawValue == "" {
			continue
		}

		expanded := ExpandShorthand(property, rawValue)
		for prop, val := range expanded {
			v, ok := ParseDeclarationValue(prop, val)
			if !ok {
				log.Warn("cssom: dropping unparseable declaration", zap.Error(domerr.ParseWarning{
					Stage: "declaration", Detail: prop + ": " + val,
				}))
				continue
			}
			out = append(out, Declaration{Property: prop, Value: v})
		}
	}
	return out
}
