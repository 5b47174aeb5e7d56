package cssom

import "go.uber.org/zap"

// UAStylesheet is the built-in default stylesheet applied before any
// author stylesheet, giving anchors their conventional look. Grounded on
// the teacher's applyUserAgentStyles in pkg/css/cascade.go, generalized
// from a hardcoded per-tag Style.Set call into an ordinary lowest-
// specificity, lowest-rule-index Stylesheet — so it merges through the
// same k-way cascade as author rules instead of being a special case.
const uaCSSText = `a { color: blue; }`

// CompileWithUA compiles the built-in UA stylesheet together with author
// CSS text, textually prepended so UA rules always receive lower
// RuleIndex values than any author rule — meaning an author rule of
// equal specificity correctly overrides the UA default, per the merge's
// (specificity, rule_index) ordering.
func CompileWithUA(authorCSS string, log *zap.Logger) *Stylesheet {
	return Compile(uaCSSText+"\n"+authorCSS, log)
}
