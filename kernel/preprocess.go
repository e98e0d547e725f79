package kernel

import "strings"

// DefaultDependencyMarker is the substring that marks a submission as
// containing dependency declarations. Submissions without it skip trigger
// scanning entirely.
const DefaultDependencyMarker = "$ivy."

// AutoImportRule maps a trigger substring to the ordered auxiliary import
// declarations injected when the trigger appears in a dependency-declaring
// submission.
type AutoImportRule struct {
	Trigger string
	Imports []string
}

// autoImporter is the dependency auto-injection preprocessor: a pure text
// rewrite with no side effects.
type autoImporter struct {
	marker string
	rules  []AutoImportRule
}

// rewrite prepends, for every trigger present in code, an import statement
// per auxiliary dependency, each as its own statement, in rule order, in
// front of the original text. Multiple triggers may fire. Code without the
// dependency marker is returned unchanged.
func (a *autoImporter) rewrite(code string) string {
	if a == nil || len(a.rules) == 0 {
		return code
	}
	if !strings.Contains(code, a.marker) {
		return code
	}

	var b strings.Builder
	for _, rule := range a.rules {
		if !strings.Contains(code, rule.Trigger) {
			continue
		}
		for _, imp := range rule.Imports {
			b.WriteString("import ")
			b.WriteString(imp)
			b.WriteString("\n")
		}
	}
	if b.Len() == 0 {
		return code
	}
	b.WriteString(code)
	return b.String()
}
