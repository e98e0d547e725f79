package kernel

import (
	"strings"
	"testing"
)

func TestAutoImporter_InjectsInOrder(t *testing.T) {
	a := &autoImporter{
		marker: DefaultDependencyMarker,
		rules: []AutoImportRule{
			{Trigger: "lib-x", Imports: []string{"dep-a", "dep-b"}},
		},
	}

	code := "$ivy.`lib-x:1.0`\ndoStuff()"
	got := a.rewrite(code)
	want := "import dep-a\nimport dep-b\n" + code
	if got != want {
		t.Errorf("rewrite = %q, want %q", got, want)
	}
}

func TestAutoImporter_NoMarkerUnchanged(t *testing.T) {
	a := &autoImporter{
		marker: DefaultDependencyMarker,
		rules:  []AutoImportRule{{Trigger: "lib-x", Imports: []string{"dep-a"}}},
	}

	// Trigger text present but no dependency marker: no scan happens.
	code := "println(\"lib-x\")"
	if got := a.rewrite(code); got != code {
		t.Errorf("rewrite changed marker-free code: %q", got)
	}
}

func TestAutoImporter_MarkerWithoutTrigger(t *testing.T) {
	a := &autoImporter{
		marker: DefaultDependencyMarker,
		rules:  []AutoImportRule{{Trigger: "lib-x", Imports: []string{"dep-a"}}},
	}

	code := "$ivy.`unrelated:2.0`"
	if got := a.rewrite(code); got != code {
		t.Errorf("rewrite changed code without trigger: %q", got)
	}
}

func TestAutoImporter_MultipleTriggersRuleOrder(t *testing.T) {
	a := &autoImporter{
		marker: DefaultDependencyMarker,
		rules: []AutoImportRule{
			{Trigger: "lib-x", Imports: []string{"dep-a"}},
			{Trigger: "lib-y", Imports: []string{"dep-b"}},
		},
	}

	// lib-y appears before lib-x in the code; injection still follows rule
	// order.
	code := "$ivy.`lib-y:1.0`\n$ivy.`lib-x:1.0`"
	got := a.rewrite(code)
	if !strings.HasPrefix(got, "import dep-a\nimport dep-b\n") {
		t.Errorf("imports not in rule order: %q", got)
	}
	if !strings.HasSuffix(got, code) {
		t.Errorf("original code not preserved: %q", got)
	}
}

func TestAutoImporter_NilAndEmpty(t *testing.T) {
	var a *autoImporter
	if got := a.rewrite("x"); got != "x" {
		t.Errorf("nil importer rewrote code: %q", got)
	}

	a = &autoImporter{marker: DefaultDependencyMarker}
	if got := a.rewrite("$ivy.`lib-x:1.0`"); got != "$ivy.`lib-x:1.0`" {
		t.Errorf("ruleless importer rewrote code: %q", got)
	}
}
