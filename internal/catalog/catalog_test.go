package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codellm-devkit/typergo/internal/frontend"
	"github.com/codellm-devkit/typergo/pkg/schema"
)

func sig(name string, arity int) schema.Signature {
	return schema.Signature{Name: name, Arity: arity}
}

func TestAdd_PartitionsOwnAndForeign(t *testing.T) {
	forms := &frontend.Forms{
		File: "/src/app.go",
		Defs: []schema.Occurrence{
			{File: "/src/app.go", Line: 10, Sig: sig("a", 1)},
			{File: "/src/grammar.y", Line: 4, Sig: sig("parse", 2)},
			{File: "/src/app.go", Line: 3, Sig: sig("b", 0)},
			{File: "/other/app.go", Line: 7, Sig: sig("c", 1)},
			{File: "/src/lexer.inc.go", Line: 2, Sig: sig("lex", 0)},
			{File: "/src/grammar.y", Line: 9, Sig: sig("reduce", 1)},
		},
	}

	c := New()
	c.Add("/src/app.go", forms)
	entry := c.Entry("/src/app.go")
	if entry == nil {
		t.Fatalf("entry not cataloged")
	}

	// Own sorted ascending by line; base-name fallback claims /other/app.go.
	wantOwn := []schema.Occurrence{
		{File: "/src/app.go", Line: 3, Sig: sig("b", 0)},
		{File: "/other/app.go", Line: 7, Sig: sig("c", 1)},
		{File: "/src/app.go", Line: 10, Sig: sig("a", 1)},
	}
	if diff := cmp.Diff(wantOwn, entry.Own); diff != "" {
		t.Fatalf("own mismatch (-want +got):\n%s", diff)
	}

	// Foreign grouped by origin file, insertion order within the group and
	// first-encounter order across groups.
	wantForeign := map[string][]schema.Occurrence{
		"/src/grammar.y": {
			{File: "/src/grammar.y", Line: 4, Sig: sig("parse", 2)},
			{File: "/src/grammar.y", Line: 9, Sig: sig("reduce", 1)},
		},
		"/src/lexer.inc.go": {
			{File: "/src/lexer.inc.go", Line: 2, Sig: sig("lex", 0)},
		},
	}
	if diff := cmp.Diff(wantForeign, entry.Foreign); diff != "" {
		t.Fatalf("foreign mismatch (-want +got):\n%s", diff)
	}
	wantOrigins := []string{"/src/grammar.y", "/src/lexer.inc.go"}
	if diff := cmp.Diff(wantOrigins, entry.ForeignOrder); diff != "" {
		t.Fatalf("origin order mismatch (-want +got):\n%s", diff)
	}

	// Partition is disjoint and exhaustive over non-synthetic defs.
	foreign := 0
	for _, occs := range entry.Foreign {
		foreign += len(occs)
	}
	if len(entry.Own)+foreign != len(forms.Defs) {
		t.Fatalf("partition not exhaustive: %d own + %d foreign != %d defs",
			len(entry.Own), foreign, len(forms.Defs))
	}
}

func TestAdd_DropsSyntheticBookkeeping(t *testing.T) {
	forms := &frontend.Forms{
		File: "/src/app.go",
		Exported: []schema.Signature{
			sig("module_info", 0),
			sig("Run", 1),
		},
		Defs: []schema.Occurrence{
			{File: "/src/app.go", Line: 1, Sig: sig("module_info", 0)},
			{File: "/src/app.go", Line: 2, Sig: sig("module_info", 1)},
			{File: "/src/app.go", Line: 3, Sig: sig("module_info", 2)},
			{File: "/src/app.go", Line: 4, Sig: sig("Run", 1)},
		},
	}

	c := New()
	c.Add("/src/app.go", forms)
	entry := c.Entry("/src/app.go")

	if len(entry.Own) != 2 {
		t.Fatalf("expected synthetic helpers dropped, got %v", entry.Own)
	}
	if entry.Own[0].Sig != sig("module_info", 2) {
		t.Fatalf("arity-2 module_info is not synthetic, got %v", entry.Own[0].Sig)
	}
	if _, ok := entry.Exported[sig("module_info", 0)]; ok {
		t.Fatalf("synthetic signature must not appear in exported set")
	}
	if _, ok := entry.Exported[sig("Run", 1)]; !ok {
		t.Fatalf("Run/1 should be exported")
	}
}

func TestAdd_PreservesDiscoveryOrder(t *testing.T) {
	c := New()
	c.Add("/src/b.go", &frontend.Forms{File: "/src/b.go"})
	c.Add("/src/a.go", &frontend.Forms{File: "/src/a.go"})

	want := []string{"/src/b.go", "/src/a.go"}
	if diff := cmp.Diff(want, c.Order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}
