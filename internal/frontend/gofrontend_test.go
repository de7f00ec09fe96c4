package frontend

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/codellm-devkit/typergo/pkg/schema"
)

func parse(t *testing.T, src string) (*token.FileSet, *Forms) {
	t.Helper()
	fset := token.NewFileSet()
	syntax, err := parser.ParseFile(fset, "sample.go", src, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return fset, extractForms("sample.go", syntax, fset)
}

func TestExtractForms_FunctionsAndExports(t *testing.T) {
	src := `package sample

func Exported(a int, b string) bool { return true }

func hidden() {}

type point struct {
	x, y int
	tag  string
}
`
	_, forms := parse(t, src)

	if len(forms.Defs) != 2 {
		t.Fatalf("expected 2 defs, got %d", len(forms.Defs))
	}
	want := schema.Signature{Name: "Exported", Arity: 2}
	if forms.Defs[0].Sig != want {
		t.Fatalf("unexpected first def: %v", forms.Defs[0].Sig)
	}
	if forms.Defs[0].Line != 3 {
		t.Fatalf("expected Exported at line 3, got %d", forms.Defs[0].Line)
	}
	if len(forms.Exported) != 1 || forms.Exported[0] != want {
		t.Fatalf("unexpected exported set: %v", forms.Exported)
	}

	if len(forms.Records) != 1 || forms.Records[0].Name != "point" {
		t.Fatalf("expected record point, got %v", forms.Records)
	}
	if len(forms.Records[0].Fields) != 3 {
		t.Fatalf("expected 3 record fields, got %v", forms.Records[0].Fields)
	}
	if forms.Records[0].Fields[0] != (schema.RecordField{Name: "x", Type: "int"}) {
		t.Fatalf("unexpected field: %v", forms.Records[0].Fields[0])
	}
}

func TestExtractForms_LineDirectiveAttribution(t *testing.T) {
	src := `package sample

//line grammar.y:42
func yyParse() int { return 0 }

//line sample.go:6
func own() {}
`
	_, forms := parse(t, src)

	if len(forms.Defs) != 2 {
		t.Fatalf("expected 2 defs, got %d", len(forms.Defs))
	}
	gen := forms.Defs[0]
	if gen.File != "grammar.y" || gen.Line != 42 {
		t.Fatalf("expected attribution to grammar.y:42, got %s:%d", gen.File, gen.Line)
	}
	if forms.Defs[1].File != "sample.go" || forms.Defs[1].Line != 6 {
		t.Fatalf("own function should stay attributed to sample.go:6, got %s:%d", forms.Defs[1].File, forms.Defs[1].Line)
	}
}

func TestArity_GroupedAndUnnamedParams(t *testing.T) {
	src := `package sample

func three(a, b int, c string) {}

func anon(int, string) {}

func none() {}
`
	_, forms := parse(t, src)

	got := map[string]int{}
	for _, d := range forms.Defs {
		got[d.Sig.Name] = d.Sig.Arity
	}
	if got["three"] != 3 || got["anon"] != 2 || got["none"] != 0 {
		t.Fatalf("unexpected arities: %v", got)
	}
}
