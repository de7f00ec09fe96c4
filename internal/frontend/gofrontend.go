package frontend

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/codellm-devkit/typergo/pkg/schema"
)

// GoFrontEnd is the reference front-end for Go sources, built on
// golang.org/x/tools/go/packages. Declared positions are read in line
// directive-adjusted form, so definitions in generated files are attributed
// to their generator source.
type GoFrontEnd struct{}

// NewGoFrontEnd crea il front-end Go di riferimento.
func NewGoFrontEnd() *GoFrontEnd {
	return &GoFrontEnd{}
}

// Analyze carica il package contenente file ed estrae le forme analizzabili.
func (g *GoFrontEnd) Analyze(file string, opts Options) (*Forms, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", file, err)
	}

	cfg := &packages.Config{
		Mode:       packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles | packages.NeedSyntax,
		Dir:        filepath.Dir(abs),
		BuildFlags: buildFlags(opts),
	}
	pkgs, err := packages.Load(cfg, "file="+abs)
	if err != nil {
		return nil, fmt.Errorf("front-end conversion of %s: %w", file, err)
	}
	if packages.PrintErrors(pkgs) > 0 || len(pkgs) == 0 {
		return nil, fmt.Errorf("front-end conversion of %s failed", file)
	}

	for _, pkg := range pkgs {
		for _, syntax := range pkg.Syntax {
			// Il filename non aggiustato identifica il file su disco.
			raw := pkg.Fset.PositionFor(syntax.Pos(), false).Filename
			if raw != abs && filepath.Base(raw) != filepath.Base(abs) {
				continue
			}
			return extractForms(abs, syntax, pkg.Fset), nil
		}
	}
	return nil, fmt.Errorf("front-end conversion of %s failed: file not in loaded syntax", file)
}

// buildFlags traduce le macro in build tags per il loader. Le directory di
// include non hanno un equivalente nel module mode e vengono ignorate qui.
func buildFlags(opts Options) []string {
	if len(opts.Macros) == 0 {
		return nil
	}
	tags := make([]string, 0, len(opts.Macros))
	for name := range opts.Macros {
		tags = append(tags, name)
	}
	sort.Strings(tags)
	return []string{"-tags=" + strings.Join(tags, ",")}
}

// extractForms estrae firme esportate, definizioni e record da un file.
func extractForms(file string, syntax *ast.File, fset *token.FileSet) *Forms {
	forms := &Forms{File: file}

	for _, decl := range syntax.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			sig := schema.Signature{Name: d.Name.Name, Arity: arity(d.Type)}
			// Posizione aggiustata: onora le direttive //line, quindi il
			// codice generato risulta attribuito alla sua sorgente.
			pos := fset.PositionFor(d.Pos(), true)
			occ := schema.Occurrence{File: pos.Filename, Line: pos.Line, Sig: sig}
			if !pos.IsValid() {
				occ.File = file
				occ.Line = schema.LineUnknown
			}
			forms.Defs = append(forms.Defs, occ)
			if d.Recv == nil && ast.IsExported(d.Name.Name) {
				forms.Exported = append(forms.Exported, sig)
			}

		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}
				forms.Records = append(forms.Records, extractRecord(ts.Name.Name, st))
			}
		}
	}
	return forms
}

// arity conta i parametri dichiarati, espandendo i nomi raggruppati.
func arity(ft *ast.FuncType) int {
	if ft.Params == nil {
		return 0
	}
	n := 0
	for _, field := range ft.Params.List {
		if len(field.Names) == 0 {
			n++
			continue
		}
		n += len(field.Names)
	}
	return n
}

// extractRecord cataloga una dichiarazione struct per il pretty-printing.
func extractRecord(name string, st *ast.StructType) schema.RecordDecl {
	rec := schema.RecordDecl{Name: name}
	if st.Fields == nil {
		return rec
	}
	for _, field := range st.Fields.List {
		typ := types.ExprString(field.Type)
		if len(field.Names) == 0 {
			rec.Fields = append(rec.Fields, schema.RecordField{Name: typ, Type: typ})
			continue
		}
		for _, n := range field.Names {
			rec.Fields = append(rec.Fields, schema.RecordField{Name: n.Name, Type: typ})
		}
	}
	return rec
}
