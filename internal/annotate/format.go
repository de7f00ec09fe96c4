package annotate

import (
	"fmt"
	"strings"

	"github.com/codellm-devkit/typergo/pkg/schema"
)

// Style seleziona la sintassi della riga di annotazione.
type Style int

const (
	// StyleSpec emits a declaration-style directive line.
	StyleSpec Style = iota
	// StyleDoc emits a documentation-comment line (edoc option).
	StyleDoc
)

// Formatter turns a function's TypeInfo into one annotation line. Records
// lets composite argument and return types be expanded to their field shape.
type Formatter struct {
	Style   Style
	Records []schema.RecordDecl
}

// Format produce la riga di annotazione completa, senza terminatore.
func (f *Formatter) Format(sig schema.Signature, info schema.TypeInfo) string {
	switch f.Style {
	case StyleDoc:
		return "// @spec " + f.render(sig, info)
	default:
		return "//typer:spec " + f.render(sig, info)
	}
}

// render sviluppa il corpo dell'annotazione. Lo switch è esaustivo sulle
// varianti chiuse di TypeInfo: nessun fallback silenzioso.
func (f *Formatter) render(sig schema.Signature, info schema.TypeInfo) string {
	switch v := info.(type) {
	case schema.Contract:
		return v.Text
	case schema.SignaturePair:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = f.expand(a)
		}
		ret := f.expand(v.Return)
		if ret == "" {
			return fmt.Sprintf("func %s(%s)", sig.Name, strings.Join(args, ", "))
		}
		return fmt.Sprintf("func %s(%s) %s", sig.Name, strings.Join(args, ", "), ret)
	default:
		panic(fmt.Sprintf("annotate: unhandled TypeInfo variant %T", info))
	}
}

// expand sostituisce un nome di record catalogato con la sua forma a campi.
func (f *Formatter) expand(typ string) string {
	for _, rec := range f.Records {
		if rec.Name != typ {
			continue
		}
		fields := make([]string, len(rec.Fields))
		for i, fd := range rec.Fields {
			fields[i] = fd.Name + " " + fd.Type
		}
		return fmt.Sprintf("%s{%s}", rec.Name, strings.Join(fields, "; "))
	}
	return typ
}
