// Package schema definisce il modello dati condiviso del typer.
package schema

import "fmt"

// Sentinel declared lines. Real positions are 1-based, so neither value can
// collide with an actual insertion point.
const (
	// LineUnknown marks an occurrence without a usable source position.
	// It never matches any insertion point.
	LineUnknown = -1

	// LineFirst marks an annotation that belongs before any original byte,
	// used for whole-file aggregate writes.
	LineFirst = 0
)

// Signature identifies a function within one module: (name, arity).
type Signature struct {
	Name  string
	Arity int
}

func (s Signature) String() string {
	return fmt.Sprintf("%s/%d", s.Name, s.Arity)
}

// Occurrence is one function definition together with its declared position.
// File is the origin-file tag carried by the position; for generated code it
// may name a different file than the one under analysis.
type Occurrence struct {
	File string
	Line int
	Sig  Signature
}

// RecordField è un campo di una dichiarazione record/struct.
type RecordField struct {
	Name string
	Type string
}

// RecordDecl is an auxiliary record/struct declaration, cataloged so the
// formatter can pretty-print composite types.
type RecordDecl struct {
	Name   string
	Fields []RecordField
}

// FunctionType pairs a signature with the raw inferred type reported by the
// inference engine for one originating module.
type FunctionType struct {
	Sig  Signature
	Type SignaturePair
}
