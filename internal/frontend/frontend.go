// Package frontend definisce il confine verso il front-end che converte un
// file sorgente nella forma intermedia analizzabile.
package frontend

import "github.com/codellm-devkit/typergo/pkg/schema"

// Forms is the analyzable intermediate form of one originating file.
type Forms struct {
	// File is the originating file the forms were produced from.
	File string

	// Exported lists the signatures the file exports.
	Exported []schema.Signature

	// Defs lists every function definition physically reachable from the
	// file, in source order, each tagged with its origin file and declared
	// line. Definitions in textually included or generated sources carry a
	// different origin file than File.
	Defs []schema.Occurrence

	// Records lists the auxiliary record/struct declarations local to the
	// file, used for pretty-printing composite types.
	Records []schema.RecordDecl
}

// Options are forwarded to the front-end untouched by the core.
type Options struct {
	// Macros are preprocessor symbol definitions.
	Macros map[string]string

	// Includes are additional search directories.
	Includes []string
}

// FrontEnd converts a source file into Forms. A conversion failure on any
// analyzed file aborts the whole run.
type FrontEnd interface {
	Analyze(file string, opts Options) (*Forms, error)
}
