// Package typer orchestra il run: discovery, catalogo, merge e scrittura,
// secondo la modalità scelta.
package typer

import "fmt"

// Mode è una delle modalità terminali di un run. Viene scelta una volta per
// run, senza transizioni.
type Mode int

const (
	// ModeShow prints every own-plus-imported formatted type line.
	ModeShow Mode = iota
	// ModeShowExported restricts ModeShow to exported signatures.
	ModeShowExported
	// ModeAnnotate writes annotated copies under the derived sibling path.
	ModeAnnotate
	// ModeAnnotateInPlace overwrites the originals.
	ModeAnnotateInPlace
	// ModeAnnotateIncludes annotates originals, then the reconciled shared
	// include files.
	ModeAnnotateIncludes
)

// ParseMode traduce il nome esterno della modalità.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "show":
		return ModeShow, nil
	case "show_exported":
		return ModeShowExported, nil
	case "annotate":
		return ModeAnnotate, nil
	case "annotate_in_place":
		return ModeAnnotateInPlace, nil
	case "annotate_inc_files":
		return ModeAnnotateIncludes, nil
	default:
		return 0, fmt.Errorf("invalid mode: %s (valid: show, show_exported, annotate, annotate_in_place, annotate_inc_files)", s)
	}
}
