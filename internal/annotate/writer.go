// Package annotate riscrive il testo sorgente iniettando righe di
// annotazione, preservando byte per byte tutto il resto.
package annotate

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/codellm-devkit/typergo/pkg/schema"
)

// Annotation is one generated line pending insertion. Text carries no line
// terminator. Line follows the schema sentinels: LineFirst entries are
// emitted before any original byte, LineUnknown entries are never emitted.
type Annotation struct {
	Line int
	Text string
}

// Insert performs one forward pass over src, copying every byte unchanged
// and emitting each annotation right after the terminator of its declared
// line. An annotation whose line terminator is missing because the file
// ends without one is not emitted: inserting it would add bytes the strip
// of the output could not remove.
func Insert(src []byte, anns []Annotation, out io.Writer) error {
	pending := make([]Annotation, 0, len(anns))
	for _, a := range anns {
		if a.Line == schema.LineUnknown {
			continue
		}
		pending = append(pending, a)
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Line < pending[j].Line
	})

	w := bufio.NewWriter(out)

	// Sentinelle "first line": svuotate prima del passaggio principale.
	for len(pending) > 0 && pending[0].Line == schema.LineFirst {
		if err := emit(w, pending[0]); err != nil {
			return err
		}
		pending = pending[1:]
	}

	line := 1
	start := 0
	for i := 0; i < len(src); i++ {
		if src[i] != '\n' {
			continue
		}
		// Terminatore della riga corrente attraversato: prima i byte
		// originali rimasti, poi le annotazioni in attesa su questa riga.
		if _, err := w.Write(src[start : i+1]); err != nil {
			return fmt.Errorf("write annotated output: %w", err)
		}
		start = i + 1
		for len(pending) > 0 && pending[0].Line == line {
			if err := emit(w, pending[0]); err != nil {
				return err
			}
			pending = pending[1:]
		}
		line++
	}

	// Coda senza terminatore: copiata tale e quale, nessuna annotazione.
	if start < len(src) {
		if _, err := w.Write(src[start:]); err != nil {
			return fmt.Errorf("write annotated output: %w", err)
		}
	}

	return w.Flush()
}

func emit(w *bufio.Writer, a Annotation) error {
	if _, err := w.WriteString(a.Text); err != nil {
		return fmt.Errorf("write annotation: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write annotation: %w", err)
	}
	return nil
}
