// Package catalog partiziona le definizioni di funzione di ogni file in
// "proprie" e "attribuite ad altri file".
package catalog

import (
	"path/filepath"
	"sort"

	"github.com/codellm-devkit/typergo/internal/frontend"
	"github.com/codellm-devkit/typergo/pkg/schema"
)

// FileEntry holds everything cataloged for one originating file.
type FileEntry struct {
	// Exported is the set of exported signatures.
	Exported map[schema.Signature]struct{}

	// Own lists the definitions physically located in the file, sorted
	// ascending by declared line. One entry per signature.
	Own []schema.Occurrence

	// Foreign groups the definitions attributed to other files by their
	// origin file, preserving insertion order within each group.
	Foreign map[string][]schema.Occurrence

	// ForeignOrder lists the origin files in first-encounter order, so
	// iteration over Foreign stays deterministic.
	ForeignOrder []string

	// Records are the auxiliary declarations used for pretty-printing.
	Records []schema.RecordDecl
}

// Catalog is the per-run mapping from originating file to its entry.
// Built once, consumed read-only afterward.
type Catalog struct {
	// Order preserves discovery order of the originating files.
	Order   []string
	entries map[string]*FileEntry
}

// New crea un catalogo vuoto.
func New() *Catalog {
	return &Catalog{entries: make(map[string]*FileEntry)}
}

// Add cataloga le forme di un file. Le definizioni sintetiche di
// bookkeeping del modulo vengono scartate da ogni vista.
func (c *Catalog) Add(file string, forms *frontend.Forms) {
	entry := &FileEntry{
		Exported: make(map[schema.Signature]struct{}, len(forms.Exported)),
		Foreign:  make(map[string][]schema.Occurrence),
		Records:  forms.Records,
	}
	for _, sig := range forms.Exported {
		if isSynthetic(sig) {
			continue
		}
		entry.Exported[sig] = struct{}{}
	}

	for _, def := range forms.Defs {
		if isSynthetic(def.Sig) {
			continue
		}
		if sameFile(def.File, file) {
			entry.Own = append(entry.Own, def)
		} else {
			if _, seen := entry.Foreign[def.File]; !seen {
				entry.ForeignOrder = append(entry.ForeignOrder, def.File)
			}
			entry.Foreign[def.File] = append(entry.Foreign[def.File], def)
		}
	}

	// Il writer procede dall'alto verso il basso.
	sort.SliceStable(entry.Own, func(i, j int) bool {
		return entry.Own[i].Line < entry.Own[j].Line
	})

	c.Order = append(c.Order, file)
	c.entries[file] = entry
}

// Entry returns the cataloged entry for file, or nil.
func (c *Catalog) Entry(file string) *FileEntry {
	return c.entries[file]
}

// sameFile decide se l'origin tag identifica il file in analisi: match sul
// path completo, con fallback sul base name. Il fallback è ambiguo quando
// directory distinte contengono file omonimi; è un'imprecisione nota,
// mitigata a valle dai warning del merge di consistenza.
func sameFile(origin, file string) bool {
	if origin == file {
		return true
	}
	return filepath.Base(origin) == filepath.Base(file)
}

// isSynthetic riconosce gli helper sintetici di bookkeeping del modulo
// (arità 0 e 1) emessi da alcuni front-end.
func isSynthetic(sig schema.Signature) bool {
	return sig.Name == "module_info" && (sig.Arity == 0 || sig.Arity == 1)
}
