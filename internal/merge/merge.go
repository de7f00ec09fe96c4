// Package merge riconcilia i tipi dichiarati per le funzioni definite in
// file condivisi da più file originanti.
package merge

import (
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/codellm-devkit/typergo/pkg/schema"
)

const (
	// genSourceExt è l'estensione riconosciuta delle sorgenti di generatori.
	genSourceExt = ".y"
	// genPreambleFile è il preambolo generato a nome fisso, sempre escluso
	// insieme agli output dei generatori.
	genPreambleFile = "yaccpar.go"
)

type entry struct {
	line int
	info schema.TypeInfo
}

// Aggregate accumulates, one originating file at a time, the type claims
// attributed to each shared include file. An entry survives only while all
// contributors agree on its TypeInfo.
type Aggregate struct {
	files    map[string]map[schema.Signature]entry
	dropped  map[string]map[schema.Signature]struct{}
	excluded map[string]struct{}
	log      *zap.Logger
}

// New crea un aggregato vuoto.
func New(log *zap.Logger) *Aggregate {
	return &Aggregate{
		files:    make(map[string]map[schema.Signature]entry),
		dropped:  make(map[string]map[schema.Signature]struct{}),
		excluded: make(map[string]struct{}),
		log:      log,
	}
}

// excludeGenerated registra gli artefatti di un generatore al primo
// incontro della sua sorgente: la sorgente stessa, il suo output derivato e
// il preambolo fisso restano esclusi per tutto il run. I claim già
// accumulati per quegli artefatti vengono eliminati.
func (a *Aggregate) excludeGenerated(file string) {
	if filepath.Ext(file) != genSourceExt {
		return
	}
	if _, done := a.excluded[file]; done {
		return
	}
	a.excluded[file] = struct{}{}
	a.excluded[strings.TrimSuffix(file, genSourceExt)+".go"] = struct{}{}
	a.excluded[genPreambleFile] = struct{}{}
	for f := range a.files {
		if a.isExcluded(f) {
			delete(a.files, f)
		}
	}
}

func (a *Aggregate) isExcluded(file string) bool {
	if _, ok := a.excluded[file]; ok {
		return true
	}
	_, ok := a.excluded[filepath.Base(file)]
	return ok
}

// Add registra il TypeInfo corrente di un'occorrenza attribuita a un file
// condiviso. Un disaccordo con un contributo precedente elimina la firma
// dall'aggregato in modo permanente ed emette un warning non fatale.
func (a *Aggregate) Add(occ schema.Occurrence, info schema.TypeInfo) {
	file := occ.File
	a.excludeGenerated(file)
	if a.isExcluded(file) {
		return
	}
	if _, gone := a.dropped[file][occ.Sig]; gone {
		return
	}

	sigs := a.files[file]
	if sigs == nil {
		sigs = make(map[schema.Signature]entry)
		a.files[file] = sigs
	}

	cur, ok := sigs[occ.Sig]
	if !ok {
		sigs[occ.Sig] = entry{line: occ.Line, info: info}
		return
	}
	if schema.EqualTypeInfo(cur.info, info) {
		return
	}

	delete(sigs, occ.Sig)
	tomb := a.dropped[file]
	if tomb == nil {
		tomb = make(map[schema.Signature]struct{})
		a.dropped[file] = tomb
	}
	tomb[occ.Sig] = struct{}{}
	a.log.Warn("inconsistent type for shared function, dropped from aggregate",
		zap.String("file", file),
		zap.String("function", occ.Sig.String()))
}

// Files restituisce i file condivisi con almeno un claim, in ordine stabile.
func (a *Aggregate) Files() []string {
	out := make([]string, 0, len(a.files))
	for f, sigs := range a.files {
		if len(sigs) == 0 {
			continue
		}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Pending is one reconciled annotation keyed the way the writer needs it:
// by line first, then signature.
type Pending struct {
	Line int
	Sig  schema.Signature
	Info schema.TypeInfo
}

// Pending re-keys one include file's aggregate from signature to line order.
// Entries without a usable position become first-line sentinels, since no
// single physical position applies to a whole-file aggregate write.
func (a *Aggregate) Pending(file string) []Pending {
	sigs := a.files[file]
	out := make([]Pending, 0, len(sigs))
	for sig, e := range sigs {
		line := e.line
		if line == schema.LineUnknown {
			line = schema.LineFirst
		}
		out = append(out, Pending{Line: line, Sig: sig, Info: e.info})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		if out[i].Sig.Name != out[j].Sig.Name {
			return out[i].Sig.Name < out[j].Sig.Name
		}
		return out[i].Sig.Arity < out[j].Sig.Arity
	})
	return out
}
