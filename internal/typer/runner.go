package typer

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/codellm-devkit/typergo/internal/annotate"
	"github.com/codellm-devkit/typergo/internal/catalog"
	"github.com/codellm-devkit/typergo/internal/discovery"
	"github.com/codellm-devkit/typergo/internal/frontend"
	"github.com/codellm-devkit/typergo/internal/merge"
	"github.com/codellm-devkit/typergo/internal/oracle"
	"github.com/codellm-devkit/typergo/pkg/schema"
)

// Config è la configurazione di un run.
type Config struct {
	Mode     Mode
	ShowSucc bool // bypassa la validazione dei contract, stampa il tipo inferito
	NoSpec   bool // salta l'ingestione dei contract dichiarati
	EDoc     bool // sintassi a commento di documentazione

	Macros   map[string]string
	Includes []string

	Files      []string // file e directory espliciti
	Recursive  []string // directory da attraversare ricorsivamente
	IgnoreFile string   // pattern gitignore opzionali per la discovery
}

// Runner drives one sequential run over the discovered files.
type Runner struct {
	cfg Config
	fe  frontend.FrontEnd
	orc oracle.Oracle
	log *zap.Logger
	out io.Writer

	// inferred cache: originating file -> signature -> raw inferred type.
	inferred map[string]map[schema.Signature]schema.SignaturePair
}

// New costruisce un Runner. out riceve l'output delle modalità show.
func New(cfg Config, fe frontend.FrontEnd, orc oracle.Oracle, log *zap.Logger, out io.Writer) *Runner {
	return &Runner{
		cfg:      cfg,
		fe:       fe,
		orc:      orc,
		log:      log,
		out:      out,
		inferred: make(map[string]map[schema.Signature]schema.SignaturePair),
	}
}

// Run esegue la modalità configurata. Ogni condizione fatale interrompe
// l'intero run.
func (r *Runner) Run() error {
	// Target esterni irrisolti dal trim del grafo: riportati una volta,
	// come lista, non per occorrenza.
	if u, ok := r.orc.(interface{ Unresolved() []string }); ok {
		if missing := u.Unresolved(); len(missing) > 0 {
			r.log.Warn("unresolved external call targets", zap.Strings("targets", missing))
		}
	}

	filter, err := discovery.NewFilter(r.cfg.IgnoreFile)
	if err != nil {
		return err
	}
	files, err := discovery.Collect(r.cfg.Files, r.cfg.Recursive, filter)
	if err != nil {
		return err
	}

	cat := catalog.New()
	opts := frontend.Options{Macros: r.cfg.Macros, Includes: r.cfg.Includes}
	for _, file := range files {
		forms, err := r.fe.Analyze(file, opts)
		if err != nil {
			return err
		}
		cat.Add(file, forms)
		if err := r.loadInferred(file); err != nil {
			return err
		}
	}

	switch r.cfg.Mode {
	case ModeShow:
		return r.show(cat, false)
	case ModeShowExported:
		return r.show(cat, true)
	case ModeAnnotate:
		return r.annotateAll(cat, false)
	case ModeAnnotateInPlace:
		return r.annotateAll(cat, true)
	case ModeAnnotateIncludes:
		if err := r.annotateAll(cat, false); err != nil {
			return err
		}
		return r.annotateIncludes(cat)
	default:
		return fmt.Errorf("unknown mode %d", r.cfg.Mode)
	}
}

// loadInferred interroga l'oracle per il modulo e riempie la cache.
func (r *Runner) loadInferred(file string) error {
	funcs, err := r.orc.LookupModule(file)
	if err != nil {
		return fmt.Errorf("oracle lookup for %s: %w", file, err)
	}
	m := make(map[schema.Signature]schema.SignaturePair, len(funcs))
	for _, fn := range funcs {
		m[fn.Sig] = fn.Type
	}
	r.inferred[file] = m
	return nil
}

// typeInfo risolve il TypeInfo corrente di una firma nel contesto del file
// originante. L'assenza del tipo inferito viola un invariante dell'oracle
// ed è fatale.
func (r *Runner) typeInfo(file string, sig schema.Signature) (schema.TypeInfo, error) {
	raw, ok := r.inferred[file][sig]
	if !ok {
		return nil, fmt.Errorf("no type information for %s in %s", sig, file)
	}
	if r.cfg.ShowSucc || r.cfg.NoSpec {
		return raw, nil
	}

	contract, ok := r.orc.LookupContract(file, sig)
	if !ok {
		return raw, nil
	}
	v := r.orc.ValidateContract(contract, raw)
	switch v.Status {
	case oracle.StatusFatal:
		return nil, fmt.Errorf("invalid contract for %s in %s: %s", sig, file, v.Reason)
	case oracle.StatusRangeWarning:
		r.log.Warn("contract range differs from inferred type",
			zap.String("file", file),
			zap.String("function", sig.String()),
			zap.String("reason", v.Reason))
	}
	return schema.Contract{Text: contract}, nil
}

func (r *Runner) formatter(records []schema.RecordDecl) *annotate.Formatter {
	style := annotate.StyleSpec
	if r.cfg.EDoc {
		style = annotate.StyleDoc
	}
	return &annotate.Formatter{Style: style, Records: records}
}

// show stampa le righe di tipo formattate, in ordine di discovery.
func (r *Runner) show(cat *catalog.Catalog, exportedOnly bool) error {
	for _, file := range cat.Order {
		entry := cat.Entry(file)
		fmtr := r.formatter(entry.Records)
		occs := make([]schema.Occurrence, 0, len(entry.Own))
		occs = append(occs, entry.Own...)
		for _, origin := range entry.ForeignOrder {
			occs = append(occs, entry.Foreign[origin]...)
		}
		for _, occ := range occs {
			if exportedOnly {
				if _, ok := entry.Exported[occ.Sig]; !ok {
					continue
				}
			}
			info, err := r.typeInfo(file, occ.Sig)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(r.out, fmtr.Format(occ.Sig, info)); err != nil {
				return fmt.Errorf("write show output: %w", err)
			}
		}
	}
	return nil
}

// annotateAll riscrive ogni file originante con le annotazioni delle sue
// occorrenze proprie.
func (r *Runner) annotateAll(cat *catalog.Catalog, inPlace bool) error {
	for _, file := range cat.Order {
		entry := cat.Entry(file)
		fmtr := r.formatter(entry.Records)

		anns := make([]annotate.Annotation, 0, len(entry.Own))
		for _, occ := range entry.Own {
			info, err := r.typeInfo(file, occ.Sig)
			if err != nil {
				return err
			}
			anns = append(anns, annotate.Annotation{Line: occ.Line, Text: fmtr.Format(occ.Sig, info)})
		}

		if err := r.rewrite(file, anns, inPlace); err != nil {
			return err
		}
	}
	return nil
}

// annotateIncludes aggrega le occorrenze attribuite ad altri file e scrive
// un output per ogni file condiviso, sotto il proprio nome.
func (r *Runner) annotateIncludes(cat *catalog.Catalog) error {
	agg := merge.New(r.log)

	for _, file := range cat.Order {
		entry := cat.Entry(file)
		for _, origin := range entry.ForeignOrder {
			for _, occ := range entry.Foreign[origin] {
				info, err := r.typeInfo(file, occ.Sig)
				if err != nil {
					return err
				}
				agg.Add(occ, info)
			}
		}
	}

	fmtr := r.formatter(nil)
	for _, inc := range agg.Files() {
		pend := agg.Pending(inc)
		anns := make([]annotate.Annotation, 0, len(pend))
		for _, p := range pend {
			anns = append(anns, annotate.Annotation{Line: p.Line, Text: fmtr.Format(p.Sig, p.Info)})
		}
		if err := r.rewrite(inc, anns, false); err != nil {
			return err
		}
	}
	return nil
}

// rewrite legge il sorgente, inietta le annotazioni e scrive l'output.
func (r *Runner) rewrite(file string, anns []annotate.Annotation, inPlace bool) error {
	src, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	var buf bytes.Buffer
	if err := annotate.Insert(src, anns, &buf); err != nil {
		return err
	}
	return annotate.WriteOutput(file, buf.Bytes(), inPlace)
}
