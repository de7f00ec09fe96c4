// Package discovery risolve file e directory espliciti in una lista di file
// stabile e deduplicata.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// annInfix marca gli output già annotati, che non vanno mai rianalizzati.
const annInfix = ".ann."

// Filter is the source-file predicate applied to every candidate path.
type Filter struct {
	gi *ignore.GitIgnore
}

// NewFilter builds the default filter. If ignoreFile is non-empty it must
// name a readable gitignore-syntax file whose patterns veto candidates.
func NewFilter(ignoreFile string) (*Filter, error) {
	f := &Filter{}
	if ignoreFile != "" {
		gi, err := ignore.CompileIgnoreFile(ignoreFile)
		if err != nil {
			return nil, fmt.Errorf("read ignore file %s: %w", ignoreFile, err)
		}
		f.gi = gi
	}
	return f, nil
}

// Keep reports whether path is an analyzable source file: a .go file that is
// not an already-annotated output and is not vetoed by the ignore patterns.
func (f *Filter) Keep(path string) bool {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".go") {
		return false
	}
	if strings.Contains(base, annInfix) {
		return false
	}
	if f != nil && f.gi != nil && f.gi.MatchesPath(path) {
		return false
	}
	return true
}

// Collect resolves explicit files/directories and recursive directories into
// one ordered file list: explicit-derived files first, then recursive-derived
// files, deduplicated keeping each path's first occurrence. An empty result
// and any filesystem error while listing are fatal.
func Collect(explicit, recursive []string, f *Filter) ([]string, error) {
	var files []string

	for _, entry := range explicit {
		info, err := os.Stat(entry)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry, err)
		}
		if !info.IsDir() {
			if f.Keep(entry) {
				files = append(files, entry)
			}
			continue
		}
		// Directory esplicita: solo i file diretti, niente ricorsione.
		sub, err := listFiles(entry)
		if err != nil {
			return nil, err
		}
		for _, s := range sub {
			if f.Keep(s) {
				files = append(files, s)
			}
		}
	}

	for _, dir := range recursive {
		walked, err := walk(dir, f)
		if err != nil {
			return nil, err
		}
		files = append(files, walked...)
	}

	files = dedup(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to analyze")
	}
	return files, nil
}

// listFiles restituisce i file regolari direttamente contenuti in dir.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// walk discende dir depth-first e filtra ogni file trovato.
func walk(dir string, f *Filter) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("list directory %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		if f.Keep(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// dedup rimuove i duplicati preservando la posizione della prima occorrenza.
func dedup(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := files[:0]
	for _, f := range files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
