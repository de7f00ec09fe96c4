package annotate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// annDirName è la directory sibling a nome fisso per gli output derivati.
	annDirName = "typer_ann"
	// annInfix è l'infisso fisso inserito nel nome del file derivato.
	annInfix = ".ann"
)

// OutputPath derives the sibling-directory output path for orig:
// <dir>/typer_ann/<root>.ann<ext>.
func OutputPath(orig string) string {
	dir := filepath.Dir(orig)
	base := filepath.Base(orig)
	ext := filepath.Ext(base)
	root := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, annDirName, root+annInfix+ext)
}

// WriteOutput scrive il contenuto annotato. In place: delete-then-create,
// così l'output riparte sempre da vuoto. Altrimenti scrive sul path
// derivato, creando la directory se assente e rimuovendo prima eventuali
// output precedenti. Ogni errore di filesystem è fatale e porta il path.
func WriteOutput(orig string, content []byte, inPlace bool) error {
	target := orig
	if !inPlace {
		target = OutputPath(orig)
		dir := filepath.Dir(target)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create annotation dir %s: %w", dir, err)
		}
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale output %s: %w", target, err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create output %s: %w", target, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("write output %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output %s: %w", target, err)
	}
	return nil
}
