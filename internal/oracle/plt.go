package oracle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/codellm-devkit/typergo/pkg/schema"
)

// pltDocument è il formato del type-table persistito. Il formato appartiene
// all'adapter: il core non lo conosce.
type pltDocument struct {
	Modules map[string]pltModule `json:"modules"`
}

type pltModule struct {
	Functions []pltFunction `json:"functions"`
	// Externals sono i call target esterni registrati dal motore durante
	// il trim del grafo delle dipendenze, come "path.go:name/arity".
	Externals []string `json:"externals,omitempty"`
}

type pltFunction struct {
	Name     string   `json:"name"`
	Arity    int      `json:"arity"`
	Return   string   `json:"return"`
	Args     []string `json:"args"`
	Contract string   `json:"contract,omitempty"`
}

// PLT adapts a persisted type-table file to the Oracle interface.
type PLT struct {
	modules    map[string]map[schema.Signature]pltFunction
	externals  []string
	unresolved []string
}

// LoadPLT reads the type-table at path. Trusted files are pre-seeded before
// the main table, so the main table's claims win on overlap.
func LoadPLT(path string, trusted []string) (*PLT, error) {
	p := &PLT{modules: make(map[string]map[schema.Signature]pltFunction)}

	for _, t := range trusted {
		if err := p.merge(t); err != nil {
			return nil, err
		}
	}
	if err := p.merge(path); err != nil {
		return nil, err
	}
	p.unresolved = p.trimExternals()
	return p, nil
}

// merge carica un documento e lo fonde nella tabella corrente.
func (p *PLT) merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read type table %s: %w", path, err)
	}
	var doc pltDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode type table %s: %w", path, err)
	}
	for file, mod := range doc.Modules {
		funcs := p.modules[file]
		if funcs == nil {
			funcs = make(map[schema.Signature]pltFunction, len(mod.Functions))
			p.modules[file] = funcs
		}
		for _, fn := range mod.Functions {
			funcs[schema.Signature{Name: fn.Name, Arity: fn.Arity}] = fn
		}
		p.externals = append(p.externals, mod.Externals...)
	}
	return nil
}

// trimExternals returns the external call targets that no loaded module
// resolves, deterministically and in one pass.
func (p *PLT) trimExternals() []string {
	var missing []string
	seen := make(map[string]struct{})
	for _, ref := range p.externals {
		file, sig, ok := parseRef(ref)
		if !ok {
			continue
		}
		if p.resolve(file, sig) {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		missing = append(missing, ref)
	}
	sort.Strings(missing)
	return missing
}

// resolve cerca la firma nel modulo, con fallback sul base name.
func (p *PLT) resolve(file string, sig schema.Signature) bool {
	if funcs, ok := p.modules[file]; ok {
		_, ok = funcs[sig]
		return ok
	}
	base := filepath.Base(file)
	for f, funcs := range p.modules {
		if filepath.Base(f) != base {
			continue
		}
		if _, ok := funcs[sig]; ok {
			return true
		}
	}
	return false
}

// parseRef scompone un riferimento "path.go:name/arity".
func parseRef(ref string) (string, schema.Signature, bool) {
	colon := strings.LastIndex(ref, ":")
	slash := strings.LastIndex(ref, "/")
	if colon < 0 || slash < colon {
		return "", schema.Signature{}, false
	}
	arity, err := strconv.Atoi(ref[slash+1:])
	if err != nil {
		return "", schema.Signature{}, false
	}
	return ref[:colon], schema.Signature{Name: ref[colon+1 : slash], Arity: arity}, true
}

// Unresolved returns the external call targets left dangling after the
// dependency-graph trim, as one list per run.
func (p *PLT) Unresolved() []string {
	return p.unresolved
}

// LookupModule restituisce i tipi inferiti per le funzioni raggiungibili
// dal file, con fallback sul base name.
func (p *PLT) LookupModule(file string) ([]schema.FunctionType, error) {
	funcs, ok := p.modules[file]
	if !ok {
		base := filepath.Base(file)
		for f, m := range p.modules {
			if filepath.Base(f) == base {
				funcs = m
				break
			}
		}
	}
	out := make([]schema.FunctionType, 0, len(funcs))
	for sig, fn := range funcs {
		out = append(out, schema.FunctionType{
			Sig:  sig,
			Type: schema.SignaturePair{Return: fn.Return, Args: fn.Args},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sig.Name != out[j].Sig.Name {
			return out[i].Sig.Name < out[j].Sig.Name
		}
		return out[i].Sig.Arity < out[j].Sig.Arity
	})
	return out, nil
}

// LookupContract restituisce il contract dichiarato per la firma, se esiste.
func (p *PLT) LookupContract(file string, sig schema.Signature) (string, bool) {
	funcs, ok := p.modules[file]
	if !ok {
		base := filepath.Base(file)
		for f, m := range p.modules {
			if filepath.Base(f) == base {
				funcs = m
				break
			}
		}
	}
	fn, ok := funcs[sig]
	if !ok || fn.Contract == "" {
		return "", false
	}
	return fn.Contract, true
}

// ValidateContract confronta il contract dichiarato con la firma inferita.
// Un'incompatibilità strutturale (arità diversa, contract non parsabile) è
// fatale; un range dichiarato diverso da quello inferito è solo un warning.
func (p *PLT) ValidateContract(contract string, inferred schema.SignaturePair) Validation {
	args, ret, ok := splitContract(contract)
	if !ok {
		return Validation{Status: StatusFatal, Reason: fmt.Sprintf("invalid contract %q", contract)}
	}
	if len(args) != len(inferred.Args) {
		return Validation{
			Status: StatusFatal,
			Reason: fmt.Sprintf("contract %q declares %d arguments, inference found %d", contract, len(args), len(inferred.Args)),
		}
	}
	if ret != inferred.Return {
		return Validation{
			Status: StatusRangeWarning,
			Reason: fmt.Sprintf("declared range %q differs from inferred %q", ret, inferred.Return),
		}
	}
	return Validation{Status: StatusOK}
}

// splitContract scompone "func name(a T, b U) R" in argomenti e range.
func splitContract(contract string) ([]string, string, bool) {
	open := strings.Index(contract, "(")
	if open < 0 {
		return nil, "", false
	}
	depth := 0
	closeIdx := -1
	for i := open; i < len(contract); i++ {
		switch contract[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				closeIdx = i
			}
		}
		if closeIdx >= 0 {
			break
		}
	}
	if closeIdx < 0 {
		return nil, "", false
	}

	var args []string
	inner := contract[open+1 : closeIdx]
	if strings.TrimSpace(inner) != "" {
		depth = 0
		start := 0
		for i := 0; i <= len(inner); i++ {
			if i == len(inner) || (inner[i] == ',' && depth == 0) {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
				continue
			}
			switch inner[i] {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				depth--
			}
		}
	}
	return args, strings.TrimSpace(contract[closeIdx+1:]), true
}
