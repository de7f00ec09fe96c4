// Package oracle incapsula il motore di inferenza esterno dietro
// un'interfaccia minima.
package oracle

import "github.com/codellm-devkit/typergo/pkg/schema"

// Status classifica l'esito della validazione di un contract.
type Status int

const (
	// StatusOK: the declared contract agrees with the inferred signature.
	StatusOK Status = iota

	// StatusRangeWarning: the contract is compatible but its range differs
	// from the inferred one. Non-fatal.
	StatusRangeWarning

	// StatusFatal: the contract is structurally incompatible with the
	// inferred signature. The whole run aborts.
	StatusFatal
)

// Validation è il risultato di ValidateContract.
type Validation struct {
	Status Status
	Reason string
}

// Oracle is the interface the core consumes. Implementations wrap the
// external inference engine and its persisted type-table.
type Oracle interface {
	// LookupModule returns the raw inferred type of every function reachable
	// from the originating file, shared definitions included.
	LookupModule(file string) ([]schema.FunctionType, error)

	// LookupContract returns the declared contract for one signature of the
	// originating file, if any.
	LookupContract(file string, sig schema.Signature) (string, bool)

	// ValidateContract checks a declared contract against the raw inferred
	// signature.
	ValidateContract(contract string, inferred schema.SignaturePair) Validation
}
