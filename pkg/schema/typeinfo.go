package schema

// TypeInfo is the reconciled type knowledge for one function. Exactly one
// variant exists per function at any time: either a declared Contract already
// reconciled against inference, or a raw inferred SignaturePair. The sum is
// closed; every consumption site switches over both variants.
type TypeInfo interface {
	isTypeInfo()
}

// Contract is an explicitly declared function type in source-level syntax.
type Contract struct {
	Text string
}

// SignaturePair is a raw inferred (return type, argument types) pair lacking
// an explicit declaration.
type SignaturePair struct {
	Return string
	Args   []string
}

func (Contract) isTypeInfo()      {}
func (SignaturePair) isTypeInfo() {}

// EqualTypeInfo reports structural equality between two TypeInfo values.
// Values of different variants are never equal.
func EqualTypeInfo(a, b TypeInfo) bool {
	switch x := a.(type) {
	case Contract:
		y, ok := b.(Contract)
		return ok && x.Text == y.Text
	case SignaturePair:
		y, ok := b.(SignaturePair)
		if !ok || x.Return != y.Return || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if x.Args[i] != y.Args[i] {
				return false
			}
		}
		return true
	}
	return false
}
