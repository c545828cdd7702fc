package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// OperandKind defines what a clause literal denotes.
type OperandKind int

const (
	// OperandTerm is a (possibly negated) reference to a bool or state term.
	OperandTerm OperandKind = iota
	// OperandCompare compares a counter term against an integer constant.
	OperandCompare
	// OperandTrue is the constant True.
	OperandTrue
	// OperandFalse is the constant False.
	OperandFalse
)

// Comparison operators accepted by OperandCompare, longest first so that
// parsing a key never splits ">=" into ">".
var compareOps = []string{">=", "<=", "==", "!=", ">", "<"}

var negatedOps = map[string]string{
	">":  "<=",
	"<=": ">",
	">=": "<",
	"<":  ">=",
	"==": "!=",
	"!=": "==",
}

// Operand is one literal of a conjunctive clause.
type Operand struct {
	Kind    OperandKind
	Term    string
	Negated bool
	Op      string
	Value   int64
}

// True returns the constant True operand.
func True() Operand { return Operand{Kind: OperandTrue} }

// False returns the constant False operand.
func False() Operand { return Operand{Kind: OperandFalse} }

// Ref returns a positive reference to term.
func Ref(term string) Operand { return Operand{Kind: OperandTerm, Term: term} }

// Compare returns a comparison of a counter term against value.
func Compare(term, op string, value int64) Operand {
	return Operand{Kind: OperandCompare, Term: term, Op: op, Value: value}
}

// IsConst reports whether the operand is True or False.
func (o Operand) IsConst() bool {
	return o.Kind == OperandTrue || o.Kind == OperandFalse
}

// Negate returns the complement of o. Comparisons flip their operator so the
// result stays a single literal.
func (o Operand) Negate() Operand {
	switch o.Kind {
	case OperandTrue:
		return False()
	case OperandFalse:
		return True()
	case OperandCompare:
		o.Op = negatedOps[o.Op]
		return o
	default:
		o.Negated = !o.Negated
		return o
	}
}

// Key renders the canonical textual form of the operand: TRUE, FALSE, X, !X, GEO>200.
func (o Operand) Key() string {
	switch o.Kind {
	case OperandTrue:
		return "TRUE"
	case OperandFalse:
		return "FALSE"
	case OperandCompare:
		return o.Term + o.Op + strconv.FormatInt(o.Value, 10)
	default:
		if o.Negated {
			return "!" + o.Term
		}
		return o.Term
	}
}

func (o Operand) String() string { return o.Key() }

// MarshalText encodes the operand as its Key.
func (o Operand) MarshalText() ([]byte, error) {
	return []byte(o.Key()), nil
}

// UnmarshalText decodes an operand from its Key.
func (o *Operand) UnmarshalText(text []byte) error {
	parsed, err := ParseOperand(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOperand is the inverse of Operand.Key.
func ParseOperand(key string) (Operand, error) {
	key = strings.TrimSpace(key)
	switch key {
	case "":
		return Operand{}, fmt.Errorf("empty operand")
	case "TRUE":
		return True(), nil
	case "FALSE":
		return False(), nil
	}

	for _, op := range compareOps {
		idx := strings.Index(key, op)
		if idx <= 0 {
			continue
		}
		value, err := strconv.ParseInt(strings.TrimSpace(key[idx+len(op):]), 10, 64)
		if err != nil {
			return Operand{}, fmt.Errorf("operand %q: invalid comparison value: %w", key, err)
		}
		return Compare(strings.TrimSpace(key[:idx]), op, value), nil
	}

	if strings.HasPrefix(key, "!") {
		name := strings.TrimSpace(key[1:])
		if name == "" {
			return Operand{}, fmt.Errorf("operand %q: missing term name", key)
		}
		return Operand{Kind: OperandTerm, Term: name, Negated: true}, nil
	}
	return Ref(key), nil
}
