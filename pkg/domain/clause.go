package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/gowebpki/jcs"
)

// StatefulClause is one conjunctive term of a DNF decomposition.
// Operands keep discovery order and carry no duplicates.
type StatefulClause struct {
	Operands []Operand `json:"operands" yaml:"operands"`
	// ReferencesState is true when any operand denotes a State-kind term.
	ReferencesState bool `json:"referencesState,omitempty" yaml:"referencesState,omitempty"`
}

// Keys returns the sorted operand keys. Two clauses are structurally equal
// when their Keys are equal.
func (c StatefulClause) Keys() []string {
	keys := make([]string, 0, len(c.Operands))
	for _, op := range c.Operands {
		keys = append(keys, op.Key())
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether the clause contains an operand with the given key.
func (c StatefulClause) Has(key string) bool {
	for _, op := range c.Operands {
		if op.Key() == key {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the clause.
func (c StatefulClause) Clone() StatefulClause {
	ops := make([]Operand, len(c.Operands))
	copy(ops, c.Operands)
	return StatefulClause{Operands: ops, ReferencesState: c.ReferencesState}
}

func (c StatefulClause) String() string {
	if len(c.Operands) == 0 {
		return "TRUE"
	}
	parts := make([]string, 0, len(c.Operands))
	for _, op := range c.Operands {
		parts = append(parts, op.Key())
	}
	return strings.Join(parts, " + ")
}

// Clauses is an ordered disjunction of StatefulClause.
type Clauses []StatefulClause

// SentinelFalse returns the canonical representation of an unsatisfiable
// requirement: one clause whose only operand is False.
func SentinelFalse() Clauses {
	return Clauses{{Operands: []Operand{False()}}}
}

// Tautology returns a single clause with no operands.
func Tautology() Clauses {
	return Clauses{{Operands: []Operand{}}}
}

// IsSentinel reports whether cs is exactly the Sentinel False Clause.
func (cs Clauses) IsSentinel() bool {
	return len(cs) == 1 && len(cs[0].Operands) == 1 && cs[0].Operands[0].Kind == OperandFalse
}

// IsTautology reports whether some clause is unconditionally satisfied.
func (cs Clauses) IsTautology() bool {
	for _, c := range cs {
		if len(c.Operands) == 0 {
			return true
		}
	}
	return false
}

// ReferencesState reports whether any clause carries a state operand.
func (cs Clauses) ReferencesState() bool {
	for _, c := range cs {
		if c.ReferencesState {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so that graph entities never alias the clause
// list of the logic object that produced it.
func (cs Clauses) Clone() Clauses {
	if cs == nil {
		return nil
	}
	out := make(Clauses, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

// Canonical returns the clause list as sorted operand-key sets, sorted.
// It is the structural identity used for equality and hashing.
func (cs Clauses) Canonical() [][]string {
	out := make([][]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Keys())
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Join(out[i], "\x00") < strings.Join(out[j], "\x00")
	})
	return out
}

// Equal reports structural equality, ignoring clause and operand order.
func (cs Clauses) Equal(other Clauses) bool {
	a, b := cs.Canonical(), other.Canonical()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.Join(a[i], "\x00") != strings.Join(b[i], "\x00") {
			return false
		}
	}
	return true
}

// Hash is the merge key of a clause list: the SHA-256 of the canonical JSON
// (RFC 8785) of Canonical(). Clause and operand order do not affect it.
func (cs Clauses) Hash() string {
	data, err := json.Marshal(cs.Canonical())
	if err == nil {
		if canon, cerr := jcs.Transform(data); cerr == nil {
			data = canon
		}
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Keys returns the operand keys of every clause in order, e.g. [["A","X"],["B"]].
func (cs Clauses) Keys() [][]string {
	out := make([][]string, 0, len(cs))
	for _, c := range cs {
		keys := make([]string, 0, len(c.Operands))
		for _, op := range c.Operands {
			keys = append(keys, op.Key())
		}
		out = append(out, keys)
	}
	return out
}

func (cs Clauses) String() string {
	if len(cs) == 0 {
		return "FALSE"
	}
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " | ")
}

// ClausesFromKeys builds clauses from operand keys. ReferencesState is left
// unset; callers holding a term registry recompute it.
func ClausesFromKeys(keys [][]string) (Clauses, error) {
	out := make(Clauses, 0, len(keys))
	for _, clause := range keys {
		ops := make([]Operand, 0, len(clause))
		for _, key := range clause {
			op, err := ParseOperand(key)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
		}
		out = append(out, StatefulClause{Operands: ops})
	}
	return out, nil
}
