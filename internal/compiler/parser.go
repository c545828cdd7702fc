package compiler

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/operators"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// SyntaxError reports requirement text that is not a supported boolean expression.
type SyntaxError struct {
	Name   string
	Text   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: invalid logic %q: %s", e.Name, e.Text, e.Reason)
}

// Parser turns requirement text into CEL syntax trees.
// Only parsing is used; symbol resolution is done by the Preprocessor.
type Parser struct {
	env *cel.Env
}

// NewParser creates a new parser instance.
func NewParser() (*Parser, error) {
	env, err := cel.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create cel environment: %w", err)
	}
	return &Parser{env: env}, nil
}

// variableEscape stands in for the $ prefix, which is not a valid CEL identifier character.
const variableEscape = "__var_"

// Parse parses text into a CEL expression tree.
func (p *Parser) Parse(name, text string) (*exprpb.Expr, error) {
	parsed, issues := p.env.Parse(strings.ReplaceAll(text, "$", variableEscape))
	if issues != nil && issues.Err() != nil {
		return nil, &SyntaxError{Name: name, Text: text, Reason: issues.Err().Error()}
	}
	return parsed.Expr(), nil //nolint:staticcheck // exprpb is still the simplest tree to walk
}

// symbolResolver maps an identifier to its expression.
type symbolResolver func(symbol string) (*Expr, error)

// comparisons maps CEL operator functions to operand comparison operators.
var comparisons = map[string]string{
	operators.Greater:       ">",
	operators.GreaterEquals: ">=",
	operators.Less:          "<",
	operators.LessEquals:    "<=",
	operators.Equals:        "==",
	operators.NotEquals:     "!=",
}

// mirrored gives the operator to use when the constant is on the left side.
var mirrored = map[string]string{
	">":  "<",
	">=": "<=",
	"<":  ">",
	"<=": ">=",
	"==": "==",
	"!=": "!=",
}

// converter walks a CEL tree and builds an Expr.
type converter struct {
	name    string
	text    string
	resolve symbolResolver
	kindOf  func(term string) (domain.TermKind, bool)
}

func (c *converter) fail(format string, args ...any) error {
	return &SyntaxError{Name: c.name, Text: c.text, Reason: fmt.Sprintf(format, args...)}
}

func (c *converter) convert(e *exprpb.Expr) (*Expr, error) {
	if e == nil {
		return nil, c.fail("empty expression")
	}

	switch k := e.ExprKind.(type) {
	case *exprpb.Expr_ConstExpr:
		if b, ok := k.ConstExpr.ConstantKind.(*exprpb.Constant_BoolValue); ok {
			return Const(b.BoolValue), nil
		}
		return nil, c.fail("only boolean constants may stand alone")

	case *exprpb.Expr_IdentExpr:
		name, _ := qualifiedName(e)
		return c.resolve(name)

	case *exprpb.Expr_SelectExpr:
		name, ok := qualifiedName(e)
		if !ok {
			return nil, c.fail("unsupported field selection")
		}
		return c.resolve(name)

	case *exprpb.Expr_CallExpr:
		return c.convertCall(k.CallExpr)
	}

	return nil, c.fail("unsupported expression")
}

func (c *converter) convertCall(call *exprpb.Expr_Call) (*Expr, error) {
	if call.Target != nil {
		return nil, c.fail("method calls are not supported")
	}

	switch call.Function {
	case operators.LogicalAnd, operators.LogicalOr:
		args := make([]*Expr, 0, len(call.Args))
		for _, a := range call.Args {
			sub, err := c.convert(a)
			if err != nil {
				return nil, err
			}
			args = append(args, sub)
		}
		if call.Function == operators.LogicalAnd {
			return And(args...), nil
		}
		return Or(args...), nil

	case operators.LogicalNot:
		if len(call.Args) != 1 {
			return nil, c.fail("negation takes one argument")
		}
		sub, err := c.convert(call.Args[0])
		if err != nil {
			return nil, err
		}
		return Not(sub), nil
	}

	if op, ok := comparisons[call.Function]; ok {
		return c.convertComparison(op, call.Args)
	}
	return nil, c.fail("unsupported function %q", call.Function)
}

func (c *converter) convertComparison(op string, args []*exprpb.Expr) (*Expr, error) {
	if len(args) != 2 {
		return nil, c.fail("comparison takes two arguments")
	}

	left, right := args[0], args[1]
	if _, isConst := left.ExprKind.(*exprpb.Expr_ConstExpr); isConst {
		left, right = right, left
		op = mirrored[op]
	}

	term, ok := qualifiedName(left)
	if !ok {
		return nil, c.fail("comparison must have a counter term on one side")
	}
	constant, ok := right.ExprKind.(*exprpb.Expr_ConstExpr)
	if !ok {
		return nil, c.fail("comparison must have an integer constant on one side")
	}
	var value int64
	switch v := constant.ConstExpr.ConstantKind.(type) {
	case *exprpb.Constant_Int64Value:
		value = v.Int64Value
	case *exprpb.Constant_Uint64Value:
		value = int64(v.Uint64Value)
	default:
		return nil, c.fail("comparison constant must be an integer")
	}

	// Resolve through the normal path so unknown and $-variables behave the same.
	if _, err := c.resolve(term); err != nil {
		return nil, err
	}
	if kind, known := c.kindOf(term); !known || kind != domain.TermCounter {
		return nil, c.fail("%q is not a counter term", term)
	}
	return Lit(domain.Compare(term, op, value)), nil
}

// qualifiedName flattens identifiers and field selections (Town.left1).
func qualifiedName(e *exprpb.Expr) (string, bool) {
	switch k := e.ExprKind.(type) {
	case *exprpb.Expr_IdentExpr:
		name := k.IdentExpr.Name
		if strings.HasPrefix(name, variableEscape) {
			name = "$" + strings.TrimPrefix(name, variableEscape)
		}
		return name, true
	case *exprpb.Expr_SelectExpr:
		if k.SelectExpr.TestOnly {
			return "", false
		}
		prefix, ok := qualifiedName(k.SelectExpr.Operand)
		if !ok {
			return "", false
		}
		return prefix + "." + k.SelectExpr.Field, true
	}
	return "", false
}
