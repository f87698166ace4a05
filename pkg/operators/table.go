// Package operators defines the operator precedence table shared by both
// parsing algorithms, together with the semantics of every operator.
package operators

import "github.com/sandrolain/gojexp/pkg/types"

// Associativity of a binary operator.
type Associativity uint8

const (
	Left Associativity = iota
	Right
)

// Fixity tells where the operator symbol sits relative to its operands.
type Fixity uint8

const (
	Prefix Fixity = iota
	Postfix
	Infix
)

// Precedence levels, lowest first.
const (
	LevelAssign = iota
	LevelOr
	LevelAnd
	LevelNot
	LevelCompare
	LevelAdditive
	LevelMultiplicative
	LevelSign
	LevelPower
	LevelMember

	// Levels is the number of precedence levels. Parsing at level Levels
	// means parsing a primary expression.
	Levels
)

// Operator describes one entry of the precedence table.
type Operator struct {
	Symbol   string
	Arity    int
	Assoc    Associativity
	Fixity   Fixity
	Scalable bool
	// Refer shifts the level at which the right operand is parsed.
	Refer int
	Level int

	// Unary applies an arity-1 operator.
	Unary func(types.Value) (types.Value, error)
	// Binary applies an arity-2 operator. It is nil for the member access
	// operator, which the evaluator rewrites into a call.
	Binary func(lhs, rhs types.Value) (types.Value, error)
}

// Prefix reports whether op is a prefix unary operator.
func (op *Operator) Prefix() bool { return op.Arity == 1 && op.Fixity == Prefix }

// Postfix reports whether op is a postfix unary operator.
func (op *Operator) Postfix() bool { return op.Arity == 1 && op.Fixity == Postfix }

func binary(sym string, assoc Associativity, scalable bool, refer int, fn func(lhs, rhs types.Value) (types.Value, error)) *Operator {
	return &Operator{Symbol: sym, Arity: 2, Assoc: assoc, Fixity: Infix, Scalable: scalable, Refer: refer, Binary: fn}
}

func prefix(sym string, fn func(types.Value) (types.Value, error)) *Operator {
	return &Operator{Symbol: sym, Arity: 1, Assoc: Right, Fixity: Prefix, Scalable: true, Unary: fn}
}

func postfix(sym string, refer int, fn func(types.Value) (types.Value, error)) *Operator {
	return &Operator{Symbol: sym, Arity: 1, Assoc: Left, Fixity: Postfix, Scalable: true, Refer: refer, Unary: fn}
}

// table groups operators by precedence level, the higher the tighter.
var table = [Levels][]*Operator{
	LevelAssign: {binary("=", Right, false, 0, Assign)},
	LevelOr:     {binary("||", Right, true, 0, Or)},
	LevelAnd:    {binary("&&", Right, true, 0, And)},
	LevelNot:    {prefix("!", Not)},
	LevelCompare: {
		binary(">", Right, true, 0, Greater),
		binary(">=", Right, true, 0, GreaterEqual),
		binary("<", Right, true, 0, Less),
		binary("<=", Right, true, 0, LessEqual),
		binary("==", Right, true, 0, Equal),
		binary("!=", Right, true, 0, NotEqual),
		binary("<=>", Right, true, 0, ThreeWay),
	},
	LevelAdditive: {
		binary("+", Left, true, 0, Add),
		binary("-", Left, true, 0, Subtract),
		binary("++", Left, false, 0, Concat),
	},
	LevelMultiplicative: {
		binary("*", Left, true, 0, Multiply),
		binary("/", Left, true, 0, Divide),
		binary("%", Left, true, 0, Modulo),
	},
	LevelSign: {
		prefix("+", Plus),
		prefix("-", Negate),
	},
	LevelPower: {
		binary("^", Right, true, -1, Power),
		postfix("!", -1, Factorial),
	},
	LevelMember: {binary(".", Left, false, 0, nil)},
}

type key struct {
	symbol string
	level  int
	arity  int
}

var index = map[key]*Operator{}

func init() {
	for level, ops := range table {
		for _, op := range ops {
			op.Level = level
			index[key{op.Symbol, level, op.Arity}] = op
		}
	}
}

// Lookup returns the operator with the given symbol and arity declared at
// exactly level, or nil.
func Lookup(symbol string, level, arity int) *Operator {
	return index[key{symbol, level, arity}]
}

// LookupForward scans upward from level and returns the first operator with
// the given symbol and arity together with its level. When none exists it
// returns nil and Levels.
func LookupForward(symbol string, level, arity int) (*Operator, int) {
	for l := max(level, 0); l < Levels; l++ {
		if op := index[key{symbol, l, arity}]; op != nil {
			return op, l
		}
	}
	return nil, Levels
}

// All returns every operator of the table ordered by level.
func All() []*Operator {
	var out []*Operator
	for _, ops := range table {
		out = append(out, ops...)
	}
	return out
}

// Symbols returns every operator symbol, used by the REPL for highlighting.
func Symbols() []string {
	seen := map[string]bool{}
	var out []string
	for _, op := range All() {
		if !seen[op.Symbol] {
			seen[op.Symbol] = true
			out = append(out, op.Symbol)
		}
	}
	return out
}
